package cmd

import (
	"fmt"
	"os"

	"github.com/Lumos-Labs-HQ/execseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportFlagKeys = map[string]string{
	"defaults":        "seed.defaults",
	"bound-proposers": "seed.bound_proposers",
	"proposers":       "seed.proposers",
	"seed":            "seed.seed",
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write generated configs to a file instead of the database",
	Long: `
Generate the same records as 'seed' and write them as YAML documents or JSON
lines. No database connection is opened.

Examples:
  execseed export --proposers 100 --seed 7
  execseed export --format json --out configs.jsonl`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addPlanFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	exportCmd.Flags().String("format", seeder.FormatYAML, "output format: yaml or json")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, exportFlagKeys)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	plan := seeder.Plan{
		Defaults:       cfg.Seed.Defaults,
		BoundProposers: cfg.Seed.BoundProposers,
		Proposers:      cfg.Seed.Proposers,
	}
	gen := seeder.NewDataGenerator(cfg.Seed.Seed)

	if out == "" {
		_, err := seeder.Export(os.Stdout, format, gen, plan)
		return err
	}

	n, err := exportFile(out, format, gen, plan)
	if err != nil {
		return err
	}
	color.Green("✅ Exported %d configs to %s", n, out)
	return nil
}

// exportFile reports success only once the file is closed.
func exportFile(path, format string, gen *seeder.DataGenerator, plan seeder.Plan) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := seeder.Export(f, format, gen, plan)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, closeErr)
	}
	return n, err
}
