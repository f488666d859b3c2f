package cmd

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
	"github.com/Lumos-Labs-HQ/execseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts of the execution configs table",
	Long: `Show the number of rows in the execution configs table:
- Total rows
- Default configs
- Proposer configs
- Rows whose default_configs column is set`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()
		adapter, err := database.Open(ctx, cfg.Database.Provider, cfg.Database.Table, dbURL)
		if err != nil {
			return err
		}
		defer adapter.Close()

		stats, err := seeder.CollectStats(ctx, adapter)
		if err != nil {
			return err
		}

		color.Cyan("📊 %s", cfg.Database.Table)
		fmt.Printf("   Total rows:            %d\n", stats.Total)
		fmt.Printf("   Default configs:       %d\n", stats.Defaults)
		fmt.Printf("   Proposer configs:      %d\n", stats.Proposers)
		fmt.Printf("   With default_configs:  %d\n", stats.WithDefaults)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	addDatabaseFlags(statsCmd)
}
