package cmd

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
	"github.com/Lumos-Labs-HQ/execseed/internal/seeder"
	"github.com/Masterminds/squirrel"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const maxCellWidth = 60

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a few rows of the execution configs table",
	Long: `
Print the first rows of the execution configs table ordered by config_id.
Long config documents are truncated.

Examples:
  execseed sample
  execseed sample --type proposer --bound --limit 5`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	addDatabaseFlags(sampleCmd)
	sampleCmd.Flags().String("type", "", "only rows of this config_type: default or proposer")
	sampleCmd.Flags().Bool("bound", false, "only rows with default_configs set")
	sampleCmd.Flags().Uint64("limit", 10, "maximum number of rows")
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	configType, _ := cmd.Flags().GetString("type")
	bound, _ := cmd.Flags().GetBool("bound")
	limit, _ := cmd.Flags().GetUint64("limit")

	query, err := sampleQuery(cfg.Database.Table, configType, bound, limit)
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

	result, err := adapter.ExecuteQuery(ctx, query)
	if err != nil {
		return err
	}

	if len(result.Rows) == 0 {
		color.Yellow("📊 No rows in %s", cfg.Database.Table)
		return nil
	}

	color.Cyan("📊 %d row(s) from %s\n", len(result.Rows), cfg.Database.Table)
	displayResultsTable(result.Columns, result.Rows)
	return nil
}

// sampleQuery renders the SELECT without bind parameters, since ExecuteQuery
// takes a plain statement. configType is checked against the known values
// before it is inlined.
func sampleQuery(table, configType string, bound bool, limit uint64) (string, error) {
	query := squirrel.Select("config_id", "config_type", "default_configs", "config").
		From(table).
		OrderBy("config_id").
		Limit(limit)

	switch seeder.ConfigType(configType) {
	case "":
	case seeder.ConfigTypeDefault, seeder.ConfigTypeProposer:
		query = query.Where(fmt.Sprintf("config_type = '%s'", configType))
	default:
		return "", fmt.Errorf("unknown config type %q (want %s or %s)", configType, seeder.ConfigTypeDefault, seeder.ConfigTypeProposer)
	}
	if bound {
		query = query.Where("default_configs IS NOT NULL")
	}

	sql, _, err := query.ToSql()
	return sql, err
}

func displayResultsTable(columns []string, rows []map[string]interface{}) {
	colWidths := make(map[string]int)
	for _, col := range columns {
		colWidths[col] = len(col)
	}

	for _, row := range rows {
		for _, col := range columns {
			if n := utf8.RuneCountInString(formatValue(row[col])); n > colWidths[col] {
				colWidths[col] = n
			}
		}
	}

	border := func(left, mid, right string) {
		fmt.Print(left)
		for i, col := range columns {
			fmt.Print(strings.Repeat("─", colWidths[col]+2))
			if i < len(columns)-1 {
				fmt.Print(mid)
			}
		}
		fmt.Println(right)
	}

	border("┌", "┬", "┐")
	fmt.Print("│")
	for _, col := range columns {
		fmt.Printf(" %-*s │", colWidths[col], col)
	}
	fmt.Println()
	border("├", "┼", "┤")

	for _, row := range rows {
		fmt.Print("│")
		for _, col := range columns {
			fmt.Printf(" %-*s │", colWidths[col], formatValue(row[col]))
		}
		fmt.Println()
	}
	border("└", "┴", "┘")
}

func formatValue(val interface{}) string {
	if val == nil {
		return "NULL"
	}
	var s string
	switch v := val.(type) {
	case []string:
		s = "{" + strings.Join(v, ",") + "}"
	case []interface{}:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}
		s = "{" + strings.Join(parts, ",") + "}"
	default:
		s = fmt.Sprintf("%v", v)
	}
	if r := []rune(s); len(r) > maxCellWidth {
		s = string(r[:maxCellWidth-3]) + "..."
	}
	return s
}
