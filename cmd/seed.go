package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lumos-Labs-HQ/execseed/internal/database"
	"github.com/Lumos-Labs-HQ/execseed/internal/logger"
	"github.com/Lumos-Labs-HQ/execseed/internal/metrics"
	"github.com/Lumos-Labs-HQ/execseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var seedFlagKeys = map[string]string{
	"defaults":        "seed.defaults",
	"bound-proposers": "seed.bound_proposers",
	"proposers":       "seed.proposers",
	"seed":            "seed.seed",
	"metrics-file":    "metrics_file",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate execution configs and insert them into the database",
	Long: `
Generate default and proposer execution configs and insert them, one INSERT per
record, into the execution configs table inside a single transaction. The
transaction is committed only when every record was inserted; any failure
rolls the whole run back.

Running seed twice against the same table fails on the config_id primary key.

Examples:
  execseed seed
  execseed seed --proposers 1000 --seed 42
  execseed seed --provider sqlite --metrics-file /var/lib/node_exporter/execseed.prom`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	addDatabaseFlags(seedCmd)
	addPlanFlags(seedCmd)
	seedCmd.Flags().String("metrics-file", "", "write run metrics to this node-exporter textfile")
}

func addDatabaseFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "postgresql", "database provider: postgresql, mysql, sqlite")
	cmd.Flags().String("table", "execution_configs", "table to insert into")
	cmd.Flags().String("url-env", "DATABASE_URL", "environment variable holding the connection string")
}

func addPlanFlags(cmd *cobra.Command) {
	plan := seeder.DefaultPlan()
	cmd.Flags().Int("defaults", plan.Defaults, "number of default configs")
	cmd.Flags().Int("bound-proposers", plan.BoundProposers, "number of proposer configs bound to two default configs")
	cmd.Flags().Int("proposers", plan.Proposers, "total number of proposer configs, bound ones included")
	cmd.Flags().Int64("seed", 0, "random seed for reproducible data (0 = time based)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, seedFlagKeys)
	if err != nil {
		return err
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter, err := database.Open(ctx, cfg.Database.Provider, cfg.Database.Table, dbURL)
	if err != nil {
		return err
	}
	defer adapter.Close()

	log = log.WithFields(logrus.Fields{
		"provider": cfg.ProviderName(),
		"table":    cfg.Database.Table,
	})

	m := metrics.New()
	s := seeder.New(adapter,
		seeder.WithGenerator(seeder.NewDataGenerator(cfg.Seed.Seed)),
		seeder.WithLogger(log),
		seeder.WithMetrics(m),
	)

	plan := seeder.Plan{
		Defaults:       cfg.Seed.Defaults,
		BoundProposers: cfg.Seed.BoundProposers,
		Proposers:      cfg.Seed.Proposers,
	}

	result, seedErr := s.Seed(ctx, plan)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.WithError(err).Warn("failed to write metrics file")
		}
	}

	if seedErr != nil {
		return seedErr
	}

	color.Green("✅ Test data insertion complete: %d rows in %s", result.Total(), result.Duration.Round(time.Millisecond))
	return nil
}
