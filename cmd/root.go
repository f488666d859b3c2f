package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Lumos-Labs-HQ/execseed/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════╗",
		"║   ⚡ execseed · execution config seeder ⚡    ║",
		"╚══════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("            ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "execseed",
	Short: "Seed an execution configs table with synthetic default and proposer configs",
	Long: `
execseed generates synthetic execution configs (fee recipient, gas limit,
minimum bid value, grace period, relays) and loads them into a relational
table in a single transaction.

Default configs are inserted first; a subset of proposer configs then
references two randomly chosen default configs each.

Database Support:
- PostgreSQL (default_configs as TEXT[])
- MySQL
- SQLite`,
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("execseed version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./execseed.config.json)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format instead of text")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("execseed.config")
	}

	viper.SetEnvPrefix("EXECSEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "⚠️  Could not read config file %s: %v\n", cfgFile, err)
		}
	}
}

// bindFlags maps command flags onto config keys. Binding happens when the
// command runs so commands sharing a key do not overwrite each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flagName, key := range keys {
		var flag *pflag.Flag
		if flag = cmd.Flags().Lookup(flagName); flag == nil {
			flag = cmd.InheritedFlags().Lookup(flagName)
		}
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

var commonFlagKeys = map[string]string{
	"log-level": "log.level",
	"log-json":  "log.json",
	"provider":  "database.provider",
	"table":     "database.table",
	"url-env":   "database.url_env",
}

func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	if err := bindFlags(cmd, commonFlagKeys); err != nil {
		return nil, err
	}
	if err := bindFlags(cmd, keys); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
