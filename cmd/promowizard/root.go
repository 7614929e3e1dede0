package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/promowizard/internal/config"
	"github.com/aretw0/promowizard/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "promowizard",
	Short: "promowizard guides operators through creating a promotion",
	Long: `promowizard hosts the three-step promotion wizard (name, products with discounts, stores)
as an interactive terminal session, an HTTP JSON API or an MCP tool server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (.yaml, .toml or .json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("fixture", "", "Catalog fixture file used when no catalog service is configured")
}

// loadConfig reads the config file and environment, then applies persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v, _ := cmd.Flags().GetString("fixture"); v != "" {
		cfg.Catalog.Fixture = v
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	logger := logging.FromConfig(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return logger
}
