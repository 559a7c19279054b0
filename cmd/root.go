package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"study-tracker/internal/config"
	"study-tracker/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
	version string = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "study-tracker",
	Short: "Track morning and afternoon study time",
	Long: `study-tracker records study sessions in two daily periods
(morning 8:00-12:00, afternoon 13:00-19:00 by default) and can publish a
read-only, revocable snapshot of them under a share code.

Quick Start:
  study-tracker migrate                     # create the database schema
  study-tracker serve                       # start the HTTP API
  study-tracker report --user alice         # print today's totals`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadRuntime reads the configuration and builds the logger every
// subcommand needs.
func loadRuntime() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logCfg := cfg.Log
	if verbose {
		logCfg.Level = "debug"
	}
	log, closer, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, closer, nil
}
