// Package cmd implements the CLI commands for decodechain.
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmylchreest/decodechain/internal/config"
	"github.com/jmylchreest/decodechain/internal/observability"
	"github.com/jmylchreest/decodechain/internal/version"
	"github.com/spf13/cobra"
)

// cfgFile holds the config file path from CLI flag.
var cfgFile string

// appConfig is loaded once per invocation in PersistentPreRunE.
var appConfig *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "decodechain",
	Short:   "GStreamer video decoder selection and diagnostics",
	Version: version.Short(),
	Long: `decodechain picks the GStreamer decoder element to use for a camera's
compressed video format (MJPEG, H.264, H.265/HEVC).

For each codec it walks an ordered catalog of decoders, takes the first one
installed on this system and falls back to decodebin when none is. It can
also reconstruct the fallback chain of a running pipeline for diagnostics.

Configuration is read from config.yaml (., /etc/decodechain,
$HOME/.decodechain) and DECODECHAIN_* environment variables.`,
	SilenceUsage: true,
	// PersistentPreRunE is set in init() to avoid initialization cycle
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	// initLogging references rootCmd.PersistentFlags
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogging()
	}

	// Flags are not bound to viper; Changed() decides whether they override
	// config and env values.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
}

// initConfig loads configuration from file, env and defaults.
func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg
	return nil
}

// initLogging configures the slog logger.
//
// Priority order (highest to lowest):
//  1. CLI flags (--log-level, --log-format) - only if explicitly provided
//  2. Environment variables (DECODECHAIN_LOGGING_LEVEL, DECODECHAIN_LOGGING_FORMAT)
//  3. Config file values
//  4. Built-in defaults (info, text)
func initLogging() error {
	logCfg := appConfig.Logging

	if rootCmd.PersistentFlags().Changed("log-level") {
		level, _ := rootCmd.PersistentFlags().GetString("log-level")
		logCfg.Level = strings.ToLower(level)
	}
	if rootCmd.PersistentFlags().Changed("log-format") {
		format, _ := rootCmd.PersistentFlags().GetString("log-format")
		logCfg.Format = strings.ToLower(format)
	}

	// Handle "warning" as an alias for "warn"
	if logCfg.Level == "warning" {
		logCfg.Level = "warn"
	}
	appConfig.Logging = logCfg

	logger := observability.NewLogger(logCfg)
	logger = logger.With(slog.String("app", version.ApplicationName))
	observability.SetDefault(logger)

	return nil
}
