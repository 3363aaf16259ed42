// Package cmd provides the command-line interface for stencil.
//
// Configuration is read with the following precedence:
//
//  1. Command-line flags (--config, --log-level, ...)
//  2. STENCIL_CONFIG_FILE environment variable: config file path
//  3. Individual environment variables (STENCIL_TEMPLATE_MARKER, ...)
//  4. Configuration file (.stencil.yml)
package cmd

import (
	"context"
	"errors"
	"os"

	stencilerrors "github.com/conneroisu/stencil/internal/errors"
	"github.com/conneroisu/stencil/internal/config"
	"github.com/conneroisu/stencil/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// Set by the root command before any subcommand runs.
	appConfig *config.Config
	appLogger logging.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stencil",
	Short: "Instantiate HTML templates with dynamic parts and component slots",
	Long: `stencil compiles HTML templates with ${} holes, clones them, binds a part
to every hole, materializes <tpl-slot-NAME> component slots and renders the
result.

Quick Start:
  stencil render page.html --values values.yaml     Render a template
  stencil inspect page.html -f yaml                 Show the compiled parts
  stencil watch page.html --values values.yaml      Re-render on change`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		logger := appLogger
		if logger == nil {
			logger = logging.NewLogger(nil)
		}
		stencilerrors.NewErrorHandler(logger).Handle(context.Background(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .stencil.yml, can also use STENCIL_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	AddFlagValidation(rootCmd, "log-format", ValidateFormat("text", "json"))
}

// setup reads the configuration and builds the logger shared by every
// command.
func setup(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "_CONFIG_FILE")
	}

	v := viper.GetViper()
	config.Init(v, path)
	if err := SetViperBindings(cmd.Flags(), map[string]string{
		"log-level":  "logging.level",
		"log-format": "logging.format",
	}); err != nil {
		return err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return stencilerrors.WrapConfig(err, stencilerrors.ErrCodeConfigInvalid, "read config file")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logCfg := cfg.LoggerConfig()
	logCfg.Output = cmd.ErrOrStderr()

	appConfig = cfg
	appLogger = logging.NewLogger(logCfg)
	if used := v.ConfigFileUsed(); used != "" {
		appLogger.Debug(cmd.Context(), "Using config file", "path", used)
	}
	return nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return stencilerrors.NewIOError(stencilerrors.ErrCodeWriteFailed, "write output", err).WithFile(path)
	}
	return nil
}
