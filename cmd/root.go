// Package cmd implements the CLI commands for brochuregen using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/brochuregen/config"
)

var flagConfig string

// loader collects flag bindings from every command's init.
var loader = config.NewLoader()

// Set up by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "brochuregen",
	Short: "brochuregen — turn a company website into a Markdown brochure",
	Long: `brochuregen fetches a company's website, reduces it to its visible text
and asks a language model to write a short brochure for prospective
customers, investors and recruits.

Usage:
  brochuregen generate <company> <url> [flags]
  brochuregen extract <url> [flags]
  brochuregen books [flags]
  brochuregen serve [flags]
  brochuregen config`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "brochuregen.yaml", "Path to YAML config file (optional)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config)")

	mustBind(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

// mustBind ties a flag to a config key; a missing flag is a programming
// error.
func mustBind(key string, flag *pflag.Flag) {
	if err := loader.BindFlag(key, flag); err != nil {
		panic(err)
	}
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = loader.Load(flagConfig)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}
