package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"admincfg/internal/config"
	"admincfg/internal/logger"
	"admincfg/internal/registry"
	"admincfg/internal/render"
)

var (
	// Global flags
	cfgFile   string
	dslDir    string
	enumsDir  string
	format    string
	logLevel  string
	logFormat string

	cfg    config.Config
	log    zerolog.Logger
	output render.Formatter
)

var rootCmd = &cobra.Command{
	Use:   "admincfg",
	Short: "Inspect admin entity definitions and map raw records through their views",
	Long: `admincfg loads declarative entity definitions (*.dsl) and optional
enum catalogs (*.yaml), then describes views or maps raw JSON records
into entries the way the admin front end would.

Examples:
  admincfg entities
  admincfg describe posts list
  admincfg map posts list records.json
  cat records.json | admincfg validate posts edit -
  admincfg lint`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "admincfg.json", "config file path")
	flags.StringVar(&dslDir, "dsl", "", "directory with *.dsl definitions")
	flags.StringVar(&enumsDir, "enums", "", "directory with enum catalogs")
	flags.StringVarP(&format, "format", "f", "", "output format (json|yaml)")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&logFormat, "log-format", "", "log format (console|json)")
}

// setup merges config file, environment and flags, in that order.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.LoadWithPath(cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("dsl") {
		c.DSLDir = dslDir
	}
	if flags.Changed("enums") {
		c.EnumsDir = enumsDir
	}
	if flags.Changed("format") {
		c.Format = format
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg = c

	log = logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	output, err = render.NewFormatter(cfg.Format)
	return err
}

func openRegistry() (*registry.Registry, error) {
	reg, err := registry.New(cfg.DSLDir, cfg.EnumsDir, log)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("entities", len(reg.Entities())).Msg("definitions loaded")
	return reg, nil
}
