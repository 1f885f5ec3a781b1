// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the biomarker-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/biomarker-engine/internal/convert"
	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/internal/secrets"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// log is configured in PersistentPreRunE before any command runs.
	log = logging.Discard()

	closeLog = func() error { return nil }

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets = secrets.Secrets{}
)

// rootCmd is the base command for the biomarker-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "biomarker-engine",
	Short: "Extract, analyze, and export laboratory biomarker reports",
	Long: `biomarker-engine turns laboratory reports into a longitudinal view of a
patient's biomarkers. It reads lab report PDFs, plain-text reports, and legacy
JSON exports; normalizes every value against clinical reference ranges; fits
per-biomarker trends; and writes a dashboard document with alerts and
recommendations.

Use "analyze" for the full pipeline, "extract" to inspect what is found in
individual documents, and "catalog" to list the reference data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, closer, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		log, closeLog = l, closer
		if used := viper.ConfigFileUsed(); used != "" {
			log.WithField("path", used).Debug("using config file")
		}

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.WithField("keys", s.Keys()).Debug("loaded secrets")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./biomarker-engine.yaml or ~/.config/biomarker-engine/biomarker-engine.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-file", "", "also append log lines to this file (e.g. app.log)")
	flags.String("backend", string(types.BackendPdftotext), "PDF text backend: pdftotext, container, or unipdf")
	flags.String("image", convert.DefaultImage, "container image for the container backend")
	flags.Int("workers", 1, "documents to convert concurrently")

	bindFlag("log.level", flags.Lookup("log-level"))
	bindFlag("log.format", flags.Lookup("log-format"))
	bindFlag("log.file", flags.Lookup("log-file"))
	bindFlag("convert.backend", flags.Lookup("backend"))
	bindFlag("convert.image", flags.Lookup("image"))
	bindFlag("convert.workers", flags.Lookup("workers"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("biomarker-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "biomarker-engine"))
		}
	}

	viper.SetEnvPrefix("BIOMARKER_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "warning: reading config %s: %v\n", cfgFile, err)
		}
	}
}

// loadConfig merges defaults, config file, environment, and flags.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Analysis = cfg.Analysis.WithDefaults()
	if cfg.Conversion.Workers < 1 {
		cfg.Conversion.Workers = 1
	}
	cfg.Conversion.LicenseKey = loadedSecrets.Get(convert.LicenseSecret, cfg.Conversion.LicenseKey)
	return cfg, nil
}

func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}
