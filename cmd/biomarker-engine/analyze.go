// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/internal/convert"
	"github.com/pdiddy/biomarker-engine/internal/dashboard"
	"github.com/pdiddy/biomarker-engine/internal/export"
	"github.com/pdiddy/biomarker-engine/internal/profile"
	"github.com/pdiddy/biomarker-engine/internal/report"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// defaultInputs are the legacy exports read when no paths are given.
var defaultInputs = []string{
	"extract/combined_patient_data.json",
	"extract/enhanced_patient_data.json",
}

var defaultOutputs = []string{
	"extract/processed_patient_data.json",
	"public/dashboard_data.json",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Build a patient profile and write the dashboard document",
	Long: `Analyze reads lab report documents (.pdf, .txt) and legacy JSON exports
(.json), merges them into one chronologically ordered patient profile, fits a
trend per biomarker, raises alerts, and writes the dashboard document.

With no arguments, the legacy exports under extract/ are used if present.
The dashboard is written as JSON to every --output path, and optionally as
YAML (--yaml) and a SQLite snapshot (--sqlite).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		paths := args
		if len(paths) == 0 {
			paths = existing(defaultInputs)
			if len(paths) == 0 {
				return fmt.Errorf("no input files: none of %s exist", strings.Join(defaultInputs, ", "))
			}
		}

		asm := report.New(catalog.Default(), log)

		// Text files need no PDF backend, so one is only set up for PDFs.
		var text convert.TextExtractor
		switch {
		case hasExt(paths, ".pdf"):
			docs, err := convert.New(ctx, cfg.Conversion)
			if err != nil {
				return fmt.Errorf("setting up %s backend: %w", cfg.Conversion.Backend, err)
			}
			text = docs
		case hasExt(paths, ".txt", ".text"):
			text = convert.NewDocuments(nil)
		}

		sources, err := profile.SourcesFromPaths(paths, asm, text, log)
		if err != nil {
			return err
		}

		builder := profile.New(log, profile.WithWorkers(cfg.Conversion.Workers))
		p, summary := builder.Build(ctx, sources)
		if err := summary.Err(); err != nil {
			return err
		}
		if summary.HasFailures() {
			log.WithField("failed", summary.Failed).Warn("some sources could not be loaded")
		}

		data := dashboard.Compose(p, cfg.Analysis, log)

		written, err := export.WriteAll(ctx, cfg.Export, data, log)
		if err != nil {
			return err
		}

		dashboard.PrintSummary(cmd.OutOrStdout(), data, written)
		return nil
	},
}

// existing returns the paths that name a file on disk.
func existing(paths []string) []string {
	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	return found
}

// hasExt reports whether any path has one of exts, ignoring case.
func hasExt(paths []string, exts ...string) bool {
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
	}
	return false
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringArray("output", defaultOutputs, "JSON output path (repeatable)")
	flags.String("yaml", "", "also write the dashboard as YAML to this path")
	flags.String("sqlite", "", "also write the dashboard to a SQLite database at this path")
	flags.Float64("stable-slope", types.DefaultStableSlope, "absolute slope below which a trend is stable")
	flags.Float64("trend-alert-percent", types.DefaultTrendAlertPercent, "change percentage that raises a trend alert")

	bindFlag("export.json_paths", flags.Lookup("output"))
	bindFlag("export.yaml_path", flags.Lookup("yaml"))
	bindFlag("export.sqlite_path", flags.Lookup("sqlite"))
	bindFlag("analysis.stable_slope", flags.Lookup("stable-slope"))
	bindFlag("analysis.trend_alert_percent", flags.Lookup("trend-alert-percent"))

	rootCmd.AddCommand(analyzeCmd)
}
