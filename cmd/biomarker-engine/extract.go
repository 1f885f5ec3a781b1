// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/internal/convert"
	"github.com/pdiddy/biomarker-engine/internal/report"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <documents...>",
	Short: "Extract biomarker values from lab report documents",
	Long: `Extract retrieves the text of each document (.pdf, .txt), searches it for
every supported biomarker, and prints what was found: value, unit, status,
pattern confidence, and the surrounding text. Use it to check a new lab's
report layout before running analyze.

With --json the assembled reports are written to stdout as a JSON array and
the per-document diagnostics go to stderr.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		out := cmd.OutOrStdout()
		status := out
		if asJSON {
			status = cmd.ErrOrStderr()
		}

		docs := convert.NewDocuments(nil)
		if hasExt(args, ".pdf") {
			docs, err = convert.New(cmd.Context(), cfg.Conversion)
			if err != nil {
				return fmt.Errorf("setting up %s backend: %w", cfg.Conversion.Backend, err)
			}
		}

		converted, result := convert.ExtractBatch(cmd.Context(), docs, args, cfg.Conversion.Workers, status)

		asm := report.New(catalog.Default(), log)
		reports := make([]types.Report, 0, len(converted))
		for _, d := range converted {
			if d.Err != nil {
				continue
			}
			r := asm.FromText(d.Text, d.Path)
			reports = append(reports, r)
			printReport(status, d.Path, r)
		}

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(reports); err != nil {
				return fmt.Errorf("encoding reports: %w", err)
			}
		}

		if result.HasFailures() {
			return fmt.Errorf("%d of %d document(s) failed", result.Failed, result.Total())
		}
		return nil
	},
}

// printReport writes one line per biomarker: the reading when found, or
// "not found".
func printReport(w io.Writer, path string, r types.Report) {
	fmt.Fprintf(w, "\n%s (report date %s, %d/%d biomarkers)\n",
		path, r.ReportDate.Format("2006-01-02"), len(r.Biomarkers), len(types.AllBiomarkers))
	if r.Metadata.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Metadata.Error)
		return
	}
	for _, b := range types.AllBiomarkers {
		m, ok := r.Biomarkers[b]
		if !ok {
			fmt.Fprintf(w, "  %-22s not found\n", b)
			continue
		}
		fmt.Fprintf(w, "  %-22s %8.2f %-7s %-16s confidence %.2f\n",
			b, m.Value, m.Unit, m.Status, m.Confidence)
		if ctx := r.Metadata.Contexts[b]; ctx != "" {
			fmt.Fprintf(w, "  %-22s %q\n", "", ctx)
		}
	}
	for _, e := range r.Metadata.ConversionErrors {
		fmt.Fprintf(w, "  skipped: %s\n", e)
	}
}

func init() {
	extractCmd.Flags().Bool("json", false, "write the assembled reports to stdout as JSON")

	rootCmd.AddCommand(extractCmd)
}
