// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard composes the exported DashboardData aggregate and
// renders its human-readable summary.
package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/biomarker-engine/internal/analysis"
	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// Compose bundles the profile with its trends, summary statistics, and
// alerts.
func Compose(p types.PatientProfile, cfg types.AnalysisConfig, log logrus.FieldLogger) types.DashboardData {
	log = logging.OrDiscard(log)
	a := analysis.New(cfg, log)

	trends := a.AnalyzeTrends(p)
	data := types.DashboardData{
		PatientProfile: p,
		Trends:         trends,
		SummaryStats:   analysis.SummaryStats(p),
		Alerts:         a.GenerateAlerts(p, trends),
	}

	log.WithFields(logrus.Fields{
		"patient": p.PatientID,
		"trends":  len(data.Trends),
		"alerts":  len(data.Alerts),
	}).Info("dashboard data created")
	return data
}

const rule = "============================================================"

// PrintSummary writes the analysis summary for data to w, listing outputs
// as the places the data was exported to.
func PrintSummary(w io.Writer, data types.DashboardData, outputs []string) {
	p := data.PatientProfile
	s := data.SummaryStats

	fmt.Fprintf(w, "\n%s\nBIOMARKER ANALYSIS SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(w, "Patient: %s\n", p.Name)
	fmt.Fprintf(w, "Age: %s\n", optional(p.Age))
	fmt.Fprintf(w, "Gender: %s\n", optional(p.Gender))
	fmt.Fprintf(w, "Total Reports: %d\n", s.TotalReports)
	fmt.Fprintf(w, "Monitoring Period: %d days\n", s.MonitoringPeriodDays)
	fmt.Fprintf(w, "Total Biomarkers: %d\n", s.TotalBiomarkers)

	fmt.Fprintf(w, "\nTREND ANALYSIS:\n")
	for _, b := range types.AllBiomarkers {
		t, ok := data.Trends[b]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %s: %s (%+.1f%%)\n", b, t.Direction, t.ChangePercentage)
	}

	fmt.Fprintf(w, "\nALERTS (%d):\n", len(data.Alerts))
	for _, a := range data.Alerts {
		fmt.Fprintf(w, "  • %s\n", a.Message)
	}

	if len(s.CriticalAlerts) > 0 {
		fmt.Fprintf(w, "\nCRITICAL VALUES (%d):\n", len(s.CriticalAlerts))
		for _, c := range s.CriticalAlerts {
			fmt.Fprintf(w, "  ! %s %s: %s\n", c.Biomarker, strings.ToLower(c.Status), analysis.FormatValue(c.Value))
		}
	}

	if len(outputs) > 0 {
		fmt.Fprintf(w, "\nData exported to:\n")
		for _, o := range outputs {
			fmt.Fprintf(w, "  - %s\n", o)
		}
	}
	fmt.Fprintln(w, rule)
}

func optional[T any](v *T) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprint(*v)
}
