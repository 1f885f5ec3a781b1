// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const (
	criticalHighFactor = 1.5
	criticalLowFactor  = 0.5
)

// SummaryStats counts reports, measurements, and statuses across the
// profile and flags critically abnormal values.
func SummaryStats(p types.PatientProfile) types.SummaryStats {
	stats := types.SummaryStats{
		TotalReports:    len(p.Reports),
		BiomarkerCounts: map[types.Biomarker]int{},
		StatusSummary: map[types.Status]int{
			types.StatusNormal: 0,
			types.StatusHigh:   0,
			types.StatusLow:    0,
		},
		LatestValues:   map[types.Biomarker]float64{},
		CriticalAlerts: []types.CriticalAlert{},
	}
	if len(p.Reports) == 0 {
		return stats
	}

	earliest, latest := p.Reports[0].ReportDate, p.Reports[0].ReportDate
	for _, r := range p.Reports {
		if r.ReportDate.Before(earliest) {
			earliest = r.ReportDate
		}
		if r.ReportDate.After(latest) {
			latest = r.ReportDate
		}

		stats.TotalBiomarkers += len(r.Biomarkers)
		for _, b := range types.AllBiomarkers {
			m, ok := r.Biomarkers[b]
			if !ok {
				continue
			}
			stats.BiomarkerCounts[b]++
			if m.Status != "" {
				stats.StatusSummary[m.Status]++
			}
			stats.LatestValues[b] = m.Value
			if c, ok := critical(b, m); ok {
				stats.CriticalAlerts = append(stats.CriticalAlerts, c)
			}
		}
	}
	stats.MonitoringPeriodDays = int(latest.Sub(earliest).Hours() / 24)
	return stats
}

// critical flags values above 1.5x the reference maximum or below half the
// reference minimum.
func critical(b types.Biomarker, m types.Measurement) (types.CriticalAlert, bool) {
	ref := m.ReferenceRange
	switch {
	case m.Status == types.StatusHigh && m.Value > ref.Max*criticalHighFactor:
		return types.CriticalAlert{Biomarker: b, Value: m.Value, Status: types.CriticallyHigh, ReferenceMax: &ref.Max}, true
	case m.Status == types.StatusLow && m.Value < ref.Min*criticalLowFactor:
		return types.CriticalAlert{Biomarker: b, Value: m.Value, Status: types.CriticallyLow, ReferenceMin: &ref.Min}, true
	}
	return types.CriticalAlert{}, false
}
