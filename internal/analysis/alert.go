// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// GenerateAlerts returns biomarker alerts for every abnormal value in the
// latest report, followed by trend alerts for large sustained changes.
func (a *Analyzer) GenerateAlerts(p types.PatientProfile, trends map[types.Biomarker]types.Trend) []types.Alert {
	alerts := []types.Alert{}

	if latest, ok := p.LatestReport(); ok {
		for _, b := range types.AllBiomarkers {
			m, ok := latest.Biomarkers[b]
			if !ok || m.Status == types.StatusNormal {
				continue
			}
			alerts = append(alerts, biomarkerAlert(b, m, trends[b]))
		}
	}

	for _, b := range types.AllBiomarkers {
		t, ok := trends[b]
		if !ok {
			continue
		}
		if alert, ok := a.trendAlert(t); ok {
			alerts = append(alerts, alert)
		}
	}

	a.log.WithField("alerts", len(alerts)).Debug("alerts generated")
	return alerts
}

func biomarkerAlert(b types.Biomarker, m types.Measurement, t types.Trend) types.Alert {
	severity := types.SeverityMedium
	if m.Status == types.StatusHigh || m.Status == types.StatusLow {
		severity = types.SeverityHigh
	}

	var qualifier string
	switch {
	case t.Direction == types.TrendRising && m.Status == types.StatusHigh:
		qualifier = " (trending upward)"
	case t.Direction == types.TrendFalling && m.Status == types.StatusLow:
		qualifier = " (trending downward)"
	}

	value := FormatValue(m.Value) + " " + string(m.Unit)
	return types.Alert{
		Type:           types.AlertBiomarker,
		Severity:       severity,
		Biomarker:      b,
		Value:          value,
		Status:         m.Status,
		Message:        fmt.Sprintf("%s is %s%s. Current value: %s", b, strings.ToLower(string(m.Status)), qualifier, value),
		Recommendation: catalog.Recommendation(b, m.Status),
	}
}

func (a *Analyzer) trendAlert(t types.Trend) (types.Alert, bool) {
	threshold := a.cfg.TrendAlertPercent
	alert := types.Alert{
		Type:      types.AlertTrend,
		Severity:  types.SeverityMedium,
		Biomarker: t.Biomarker,
	}
	switch {
	case t.Direction == types.TrendRising && t.ChangePercentage > threshold:
		alert.Message = fmt.Sprintf("%s has increased by %.1f%% over the monitoring period", t.Biomarker, t.ChangePercentage)
		alert.Recommendation = fmt.Sprintf("Monitor %s closely and consider lifestyle modifications", t.Biomarker)
	case t.Direction == types.TrendFalling && t.ChangePercentage < -threshold:
		alert.Message = fmt.Sprintf("%s has decreased by %.1f%% over the monitoring period", t.Biomarker, math.Abs(t.ChangePercentage))
		alert.Recommendation = fmt.Sprintf("Monitor %s closely and consider supplementation if appropriate", t.Biomarker)
	default:
		return types.Alert{}, false
	}
	return alert, true
}

// FormatValue renders a measurement value the way lab reports print it:
// shortest exact decimal, with at least one fractional digit.
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
