// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"math"
	"time"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// AnalyzeTrends returns one Trend per biomarker observed in at least two
// reports. Values keep the profile's report order.
func (a *Analyzer) AnalyzeTrends(p types.PatientProfile) map[types.Biomarker]types.Trend {
	trends := make(map[types.Biomarker]types.Trend)
	for _, b := range types.AllBiomarkers {
		var (
			values []float64
			dates  []time.Time
		)
		for _, r := range p.Reports {
			if m, ok := r.Biomarkers[b]; ok {
				values = append(values, m.Value)
				dates = append(dates, r.ReportDate)
			}
		}
		if len(values) < 2 {
			continue
		}

		slope, r2 := FitLine(values)
		t := types.Trend{
			Biomarker:        b,
			Values:           values,
			Dates:            dates,
			Direction:        a.direction(slope),
			Strength:         r2,
			LatestValue:      values[len(values)-1],
			ChangePercentage: ChangePercentage(values),
		}
		a.log.WithField("biomarker", b).Debugf("trend %s (slope %.4f, r2 %.3f)", t.Direction, slope, r2)
		trends[b] = t
	}
	return trends
}

func (a *Analyzer) direction(slope float64) types.TrendDirection {
	switch {
	case math.Abs(slope) < a.cfg.StableSlope:
		return types.TrendStable
	case slope > 0:
		return types.TrendRising
	default:
		return types.TrendFalling
	}
}

// FitLine fits an ordinary least-squares line to values against their
// index positions 0..n-1 and returns its slope and coefficient of
// determination. R² is 0 when all values are equal and is clamped to [0, 1].
// values must hold at least two points.
func FitLine(values []float64) (slope, r2 float64) {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	slope = (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	mean := sumY / n
	var ssTot, ssRes float64
	for i, y := range values {
		d := y - mean
		ssTot += d * d
		r := y - (slope*float64(i) + intercept)
		ssRes += r * r
	}
	if ssTot == 0 {
		return slope, 0
	}
	r2 = 1 - ssRes/ssTot
	return slope, min(max(r2, 0), 1)
}

// ChangePercentage is the relative change from the first to the last value,
// in percent. It is 0 when the first value is 0.
func ChangePercentage(values []float64) float64 {
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}
