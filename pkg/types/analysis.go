// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TrendDirection is the sign of a fitted trend line.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// Trend summarizes a biomarker's history. Values and Dates are index-aligned
// and in chronological order.
type Trend struct {
	Biomarker        Biomarker      `json:"biomarker" yaml:"biomarker"`
	Values           []float64      `json:"values" yaml:"values"`
	Dates            []time.Time    `json:"dates" yaml:"dates"`
	Direction        TrendDirection `json:"trend_direction" yaml:"trend_direction"`
	Strength         float64        `json:"trend_strength" yaml:"trend_strength"`
	LatestValue      float64        `json:"latest_value" yaml:"latest_value"`
	ChangePercentage float64        `json:"change_percentage" yaml:"change_percentage"`
}

// AlertType distinguishes alerts raised from a current value from those
// raised from a trend.
type AlertType string

const (
	AlertBiomarker AlertType = "biomarker_alert"
	AlertTrend     AlertType = "trend_alert"
)

// Severity ranks an alert.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// Alert is a clinical alert with an attached recommendation.
type Alert struct {
	Type           AlertType `json:"type" yaml:"type"`
	Severity       Severity  `json:"severity" yaml:"severity"`
	Biomarker      Biomarker `json:"biomarker" yaml:"biomarker"`
	Value          string    `json:"value,omitempty" yaml:"value,omitempty"`
	Status         Status    `json:"status,omitempty" yaml:"status,omitempty"`
	Message        string    `json:"message" yaml:"message"`
	Recommendation string    `json:"recommendation" yaml:"recommendation"`
}

// CriticalAlert flags a value far outside its reference range.
type CriticalAlert struct {
	Biomarker    Biomarker `json:"biomarker" yaml:"biomarker"`
	Value        float64   `json:"value" yaml:"value"`
	Status       string    `json:"status" yaml:"status"`
	ReferenceMax *float64  `json:"reference_max,omitempty" yaml:"reference_max,omitempty"`
	ReferenceMin *float64  `json:"reference_min,omitempty" yaml:"reference_min,omitempty"`
}

const (
	CriticallyHigh = "Critically High"
	CriticallyLow  = "Critically Low"
)

// SummaryStats aggregates counts across a profile.
type SummaryStats struct {
	TotalReports         int                   `json:"total_reports" yaml:"total_reports"`
	MonitoringPeriodDays int                   `json:"monitoring_period_days" yaml:"monitoring_period_days"`
	TotalBiomarkers      int                   `json:"total_biomarkers" yaml:"total_biomarkers"`
	BiomarkerCounts      map[Biomarker]int     `json:"biomarker_counts" yaml:"biomarker_counts"`
	StatusSummary        map[Status]int        `json:"status_summary" yaml:"status_summary"`
	LatestValues         map[Biomarker]float64 `json:"latest_values" yaml:"latest_values"`
	CriticalAlerts       []CriticalAlert       `json:"critical_alerts" yaml:"critical_alerts"`
}

// DashboardData is the exported aggregate: profile, trends, stats, alerts.
type DashboardData struct {
	PatientProfile PatientProfile      `json:"patient_profile" yaml:"patient_profile"`
	Trends         map[Biomarker]Trend `json:"trends" yaml:"trends"`
	SummaryStats   SummaryStats        `json:"summary_stats" yaml:"summary_stats"`
	Alerts         []Alert             `json:"alerts" yaml:"alerts"`
}
