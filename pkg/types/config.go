// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LogConfig holds logging settings shared by every command.
type LogConfig struct {
	// Level is a logrus level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects the formatter: text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// File, when set, receives a copy of every log line (e.g. "app.log").
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// TextBackend identifies the tool that turns a PDF into plain text.
type TextBackend string

const (
	BackendPdftotext TextBackend = "pdftotext"
	BackendContainer TextBackend = "container"
	BackendUniPDF    TextBackend = "unipdf"
)

// ConversionConfig holds settings for PDF text retrieval.
type ConversionConfig struct {
	// Backend selects the text retrieval tool: pdftotext, container, or unipdf.
	Backend TextBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Workers bounds how many documents are converted at once (default 1).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// LicenseKey is the unipdf metered license key, when the unipdf backend is used.
	LicenseKey string `json:"license_key,omitempty" yaml:"license_key,omitempty" mapstructure:"license_key"`
}

// AnalysisConfig holds thresholds for trend and alert computation.
type AnalysisConfig struct {
	// StableSlope is the absolute slope below which a trend is "stable" (default 0.01).
	StableSlope float64 `json:"stable_slope" yaml:"stable_slope" mapstructure:"stable_slope"`

	// TrendAlertPercent is the change percentage beyond which a trend alert
	// is raised (default 20).
	TrendAlertPercent float64 `json:"trend_alert_percent" yaml:"trend_alert_percent" mapstructure:"trend_alert_percent"`
}

const (
	DefaultStableSlope       = 0.01
	DefaultTrendAlertPercent = 20.0
)

// WithDefaults fills zero-valued thresholds with their defaults.
func (c AnalysisConfig) WithDefaults() AnalysisConfig {
	if c.StableSlope <= 0 {
		c.StableSlope = DefaultStableSlope
	}
	if c.TrendAlertPercent <= 0 {
		c.TrendAlertPercent = DefaultTrendAlertPercent
	}
	return c
}

// ExportConfig lists where the dashboard is written.
type ExportConfig struct {
	// JSONPaths receive the canonical JSON export.
	JSONPaths []string `json:"json_paths" yaml:"json_paths" mapstructure:"json_paths"`

	// YAMLPath, when set, receives a YAML rendering of the same data.
	YAMLPath string `json:"yaml_path,omitempty" yaml:"yaml_path,omitempty" mapstructure:"yaml_path"`

	// SQLitePath, when set, receives a single-file SQLite snapshot.
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
}

// PipelineConfig groups all settings for a run.
type PipelineConfig struct {
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
	Conversion ConversionConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
}
