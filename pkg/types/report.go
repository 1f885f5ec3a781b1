// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExtractionMetadata records how a Report was produced. Fields are optional;
// which ones are set depends on whether the report came from document text or
// a legacy JSON record.
type ExtractionMetadata struct {
	// TextLength is the number of bytes of document text examined.
	TextLength int `json:"text_length,omitempty" yaml:"text_length,omitempty"`

	// BiomarkersFound is the number of biomarkers with a validated match.
	BiomarkersFound int `json:"biomarkers_found,omitempty" yaml:"biomarkers_found,omitempty"`

	// ExtractedAt is when text extraction ran.
	ExtractedAt *time.Time `json:"extraction_timestamp,omitempty" yaml:"extraction_timestamp,omitempty"`

	// PatternsUsed maps each found biomarker to the confidence of the pattern that matched.
	PatternsUsed map[Biomarker]float64 `json:"patterns_used,omitempty" yaml:"patterns_used,omitempty"`

	// Contexts holds the text surrounding each match, for diagnostics.
	Contexts map[Biomarker]string `json:"contexts,omitempty" yaml:"contexts,omitempty"`

	// NotFound lists biomarkers that no pattern matched with a plausible value.
	NotFound []Biomarker `json:"not_found,omitempty" yaml:"not_found,omitempty"`

	// Error is set when the document could not be processed (e.g. empty text).
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// ConvertedFromLegacy marks reports built from a legacy JSON record.
	ConvertedFromLegacy bool `json:"converted_from_legacy,omitempty" yaml:"converted_from_legacy,omitempty"`

	// SourcePath is the file the record was loaded from.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`

	// UnmappedBiomarkers lists legacy names with no known biomarker.
	UnmappedBiomarkers []string `json:"unmapped_biomarkers,omitempty" yaml:"unmapped_biomarkers,omitempty"`

	// ConversionErrors lists per-biomarker failures that were skipped.
	ConversionErrors []string `json:"conversion_errors,omitempty" yaml:"conversion_errors,omitempty"`
}

// Report is one laboratory report: a date, a source, and the biomarkers
// measured in it. Reports are not modified after assembly.
type Report struct {
	// ID is a deterministic identifier derived from the source and date.
	ID string `json:"id" yaml:"id"`

	// ReportDate is when the samples were reported.
	ReportDate time.Time `json:"report_date" yaml:"report_date"`

	// SourceFile identifies the originating document.
	SourceFile string `json:"source_file" yaml:"source_file"`

	// Biomarkers maps each measured biomarker to its reading.
	Biomarkers map[Biomarker]Measurement `json:"biomarkers" yaml:"biomarkers"`

	// Metadata records extraction details.
	Metadata ExtractionMetadata `json:"extraction_metadata" yaml:"extraction_metadata"`
}

// PatientProfile holds one patient's identity and report history. Reports
// are sorted ascending by ReportDate.
type PatientProfile struct {
	PatientID string    `json:"patient_id" yaml:"patient_id"`
	Name      string    `json:"name" yaml:"name"`
	Age       *int      `json:"age" yaml:"age"`
	Gender    *string   `json:"gender" yaml:"gender"`
	Reports   []Report  `json:"reports" yaml:"reports"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// LatestReport returns the most recent report, or false when there are none.
func (p PatientProfile) LatestReport() (Report, bool) {
	if len(p.Reports) == 0 {
		return Report{}, false
	}
	return p.Reports[len(p.Reports)-1], true
}
