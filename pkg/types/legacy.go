// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// UnknownDate is the report_date sentinel meaning "date not recorded".
const UnknownDate = "Unknown"

// LegacyDocument is the input JSON format: one patient and a list of
// reports whose biomarkers are keyed by display name.
type LegacyDocument struct {
	Patient *string        `json:"patient"`
	Age     *int           `json:"age"`
	Gender  *string        `json:"gender"`
	Reports []LegacyReport `json:"reports"`
}

// LegacyReport is a single report inside a LegacyDocument. The date and
// biomarker values are kept raw so a malformed field fails on its own
// instead of rejecting the whole document.
type LegacyReport struct {
	ReportDate json.RawMessage            `json:"report_date"`
	SourceFile string                     `json:"source_file"`
	Biomarkers map[string]json.RawMessage `json:"biomarkers"`
}

// IsEmpty reports whether the document carries neither identity nor reports.
func (d LegacyDocument) IsEmpty() bool {
	return d.Patient == nil && d.Age == nil && d.Gender == nil && len(d.Reports) == 0
}
