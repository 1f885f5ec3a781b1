// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the biomarker-engine pipeline:
// biomarker identifiers and units, measurements, reports, patient profiles,
// trends, alerts, and the exported dashboard aggregate.
package types

import (
	"errors"
	"fmt"
	"math"
)

// Biomarker identifies one of the tracked clinical measurements. The value is
// the canonical display string and is what appears in exported JSON.
type Biomarker string

const (
	TotalCholesterol Biomarker = "Total Cholesterol"
	LDL              Biomarker = "LDL"
	HDL              Biomarker = "HDL"
	Triglycerides    Biomarker = "Triglycerides"
	Creatinine       Biomarker = "Creatinine"
	VitaminD         Biomarker = "Vitamin D"
	VitaminB12       Biomarker = "Vitamin B12"
	HbA1c            Biomarker = "HbA1c"
)

// AllBiomarkers lists every supported biomarker in canonical order. Callers
// that iterate over biomarkers use this order so output is deterministic.
var AllBiomarkers = []Biomarker{
	TotalCholesterol,
	LDL,
	HDL,
	Triglycerides,
	Creatinine,
	VitaminD,
	VitaminB12,
	HbA1c,
}

// Unit is a measurement unit.
type Unit string

const (
	UnitMgDL    Unit = "mg/dL"
	UnitNgML    Unit = "ng/mL"
	UnitPgML    Unit = "pg/mL"
	UnitPercent Unit = "%"
	UnitUmolL   Unit = "μmol/L"
	UnitNmolL   Unit = "nmol/L"
	UnitPmolL   Unit = "pmol/L"
)

// Status classifies a measurement against its reference range.
type Status string

const (
	StatusNormal Status = "Normal"
	StatusHigh   Status = "High"
	StatusLow    Status = "Low"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var (
	// ErrNegativeValue is returned when a measurement value is below zero.
	ErrNegativeValue = errors.New("biomarker value cannot be negative")

	// ErrNonFiniteValue is returned for NaN or infinite measurement values.
	ErrNonFiniteValue = errors.New("biomarker value must be finite")

	// ErrConfidenceRange is returned when a confidence falls outside [0, 1].
	ErrConfidenceRange = errors.New("confidence out of range [0,1]")
)

// Measurement is a single biomarker reading. It is immutable once built;
// construct it with NewMeasurement.
type Measurement struct {
	Value          float64 `json:"value" yaml:"value"`
	Unit           Unit    `json:"unit" yaml:"unit"`
	ReferenceRange Range   `json:"reference_range" yaml:"reference_range"`
	Status         Status  `json:"status" yaml:"status"`
	Confidence     float64 `json:"confidence" yaml:"confidence"`
}

// NewMeasurement validates and builds a Measurement.
func NewMeasurement(value float64, unit Unit, ref Range, status Status, confidence float64) (Measurement, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Measurement{}, fmt.Errorf("value %g: %w", value, ErrNonFiniteValue)
	}
	if value < 0 {
		return Measurement{}, fmt.Errorf("value %g: %w", value, ErrNegativeValue)
	}
	if confidence < 0 || confidence > 1 {
		return Measurement{}, fmt.Errorf("confidence %g: %w", confidence, ErrConfidenceRange)
	}
	return Measurement{
		Value:          value,
		Unit:           unit,
		ReferenceRange: ref,
		Status:         status,
		Confidence:     confidence,
	}, nil
}
