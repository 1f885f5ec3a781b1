// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis derives trends, alerts, and summary statistics from a
// PatientProfile. Every operation is a pure function of its inputs and the
// configured thresholds.
package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// Analyzer computes trends and alerts with configurable thresholds.
type Analyzer struct {
	cfg types.AnalysisConfig
	log logrus.FieldLogger
}

// New returns an Analyzer. Zero thresholds in cfg take their defaults.
func New(cfg types.AnalysisConfig, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{
		cfg: cfg.WithDefaults(),
		log: logging.OrDiscard(log),
	}
}

// Config returns the effective thresholds.
func (a *Analyzer) Config() types.AnalysisConfig {
	return a.cfg
}
