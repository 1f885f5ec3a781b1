// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract finds biomarker values in free document text. Each
// biomarker has an ordered list of patterns in the catalog; the first pattern
// yielding a plausible value wins, and its position sets the confidence.
package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const (
	// contextRadius is how many bytes around a match are kept for diagnostics.
	contextRadius = 30

	confidenceStep = 0.15
)

// Confidence returns the confidence assigned to a match from the pattern at
// index i. It is not clamped.
func Confidence(i int) float64 {
	return 1.0 - confidenceStep*float64(i)
}

// Result is a validated match for one biomarker.
type Result struct {
	Biomarker    types.Biomarker
	Value        float64
	Unit         types.Unit
	Confidence   float64
	PatternIndex int
	Pattern      string
	Context      string
}

// Extractor runs catalog patterns against document text.
type Extractor struct {
	catalog *catalog.Catalog
	log     logrus.FieldLogger
}

// New returns an Extractor over c. A nil logger discards output.
func New(c *catalog.Catalog, log logrus.FieldLogger) *Extractor {
	return &Extractor{catalog: c, log: logging.OrDiscard(log)}
}

// Extract searches text for b. Patterns are tried in order; a match whose
// value falls outside the plausibility bounds is rejected and the next
// pattern is tried. It reports false when no pattern yields a valid value.
func (e *Extractor) Extract(text string, b types.Biomarker) (Result, bool) {
	def := e.catalog.Definition(b)

	for i, re := range def.Patterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		raw := text[loc[2]:loc[3]]
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			e.log.WithFields(logrus.Fields{"biomarker": b, "pattern": i}).
				Debugf("unparsable value %q: %v", raw, err)
			continue
		}

		if !def.Plausible.Contains(value) {
			e.log.WithFields(logrus.Fields{"biomarker": b, "pattern": i, "value": value}).
				Debug("value outside plausible bounds, trying next pattern")
			continue
		}

		unit := def.Unit
		if len(loc) >= 6 && loc[4] >= 0 {
			if u, ok := catalog.ParseUnit(text[loc[4]:loc[5]]); ok {
				unit = u
			}
		}

		return Result{
			Biomarker:    b,
			Value:        value,
			Unit:         unit,
			Confidence:   Confidence(i),
			PatternIndex: i,
			Pattern:      re.String(),
			Context:      contextWindow(text, loc[0], loc[1]),
		}, true
	}

	return Result{}, false
}

// ExtractResults runs Extract for every biomarker and returns the matches.
// Biomarkers without a match are omitted and logged as warnings.
func (e *Extractor) ExtractResults(text string) map[types.Biomarker]Result {
	results := make(map[types.Biomarker]Result)
	for _, b := range types.AllBiomarkers {
		r, ok := e.Extract(text, b)
		if !ok {
			e.log.WithField("biomarker", b).Warn("biomarker not found")
			continue
		}
		e.log.WithFields(logrus.Fields{
			"biomarker":  b,
			"value":      r.Value,
			"unit":       r.Unit,
			"confidence": r.Confidence,
		}).Info("biomarker extracted")
		results[b] = r
	}
	return results
}

// ExtractAll returns a Measurement for every biomarker found in text.
func (e *Extractor) ExtractAll(text string) map[types.Biomarker]types.Measurement {
	out := make(map[types.Biomarker]types.Measurement)
	for b, r := range e.ExtractResults(text) {
		m, err := e.Measurement(r)
		if err != nil {
			e.log.WithField("biomarker", b).Warnf("discarding extracted value: %v", err)
			continue
		}
		out[b] = m
	}
	return out
}

// Measurement converts a Result into a Measurement with reference range and status.
func (e *Extractor) Measurement(r Result) (types.Measurement, error) {
	return e.catalog.Measurement(r.Biomarker, r.Value, r.Unit, r.Confidence)
}

// contextWindow returns the trimmed text within contextRadius characters
// of the byte range [start, end).
func contextWindow(text string, start, end int) string {
	lo := start
	for i := 0; i < contextRadius && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:lo])
		lo -= size
	}
	hi := end
	for i := 0; i < contextRadius && hi < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[hi:])
		hi += size
	}
	return strings.TrimSpace(text[lo:hi])
}
