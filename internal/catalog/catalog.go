// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the static reference data for every supported
// biomarker: extraction patterns, canonical units, clinical reference ranges,
// plausibility bounds, unit aliases, legacy names, and recommendations.
//
// The catalog is built once and never mutated, so a single *Catalog may be
// shared freely across goroutines.
package catalog

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// Definition describes one biomarker.
type Definition struct {
	// Biomarker is the identifier this definition belongs to.
	Biomarker types.Biomarker

	// Patterns are tried in order; earlier patterns are more specific.
	// Capture group 1 is the numeric value, optional group 2 the unit.
	Patterns []*regexp.Regexp

	// Unit is the canonical unit, used when a match carries no known unit.
	Unit types.Unit

	// Reference is the clinical reference range used to derive status.
	Reference types.Range

	// Plausible bounds reject extraction errors. They are wider than Reference.
	Plausible types.Range
}

// Catalog is an immutable lookup over all biomarker definitions.
type Catalog struct {
	defs map[types.Biomarker]Definition
}

var defaultCatalog = sync.OnceValue(func() *Catalog { return build(definitionTable) })

// Default returns the process-wide catalog.
func Default() *Catalog {
	return defaultCatalog()
}

func build(table []rawDefinition) *Catalog {
	c := &Catalog{defs: make(map[types.Biomarker]Definition, len(table))}
	for _, raw := range table {
		def := Definition{
			Biomarker: raw.biomarker,
			Unit:      raw.unit,
			Reference: raw.reference,
			Plausible: raw.plausible,
		}
		for _, p := range raw.patterns {
			def.Patterns = append(def.Patterns, regexp.MustCompile(p))
		}
		c.defs[raw.biomarker] = def
	}
	return c
}

// Definition returns the definition for b. b must be one of
// types.AllBiomarkers; any other value is a programming error.
func (c *Catalog) Definition(b types.Biomarker) Definition {
	def, ok := c.defs[b]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown biomarker %q", b))
	}
	return def
}

// Status classifies value against b's reference range. Values equal to
// either bound are Normal.
func (c *Catalog) Status(b types.Biomarker, value float64) types.Status {
	ref := c.Definition(b).Reference
	switch {
	case value > ref.Max:
		return types.StatusHigh
	case value < ref.Min:
		return types.StatusLow
	default:
		return types.StatusNormal
	}
}

// Measurement builds a Measurement for b with the catalog's reference range
// snapshot and derived status.
func (c *Catalog) Measurement(b types.Biomarker, value float64, unit types.Unit, confidence float64) (types.Measurement, error) {
	def := c.Definition(b)
	return types.NewMeasurement(value, unit, def.Reference, c.Status(b, value), confidence)
}

// ParseUnit maps a unit token as written in a report to its canonical unit.
// Matching is exact; unknown tokens report false.
func ParseUnit(token string) (types.Unit, bool) {
	u, ok := unitAliases[token]
	return u, ok
}

// ParseBiomarker maps a legacy biomarker name to its identifier. Matching is
// exact; unknown names report false.
func ParseBiomarker(name string) (types.Biomarker, bool) {
	b, ok := legacyNames[name]
	return b, ok
}

// Recommendation returns advice for a biomarker in the given status.
func Recommendation(b types.Biomarker, status types.Status) string {
	if byStatus, ok := recommendations[b]; ok {
		if text, ok := byStatus[status]; ok {
			return text
		}
	}
	return defaultRecommendation
}
