// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const labPanel = `CITY LAB SERVICES
LIPID PANEL
Total Cholesterol: 210 mg/dL
LDL Cholesterol: 130 mg/dL
HDL: 45 mg/dL
Triglycerides: 160 mg/dL
Serum Creatinine 0.9
Vitamin D: 25 ng/mL
Vitamin B12: 450 pg/mL
HbA1c: 5.8 %
`

func newExtractor() *Extractor {
	return New(catalog.Default(), nil)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		biomarker      types.Biomarker
		wantValue      float64
		wantUnit       types.Unit
		wantPattern    int
		wantConfidence float64
	}{
		{
			name:      "primary pattern with unit",
			text:      labPanel,
			biomarker: types.TotalCholesterol,
			wantValue: 210, wantUnit: types.UnitMgDL, wantPattern: 0, wantConfidence: 1.0,
		},
		{
			name:      "second pattern when label has a suffix",
			text:      labPanel,
			biomarker: types.LDL,
			wantValue: 130, wantUnit: types.UnitMgDL, wantPattern: 1, wantConfidence: 0.85,
		},
		{
			name:      "pattern without unit falls back to canonical unit",
			text:      labPanel,
			biomarker: types.Creatinine,
			wantValue: 0.9, wantUnit: types.UnitMgDL, wantPattern: 1, wantConfidence: 0.85,
		},
		{
			name:      "captured unit is mapped through aliases",
			text:      "Vitamin D: 75 nmol/L",
			biomarker: types.VitaminD,
			wantValue: 75, wantUnit: types.UnitNmolL, wantPattern: 0, wantConfidence: 1.0,
		},
		{
			name:      "case-insensitive match with unmapped unit spelling",
			text:      "total cholesterol: 190 MG/DL",
			biomarker: types.TotalCholesterol,
			wantValue: 190, wantUnit: types.UnitMgDL, wantPattern: 0, wantConfidence: 1.0,
		},
		{
			name:      "synonym with canonical unit",
			text:      "Glycated Hemoglobin: 6.2",
			biomarker: types.HbA1c,
			wantValue: 6.2, wantUnit: types.UnitPercent, wantPattern: 1, wantConfidence: 0.85,
		},
		{
			name:      "implausible primary match falls through to later pattern",
			text:      "LDL: 5000 mg/dL (see note)\nLow Density Lipoprotein: 120",
			biomarker: types.LDL,
			wantValue: 120, wantUnit: types.UnitMgDL, wantPattern: 2, wantConfidence: 0.7,
		},
		{
			name:      "b12 with picomolar unit",
			text:      "Vitamin B12 350 pmol/L",
			biomarker: types.VitaminB12,
			wantValue: 350, wantUnit: types.UnitPmolL, wantPattern: 0, wantConfidence: 1.0,
		},
	}

	e := newExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.text, tt.biomarker)
			require.True(t, ok, "expected a match for %s", tt.biomarker)
			assert.Equal(t, tt.biomarker, got.Biomarker)
			assert.InDelta(t, tt.wantValue, got.Value, 1e-9)
			assert.Equal(t, tt.wantUnit, got.Unit)
			assert.Equal(t, tt.wantPattern, got.PatternIndex)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.NotEmpty(t, got.Pattern)
			assert.NotEmpty(t, got.Context)
		})
	}
}

func TestExtractNotFound(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		name      string
		text      string
		biomarker types.Biomarker
	}{
		{"empty text", "", types.HDL},
		{"unrelated text", "Hemoglobin 14.2 g/dL, Platelets 250", types.HDL},
		{"every match implausible", "Total Cholesterol: 900 mg/dL", types.TotalCholesterol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := e.Extract(tt.text, tt.biomarker)
			assert.False(t, ok)
		})
	}
}

func TestExtractContextWindow(t *testing.T) {
	text := strings.Repeat("x", 50) + "HDL: 45 mg/dL" + strings.Repeat("y", 50)

	got, ok := newExtractor().Extract(text, types.HDL)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("x", 30)+"HDL: 45 mg/dL"+strings.Repeat("y", 30), got.Context)
}

func TestContextWindowCountsCharacters(t *testing.T) {
	// "μ" is two bytes but one character of context.
	text := strings.Repeat("μ", 40) + " Creatinine " + strings.Repeat("μ", 40)
	start := strings.Index(text, "Creatinine")
	got := contextWindow(text, start, start+len("Creatinine"))
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("μ", 29)+" Creatinine "+strings.Repeat("μ", 29), got)
}

func TestConfidenceNonIncreasing(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.LessOrEqual(t, Confidence(i+1), Confidence(i))
	}
	assert.Equal(t, 1.0, Confidence(0))

	for _, b := range types.AllBiomarkers {
		n := len(catalog.Default().Definition(b).Patterns)
		assert.Greater(t, Confidence(n-1), 0.0, "%s has too many patterns for a positive confidence", b)
	}
}

func TestExtractAll(t *testing.T) {
	got := newExtractor().ExtractAll(labPanel)

	require.Len(t, got, len(types.AllBiomarkers))

	want := map[types.Biomarker]struct {
		value  float64
		status types.Status
	}{
		types.TotalCholesterol: {210, types.StatusHigh},
		types.LDL:              {130, types.StatusHigh},
		types.HDL:              {45, types.StatusNormal},
		types.Triglycerides:    {160, types.StatusHigh},
		types.Creatinine:       {0.9, types.StatusNormal},
		types.VitaminD:         {25, types.StatusLow},
		types.VitaminB12:       {450, types.StatusNormal},
		types.HbA1c:            {5.8, types.StatusHigh},
	}
	for b, w := range want {
		m, ok := got[b]
		require.True(t, ok, "missing %s", b)
		assert.InDelta(t, w.value, m.Value, 1e-9, "%s value", b)
		assert.Equal(t, w.status, m.Status, "%s status", b)
		assert.Equal(t, catalog.Default().Definition(b).Reference, m.ReferenceRange)
	}
}

func TestExtractAllOmitsMissing(t *testing.T) {
	got := newExtractor().ExtractAll("HDL: 52 mg/dL\nHbA1c 5.1%")

	assert.Len(t, got, 2)
	assert.Contains(t, got, types.HDL)
	assert.Contains(t, got, types.HbA1c)
}

func TestExtractAllRespectsPlausibleBounds(t *testing.T) {
	texts := []string{
		labPanel,
		"Total Cholesterol 45 mg/dL LDL 999 mg/dL HDL 9 HbA1c 25 % Vitamin D 0.5 ng/mL",
		"Cholesterol 700; Triglycerides 1500; Creatinine 35 mg/dL; B12 20000",
		"Chol 65 TG 19 Vit D 201 A1c 2.9",
	}
	e := newExtractor()
	for _, text := range texts {
		for b, m := range e.ExtractAll(text) {
			def := catalog.Default().Definition(b)
			assert.True(t, def.Plausible.Contains(m.Value),
				"%s value %g outside plausible %v in %q", b, m.Value, def.Plausible, text)
		}
	}
}

func TestExtractResultsLogsMissingAsWarnings(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := New(catalog.Default(), log)

	results := e.ExtractResults("HDL: 52 mg/dL")
	require.Len(t, results, 1)

	var warnings int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
			assert.Equal(t, "biomarker not found", entry.Message)
		}
	}
	assert.Equal(t, len(types.AllBiomarkers)-1, warnings)
}
