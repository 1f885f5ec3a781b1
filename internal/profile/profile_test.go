// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/internal/convert"
	"github.com/pdiddy/biomarker-engine/internal/report"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var fixedNow = time.Date(2024, time.July, 4, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newAssembler() *report.Assembler {
	return report.New(catalog.Default(), nil, report.WithClock(clock))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// funcSource adapts a function to Source.
type funcSource struct {
	name string
	load func(ctx context.Context) (Batch, error)
}

func (f funcSource) Name() string { return f.name }
func (f funcSource) Load(ctx context.Context) (Batch, error) { return f.load(ctx) }

func static(name string, b Batch, err error) Source {
	return funcSource{name: name, load: func(context.Context) (Batch, error) { return b, err }}
}

func reportOn(id string, d time.Time) types.Report {
	return types.Report{ID: id, ReportDate: d, Biomarkers: map[types.Biomarker]types.Measurement{}}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }

func TestBuildFromLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeJSON(t, dir, "combined.json", `{
		"patient": "Jane Doe", "age": 45, "gender": "F",
		"reports": [
			{"report_date": "2023-06-01", "biomarkers": {"LDL": 90}},
			{"report_date": "2023-01-01", "biomarkers": {"LDL": 130}}
		]
	}`)
	second := writeJSON(t, dir, "enhanced.json", `{
		"patient": "Someone Else", "age": 70,
		"reports": [
			{"report_date": "2023-03-15", "source_file": "march.pdf", "biomarkers": {"HDL": 55, "LDL": 110}}
		]
	}`)

	asm := newAssembler()
	sources, err := SourcesFromPaths([]string{first, second}, asm, nil, nil)
	require.NoError(t, err)

	p, summary := New(nil, WithClock(clock)).Build(context.Background(), sources)

	assert.Equal(t, "JANE_DOE", p.PatientID)
	assert.Equal(t, "Jane Doe", p.Name)
	require.NotNil(t, p.Age)
	assert.Equal(t, 45, *p.Age)
	require.NotNil(t, p.Gender)
	assert.Equal(t, "F", *p.Gender)
	assert.True(t, fixedNow.Equal(p.CreatedAt))
	assert.True(t, fixedNow.Equal(p.UpdatedAt))

	require.Len(t, p.Reports, 3)
	assert.True(t, date(2023, time.January, 1).Equal(p.Reports[0].ReportDate))
	assert.True(t, date(2023, time.March, 15).Equal(p.Reports[1].ReportDate))
	assert.True(t, date(2023, time.June, 1).Equal(p.Reports[2].ReportDate))
	assert.Equal(t, "march.pdf", p.Reports[1].SourceFile)
	assert.Equal(t, "from_"+first, p.Reports[0].SourceFile)

	assert.Equal(t, types.StatusHigh, p.Reports[0].Biomarkers[types.LDL].Status)
	assert.Equal(t, types.StatusNormal, p.Reports[2].Biomarkers[types.LDL].Status)

	assert.Equal(t, BuildSummary{Sources: 2, Loaded: 2, Reports: 3, Measured: 4, Identified: true}, summary)
	assert.NoError(t, summary.Err())
}

func TestBuildReportsNonDecreasing(t *testing.T) {
	a := static("a", Batch{Reports: []types.Report{
		reportOn("a1", date(2023, 5, 1)),
		reportOn("a2", date(2023, 1, 1)),
		reportOn("a3", date(2023, 3, 1)),
	}}, nil)
	b := static("b", Batch{Reports: []types.Report{
		reportOn("b1", date(2023, 3, 1)),
		reportOn("b2", date(2022, 12, 1)),
		reportOn("b3", date(2023, 5, 1)),
	}}, nil)

	p, _ := New(nil).Build(context.Background(), []Source{a, b})

	ids := make([]string, len(p.Reports))
	for i, r := range p.Reports {
		ids[i] = r.ID
		if i > 0 {
			assert.False(t, r.ReportDate.Before(p.Reports[i-1].ReportDate))
		}
	}
	// Equal dates keep input order.
	assert.Equal(t, []string{"b2", "a2", "a3", "b1", "a1", "b3"}, ids)
}

func TestBuildIdentityFromFirstSourceCarryingIt(t *testing.T) {
	sources := []Source{
		static("scan.pdf", Batch{Reports: []types.Report{reportOn("doc", date(2023, 2, 1))}}, nil),
		static("broken.json", Batch{}, errors.New("unexpected end of JSON input")),
		static("first.json", Batch{Identity: &Identity{Name: "Ana Maria Lopez", Age: intPtr(38), Gender: strPtr("F")}}, nil),
		static("second.json", Batch{Identity: &Identity{Name: "Later Name", Age: intPtr(99)}}, nil),
	}

	log, hook := test.NewNullLogger()
	p, summary := New(log).Build(context.Background(), sources)

	assert.Equal(t, "ANA_MARIA_LOPEZ", p.PatientID)
	assert.Equal(t, "Ana Maria Lopez", p.Name)
	assert.Equal(t, 38, *p.Age)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Loaded)
	assert.True(t, summary.HasFailures())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["source"] == "broken.json" {
			warned = true
		}
	}
	assert.True(t, warned, "failed source should be logged with its name")
}

func TestBuildDefaults(t *testing.T) {
	p, summary := New(nil, WithClock(clock)).Build(context.Background(), []Source{
		static("scan.pdf", Batch{Reports: []types.Report{reportOn("doc", date(2023, 2, 1))}}, nil),
	})

	assert.Equal(t, UnknownID, p.PatientID)
	assert.Equal(t, UnknownName, p.Name)
	assert.Nil(t, p.Age)
	assert.Nil(t, p.Gender)
	assert.Len(t, p.Reports, 1)
	assert.False(t, summary.Identified)
	assert.NoError(t, summary.Err())
}

func TestBuildNoData(t *testing.T) {
	p, summary := New(nil).Build(context.Background(), []Source{
		static("missing.json", Batch{}, errors.New("no such file")),
		static("empty.json", Batch{}, nil),
	})

	assert.ErrorIs(t, summary.Err(), ErrNoData)
	assert.NotNil(t, p.Reports)
	assert.Empty(t, p.Reports)
	assert.Equal(t, UnknownID, p.PatientID)
}

func TestBuildDropsImplausibleAge(t *testing.T) {
	log, hook := test.NewNullLogger()
	p, _ := New(log).Build(context.Background(), []Source{
		static("a.json", Batch{Identity: &Identity{Name: "Old Timer", Age: intPtr(151)}}, nil),
	})

	assert.Nil(t, p.Age)
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["age"] == 151 {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestBuildBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := func(id string, d time.Time) Source {
		return funcSource{name: id, load: func(context.Context) (Batch, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return Batch{Reports: []types.Report{reportOn(id, d)}}, nil
		}}
	}

	sources := make([]Source, 10)
	for i := range sources {
		sources[i] = slow(string(rune('a'+i)), date(2023, 1, 1))
	}

	p, summary := New(nil, WithWorkers(3)).Build(context.Background(), sources)
	assert.Equal(t, 10, summary.Loaded)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i, r := range p.Reports {
		assert.Equal(t, string(rune('a'+i)), r.ID, "equal dates keep source order")
	}
}

func TestLegacyFileSource(t *testing.T) {
	dir := t.TempDir()
	asm := newAssembler()
	ctx := context.Background()

	b, err := LegacyFileSource{Path: writeJSON(t, dir, "empty.json", `{}`), Assembler: asm}.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, b.Identity)
	assert.Empty(t, b.Reports)

	b, err = LegacyFileSource{Path: writeJSON(t, dir, "anon.json", `{"reports": [{"report_date": "Unknown", "biomarkers": {"HbA1c": 6.1}}]}`), Assembler: asm}.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, b.Identity)
	assert.Equal(t, UnknownName, b.Identity.Name)
	require.Len(t, b.Reports, 1)
	assert.True(t, fixedNow.Equal(b.Reports[0].ReportDate))

	_, err = LegacyFileSource{Path: writeJSON(t, dir, "bad.json", `{"reports": [`), Assembler: asm}.Load(ctx)
	assert.ErrorContains(t, err, "parsing")

	_, err = LegacyFileSource{Path: filepath.Join(dir, "missing.json"), Assembler: asm}.Load(ctx)
	assert.ErrorContains(t, err, "reading")
}

func TestBuildCountsFailedSources(t *testing.T) {
	log, hook := test.NewNullLogger()
	sources := []Source{
		static("broken", Batch{}, errors.New("disk on fire")),
		static("good", Batch{Reports: []types.Report{reportOn("a", date(2023, time.May, 1))}}, nil),
	}

	p, summary := New(log, WithClock(clock), WithWorkers(2)).Build(context.Background(), sources)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Loaded)
	assert.True(t, summary.HasFailures())
	assert.NoError(t, summary.Err())
	require.Len(t, p.Reports, 1)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["source"] == "broken" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestLegacyFileSourceKeepsReportWithNumericDate(t *testing.T) {
	path := writeJSON(t, t.TempDir(), "combined.json", `{
		"patient": "Jane Doe",
		"reports": [
			{"report_date": 20230101, "biomarkers": {"LDL": 130}},
			{"report_date": "2023-06-01", "biomarkers": {"LDL": 90}}
		]
	}`)

	p, summary := New(nil, WithClock(clock)).Build(context.Background(),
		[]Source{LegacyFileSource{Path: path, Assembler: newAssembler()}})

	assert.Equal(t, BuildSummary{Sources: 1, Loaded: 1, Reports: 2, Measured: 2, Identified: true}, summary)
	assert.Equal(t, "Jane Doe", p.Name)
	require.Len(t, p.Reports, 2)
	assert.True(t, date(2023, time.June, 1).Equal(p.Reports[0].ReportDate))
	assert.True(t, fixedNow.Equal(p.Reports[1].ReportDate))
}

// stubText implements convert.TextExtractor.
type stubText struct {
	text string
	err  error
}

func (s stubText) ExtractText(context.Context, string) (string, error) { return s.text, s.err }

func TestDocumentSource(t *testing.T) {
	asm := newAssembler()

	b, err := DocumentSource{
		Path:      "/reports/lab_2023-04-01.pdf",
		Text:      stubText{text: "HDL: 38 mg/dL\nLDL: 150 mg/dL"},
		Assembler: asm,
	}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Reports, 1)
	r := b.Reports[0]
	assert.Nil(t, b.Identity)
	assert.Equal(t, "lab_2023-04-01.pdf", r.SourceFile)
	assert.True(t, date(2023, time.April, 1).Equal(r.ReportDate))
	assert.Len(t, r.Biomarkers, 2)

	log, hook := test.NewNullLogger()
	b, err = DocumentSource{
		Path:      "/reports/scan.pdf",
		Text:      stubText{err: errors.New("pdftotext: exit status 1")},
		Assembler: asm,
		Log:       log,
	}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Reports, 1)
	assert.Equal(t, report.ErrEmptyText, b.Reports[0].Metadata.Error)
	assert.Empty(t, b.Reports[0].Biomarkers)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestDocumentSourceDegradedReportCounted(t *testing.T) {
	src := DocumentSource{Path: "blank.pdf", Text: stubText{}, Assembler: newAssembler()}
	_, summary := New(nil).Build(context.Background(), []Source{src})
	assert.Equal(t, 1, summary.Degraded)
	assert.Equal(t, 1, summary.Reports)
}

func TestSourcesFromPaths(t *testing.T) {
	asm := newAssembler()
	text := convert.NewDocuments(nil)

	sources, err := SourcesFromPaths([]string{"a.json", "b.PDF", "c.txt"}, asm, text, nil)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.IsType(t, LegacyFileSource{}, sources[0])
	assert.IsType(t, DocumentSource{}, sources[1])
	assert.IsType(t, DocumentSource{}, sources[2])
	assert.Equal(t, "b.PDF", sources[1].Name())

	_, err = SourcesFromPaths([]string{"notes.docx"}, asm, text, nil)
	assert.ErrorIs(t, err, convert.ErrUnsupported)

	_, err = SourcesFromPaths([]string{"scan.pdf"}, asm, nil, nil)
	assert.ErrorContains(t, err, "no text backend")
}

func TestPatientID(t *testing.T) {
	assert.Equal(t, "JANE_DOE", PatientID("Jane Doe"))
	assert.Equal(t, "UNKNOWN", PatientID("Unknown"))
	assert.Equal(t, "O'NEIL__SR", PatientID("O'Neil  Sr"))
}
