// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report assembles normalized Reports from extracted document text or
// legacy JSON records. Assembly never fails: problems with a single biomarker,
// the report date, or the whole document are recorded in the report's
// metadata and logged, and the report is still produced.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/internal/extract"
	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// ErrEmptyText is recorded in metadata when a document has no usable text.
const ErrEmptyText = "empty text extracted"

// reportNamespace scopes report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("biomarker-engine/report"))

// Assembler builds Reports.
type Assembler struct {
	catalog   *catalog.Catalog
	extractor *extract.Extractor
	log       logrus.FieldLogger
	now       func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the time source used for missing dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// New returns an Assembler over c.
func New(c *catalog.Catalog, log logrus.FieldLogger, opts ...Option) *Assembler {
	log = logging.OrDiscard(log)
	a := &Assembler{
		catalog:   c,
		extractor: extract.New(c, log),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromText builds a Report from document text. source names the document;
// its base name is also searched for a date when the text holds none.
// Empty text yields a Report with no biomarkers and an error in metadata.
func (a *Assembler) FromText(text, source string) types.Report {
	log := a.log.WithField("source", source)
	base := filepath.Base(source)

	if strings.TrimSpace(text) == "" {
		log.Error("empty text extracted")
		date := a.now()
		return types.Report{
			ID:         reportID(source, date, nil),
			ReportDate: date,
			SourceFile: source,
			Biomarkers: map[types.Biomarker]types.Measurement{},
			Metadata:   types.ExtractionMetadata{Error: ErrEmptyText},
		}
	}

	date := a.ReportDate(text, base)
	log.WithField("report_date", date.Format("2006-01-02")).Info("report date determined")

	extractedAt := a.now()
	results := a.extractor.ExtractResults(text)

	biomarkers := make(map[types.Biomarker]types.Measurement, len(results))
	meta := types.ExtractionMetadata{
		TextLength:   len(text),
		ExtractedAt:  &extractedAt,
		PatternsUsed: make(map[types.Biomarker]float64, len(results)),
		Contexts:     make(map[types.Biomarker]string, len(results)),
	}

	for _, b := range types.AllBiomarkers {
		r, ok := results[b]
		if !ok {
			meta.NotFound = append(meta.NotFound, b)
			continue
		}
		m, err := a.extractor.Measurement(r)
		if err != nil {
			log.WithField("biomarker", b).Warnf("skipping biomarker: %v", err)
			meta.ConversionErrors = append(meta.ConversionErrors, fmt.Sprintf("%s: %v", b, err))
			meta.NotFound = append(meta.NotFound, b)
			continue
		}
		biomarkers[b] = m
		meta.PatternsUsed[b] = r.Confidence
		meta.Contexts[b] = r.Context
	}
	meta.BiomarkersFound = len(biomarkers)

	return types.Report{
		ID:         reportID(base, date, biomarkers),
		ReportDate: date,
		SourceFile: base,
		Biomarkers: biomarkers,
		Metadata:   meta,
	}
}

// ReportDate determines a report's date: first from date-like text, then
// from a date token in filename, and finally the current time.
func (a *Assembler) ReportDate(text, filename string) time.Time {
	if t, ok := findDate(text); ok {
		return t
	}
	if filename != "" {
		if t, ok := dateFromFilename(filename); ok {
			return t
		}
	}
	a.log.WithField("source", filename).Warn("no date found, using current date")
	return a.now()
}

// FromLegacy builds a Report from a legacy JSON record loaded from
// sourcePath. Unknown biomarker names and unconvertible values are skipped
// individually; values from this path are trusted (confidence 1.0).
func (a *Assembler) FromLegacy(rec types.LegacyReport, sourcePath string) types.Report {
	log := a.log.WithField("source", sourcePath)

	sourceFile := rec.SourceFile
	if sourceFile == "" {
		sourceFile = "from_" + sourcePath
	}

	date := a.legacyDate(rec.ReportDate, log)

	meta := types.ExtractionMetadata{
		ConvertedFromLegacy: true,
		SourcePath:          sourcePath,
	}
	biomarkers := make(map[types.Biomarker]types.Measurement, len(rec.Biomarkers))

	names := make([]string, 0, len(rec.Biomarkers))
	for name := range rec.Biomarkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b, ok := catalog.ParseBiomarker(name)
		if !ok {
			log.WithField("biomarker", name).Warn("unknown biomarker name, dropping")
			meta.UnmappedBiomarkers = append(meta.UnmappedBiomarkers, name)
			continue
		}

		m, err := a.legacyMeasurement(b, rec.Biomarkers[name])
		if err != nil {
			log.WithField("biomarker", name).Warnf("error converting biomarker: %v", err)
			meta.ConversionErrors = append(meta.ConversionErrors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		biomarkers[b] = m
	}
	meta.BiomarkersFound = len(biomarkers)

	return types.Report{
		ID:         reportID(sourceFile, date, biomarkers),
		ReportDate: date,
		SourceFile: sourceFile,
		Biomarkers: biomarkers,
		Metadata:   meta,
	}
}

func (a *Assembler) legacyDate(raw json.RawMessage, log logrus.FieldLogger) time.Time {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		log.Debug("report date missing, using current date")
		return a.now()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Warnf("report date %s is not a string, using current date", trimmed)
		return a.now()
	}
	if s == "" || s == types.UnknownDate {
		log.Debug("report date unknown, using current date")
		return a.now()
	}
	t, err := parseISODate(s)
	if err != nil {
		log.Warnf("unparsable report date %q, using current date", s)
		return a.now()
	}
	return t
}

func (a *Assembler) legacyMeasurement(b types.Biomarker, raw json.RawMessage) (types.Measurement, error) {
	value, err := parseLegacyValue(raw)
	if err != nil {
		return types.Measurement{}, err
	}
	return a.catalog.Measurement(b, value, a.catalog.Definition(b).Unit, 1.0)
}

// parseLegacyValue accepts a JSON number or a numeric string.
func parseLegacyValue(raw json.RawMessage) (float64, error) {
	if trimmed := strings.TrimSpace(string(raw)); trimmed == "" || trimmed == "null" {
		return 0, errors.New("missing value")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %q as number: %w", s, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("value %s is not a number", string(raw))
}

// reportID derives a stable identifier from the source, date, and values.
func reportID(source string, date time.Time, biomarkers map[types.Biomarker]types.Measurement) string {
	var b strings.Builder
	b.WriteString(source)
	b.WriteByte('|')
	b.WriteString(date.UTC().Format(time.RFC3339Nano))
	for _, id := range types.AllBiomarkers {
		if m, ok := biomarkers[id]; ok {
			fmt.Fprintf(&b, "|%s=%g", id, m.Value)
		}
	}
	return uuid.NewSHA1(reportNamespace, []byte(b.String())).String()
}
