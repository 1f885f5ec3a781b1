// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/biomarker-engine/internal/convert"
	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/internal/report"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// Identity is the patient information a source may carry.
type Identity struct {
	Name   string
	Age    *int
	Gender *string
}

// Batch is what one source contributes to a profile.
type Batch struct {
	// Identity is nil when the source carries no patient information.
	Identity *Identity
	Reports  []types.Report
}

// Source yields reports and, optionally, patient identity.
type Source interface {
	Name() string
	Load(ctx context.Context) (Batch, error)
}

// LegacyFileSource reads a legacy JSON document from disk.
type LegacyFileSource struct {
	Path      string
	Assembler *report.Assembler
}

func (s LegacyFileSource) Name() string { return s.Path }

// Load parses the document and converts each of its reports. An empty
// document yields an empty Batch with no identity.
func (s LegacyFileSource) Load(ctx context.Context) (Batch, error) {
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Batch{}, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	var doc types.LegacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Batch{}, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	if doc.IsEmpty() {
		return Batch{}, nil
	}

	id := &Identity{Name: UnknownName, Age: doc.Age, Gender: doc.Gender}
	if doc.Patient != nil {
		id.Name = *doc.Patient
	}

	reports := make([]types.Report, 0, len(doc.Reports))
	for _, rec := range doc.Reports {
		reports = append(reports, s.Assembler.FromLegacy(rec, s.Path))
	}
	return Batch{Identity: id, Reports: reports}, nil
}

// DocumentSource retrieves the text of one lab report document and
// assembles it into a Report. A retrieval failure still yields a Report,
// with no biomarkers and the failure recorded in its metadata.
type DocumentSource struct {
	Path      string
	Text      convert.TextExtractor
	Assembler *report.Assembler
	Log       logrus.FieldLogger
}

func (s DocumentSource) Name() string { return s.Path }

func (s DocumentSource) Load(ctx context.Context) (Batch, error) {
	text, err := s.Text.ExtractText(ctx, s.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Batch{}, ctxErr
		}
		logging.OrDiscard(s.Log).WithField("source", s.Path).Warnf("text retrieval failed: %v", err)
		text = ""
	}
	return Batch{Reports: []types.Report{s.Assembler.FromText(text, s.Path)}}, nil
}

// SourcesFromPaths picks a Source for each path by extension: .json files
// are legacy documents, .pdf and .txt files are lab report documents.
func SourcesFromPaths(paths []string, asm *report.Assembler, text convert.TextExtractor, log logrus.FieldLogger) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".json":
			sources = append(sources, LegacyFileSource{Path: p, Assembler: asm})
		case ".pdf", ".txt", ".text":
			if text == nil {
				return nil, fmt.Errorf("%s: no text backend configured", p)
			}
			sources = append(sources, DocumentSource{Path: p, Text: text, Assembler: asm, Log: log})
		default:
			return nil, fmt.Errorf("%s: %w", p, convert.ErrUnsupported)
		}
	}
	return sources, nil
}
