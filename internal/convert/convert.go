// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert retrieves plain text from lab report documents. PDFs go
// through a pluggable backend (local pdftotext, pdftotext in a container, or
// native unipdf); plain-text files are read as they are.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/biomarker-engine/internal/container"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// TextExtractor returns the plain text of the document at path. A document
// with no text layer yields an empty string, not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ErrUnsupported is returned for documents whose extension has no backend.
var ErrUnsupported = errors.New("unsupported document type")

// Documents dispatches on file extension: .txt files are read directly and
// .pdf files go to the configured PDF backend.
type Documents struct {
	pdf TextExtractor
}

// NewDocuments returns a Documents that sends PDFs to pdf.
func NewDocuments(pdf TextExtractor) *Documents {
	return &Documents{pdf: pdf}
}

// ExtractText implements TextExtractor.
func (d *Documents) ExtractText(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	case ".pdf":
		if d.pdf == nil {
			return "", fmt.Errorf("%s: no PDF backend configured", path)
		}
		return d.pdf.ExtractText(ctx, path)
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
}

// New builds the PDF backend named by cfg and wraps it in Documents.
func New(ctx context.Context, cfg types.ConversionConfig) (*Documents, error) {
	var (
		pdf TextExtractor
		err error
	)
	switch cfg.Backend {
	case "", types.BackendPdftotext:
		pdf, err = NewPdftotext(container.OSExecutor{})
	case types.BackendContainer:
		var rt container.Runtime
		rt, err = container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		pdf, err = NewContainerExtractor(ctx, rt, cfg.Image)
	case types.BackendUniPDF:
		pdf, err = NewUniPDF(cfg.LicenseKey)
	default:
		return nil, fmt.Errorf("unknown text backend %q (want pdftotext, container, or unipdf)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewDocuments(pdf), nil
}

// Document is the outcome of retrieving one document's text.
type Document struct {
	Path string
	Text string
	Err  error
}

// BatchResult holds the outcome of a batch retrieval run.
type BatchResult struct {
	Converted int
	Empty     int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Empty + r.Failed
}

// HasFailures reports whether any document failed retrieval.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExtractBatch retrieves text for every path, running at most workers
// retrievals at once. Documents come back in input order and per-file status
// is printed to w in that order once all retrievals finish.
func ExtractBatch(ctx context.Context, x TextExtractor, paths []string, workers int, w io.Writer) ([]Document, BatchResult) {
	docs := make([]Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, p := range paths {
		g.Go(func() error {
			text, err := x.ExtractText(gctx, p)
			docs[i] = Document{Path: p, Text: text, Err: err}
			return nil
		})
	}
	// Errors are kept per document; g only bounds concurrency.
	_ = g.Wait()

	var result BatchResult
	for _, d := range docs {
		base := filepath.Base(d.Path)
		switch {
		case d.Err != nil:
			fmt.Fprintf(w, "failed:    %s (%v)\n", base, d.Err)
			result.Failed++
		case strings.TrimSpace(d.Text) == "":
			fmt.Fprintf(w, "empty:     %s\n", base)
			result.Empty++
		default:
			fmt.Fprintf(w, "converted: %s (%d bytes)\n", base, len(d.Text))
			result.Converted++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d empty, %d failed (total: %d)\n",
		result.Converted, result.Empty, result.Failed, result.Total())
	return docs, result
}
