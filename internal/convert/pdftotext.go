// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/biomarker-engine/internal/container"
)

const binPdftotext = "pdftotext"

// pdftotextArgs keeps the physical layout so label and value stay on one line.
var pdftotextArgs = []string{"-layout", "-enc", "UTF-8"}

// PdftotextExtractor runs the local poppler pdftotext binary.
type PdftotextExtractor struct {
	exec container.Executor
}

// NewPdftotext returns an extractor backed by pdftotext on PATH.
func NewPdftotext(exec container.Executor) (*PdftotextExtractor, error) {
	if _, err := exec.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	return &PdftotextExtractor{exec: exec}, nil
}

// ExtractText runs "pdftotext -layout <path> -" and returns its output.
func (p *PdftotextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	args := make([]string, 0, len(pdftotextArgs)+2)
	args = append(args, pdftotextArgs...)
	args = append(args, path, "-")

	var out bytes.Buffer
	if err := p.exec.RunPiped(ctx, binPdftotext, args, strings.NewReader(""), &out); err != nil {
		return "", fmt.Errorf("pdftotext %s: %w", path, err)
	}
	return out.String(), nil
}
