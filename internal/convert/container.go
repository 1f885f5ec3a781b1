// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/biomarker-engine/internal/container"
)

// DefaultImage is the pdftotext image built by "mage image".
const DefaultImage = "biomarker-pdftotext:latest"

// containerArgs read the PDF from stdin and write text to stdout.
var containerArgs = []string{"pdftotext", "-layout", "-enc", "UTF-8", "-", "-"}

// ContainerExtractor converts PDFs by piping them through pdftotext inside
// a container. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type ContainerExtractor struct {
	runtime container.Runtime
	image   string
}

// NewContainerExtractor creates an extractor that runs image (DefaultImage
// when empty) in rt. It verifies that the image exists locally before
// returning.
func NewContainerExtractor(ctx context.Context, rt container.Runtime, image string) (*ContainerExtractor, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerExtractor{runtime: rt, image: image}, nil
}

// ExtractText reads the PDF at path, pipes it through the container, and
// returns the resulting text.
func (c *ContainerExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, containerArgs, f, &out); err != nil {
		return "", fmt.Errorf("converting %s in container: %w", path, err)
	}
	return out.String(), nil
}
