// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// LicenseSecret is the .secrets/ file holding the unipdf metered key.
const LicenseSecret = "unidoc-license-key"

// ErrEncrypted is returned for password-protected PDFs.
var ErrEncrypted = errors.New("PDF is password-protected")

var (
	licenseOnce sync.Once
	licenseErr  error
)

// UniPDFExtractor extracts text in-process with unipdf.
type UniPDFExtractor struct{}

// NewUniPDF registers key with unipdf (once per process) and returns an
// extractor.
func NewUniPDF(key string) (*UniPDFExtractor, error) {
	if key == "" {
		return nil, fmt.Errorf("unipdf backend needs a license key in .secrets/%s", LicenseSecret)
	}
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(key)
	})
	if licenseErr != nil {
		return nil, fmt.Errorf("registering unipdf license: %w", licenseErr)
	}
	return &UniPDFExtractor{}, nil
}

// ExtractText returns the text of every page, one page per block. Pages
// that fail to extract are skipped.
func (u *UniPDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return "", fmt.Errorf("reading PDF %s: %w", path, err)
	}

	enc, err := reader.IsEncrypted()
	if err != nil {
		return "", fmt.Errorf("checking encryption of %s: %w", path, err)
	}
	if enc {
		ok, err := reader.Decrypt([]byte(""))
		if err != nil {
			return "", fmt.Errorf("decrypting %s: %w", path, err)
		}
		if !ok {
			return "", fmt.Errorf("%s: %w", path, ErrEncrypted)
		}
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("counting pages of %s: %w", path, err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page, err := reader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
