// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes DashboardData to disk: canonical JSON, a YAML
// rendering, and a single-file SQLite snapshot. Every write replaces the
// previous file; nothing here is read back as pipeline state.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

// WriteAll writes data to every destination in cfg and returns the paths
// written, in order: JSON paths, then YAML, then SQLite. The first failure
// stops the run.
func WriteAll(ctx context.Context, cfg types.ExportConfig, data types.DashboardData, log logrus.FieldLogger) ([]string, error) {
	log = logging.OrDiscard(log)
	var written []string

	for _, p := range cfg.JSONPaths {
		if err := WriteJSON(p, data); err != nil {
			return written, err
		}
		log.WithField("path", p).Info("dashboard data exported")
		written = append(written, p)
	}
	if cfg.YAMLPath != "" {
		if err := WriteYAML(cfg.YAMLPath, data); err != nil {
			return written, err
		}
		log.WithField("path", cfg.YAMLPath).Info("dashboard data exported")
		written = append(written, cfg.YAMLPath)
	}
	if cfg.SQLitePath != "" {
		if err := WriteSQLite(ctx, cfg.SQLitePath, data); err != nil {
			return written, err
		}
		log.WithField("path", cfg.SQLitePath).Info("sqlite snapshot written")
		written = append(written, cfg.SQLitePath)
	}
	return written, nil
}

// WriteJSON writes data as indented JSON. Non-ASCII text such as "μmol/L"
// is written as-is. Parent directories are created.
func WriteJSON(path string, data types.DashboardData) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// ReadJSON reads a document written by WriteJSON.
func ReadJSON(path string) (types.DashboardData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.DashboardData{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var data types.DashboardData
	if err := json.Unmarshal(raw, &data); err != nil {
		return types.DashboardData{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return data, nil
}

// WriteYAML writes data as YAML using the same field names as the JSON.
func WriteYAML(path string, data types.DashboardData) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFile(path, out)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
