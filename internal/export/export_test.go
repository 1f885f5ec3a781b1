// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biomarker-engine/internal/catalog"
	"github.com/pdiddy/biomarker-engine/internal/dashboard"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

func sampleDashboard(t *testing.T) types.DashboardData {
	t.Helper()
	c := catalog.Default()
	m := func(b types.Biomarker, v float64, unit types.Unit) types.Measurement {
		meas, err := c.Measurement(b, v, unit, 0.85)
		require.NoError(t, err)
		return meas
	}
	age, gender := 45, "F"
	created := time.Date(2024, 7, 4, 12, 0, 0, 0, time.UTC)
	p := types.PatientProfile{
		PatientID: "JANE_DOE",
		Name:      "Jane Doe",
		Age:       &age,
		Gender:    &gender,
		CreatedAt: created,
		UpdatedAt: created,
		Reports: []types.Report{
			{
				ID: "r1", ReportDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), SourceFile: "jan.pdf",
				Biomarkers: map[types.Biomarker]types.Measurement{
					types.LDL:        m(types.LDL, 130, types.UnitMgDL),
					types.Creatinine: m(types.Creatinine, 88, types.UnitUmolL),
				},
				Metadata: types.ExtractionMetadata{TextLength: 420, BiomarkersFound: 2},
			},
			{
				ID: "r2", ReportDate: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), SourceFile: "jun.pdf",
				Biomarkers: map[types.Biomarker]types.Measurement{
					types.LDL: m(types.LDL, 90, types.UnitMgDL),
					types.HDL: m(types.HDL, 38, types.UnitMgDL),
				},
			},
		},
	}
	return dashboard.Compose(p, types.AnalysisConfig{}, nil)
}

func TestJSONRoundTrip(t *testing.T) {
	data := sampleDashboard(t)
	path := filepath.Join(t.TempDir(), "public", "dashboard_data.json")

	require.NoError(t, WriteJSON(path, data))
	got, err := ReadJSON(path)
	require.NoError(t, err)

	require.Len(t, got.PatientProfile.Reports, len(data.PatientProfile.Reports))
	for i, r := range data.PatientProfile.Reports {
		gr := got.PatientProfile.Reports[i]
		assert.True(t, r.ReportDate.Equal(gr.ReportDate))
		assert.Equal(t, r.Biomarkers, gr.Biomarkers)
	}
	assert.Equal(t, data.PatientProfile.PatientID, got.PatientProfile.PatientID)
	assert.Equal(t, *data.PatientProfile.Age, *got.PatientProfile.Age)
	assert.Equal(t, data.Alerts, got.Alerts)
	assert.Equal(t, data.SummaryStats, got.SummaryStats)
	require.Contains(t, got.Trends, types.LDL)
	assert.Equal(t, data.Trends[types.LDL].Values, got.Trends[types.LDL].Values)
	assert.Equal(t, data.Trends[types.LDL].Direction, got.Trends[types.LDL].Direction)
}

func TestWriteJSONFormatting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, sampleDashboard(t)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)

	assert.Contains(t, out, `"unit": "μmol/L"`)
	assert.Contains(t, out, "\n  \"patient_profile\": {")
	assert.Contains(t, out, `"report_date": "2023-01-01T00:00:00Z"`)
	assert.Contains(t, out, `"trend_direction": "falling"`)
	assert.Contains(t, out, `"status": "Critically High"`)
}

func TestReadJSONErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadJSON(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "reading")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = ReadJSON(bad)
	assert.ErrorContains(t, err, "parsing")
}

func TestWriteYAML(t *testing.T) {
	data := sampleDashboard(t)
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, WriteYAML(path, data))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "patient_profile")
	assert.Contains(t, doc, "summary_stats")
	assert.Contains(t, string(raw), "trend_direction: falling")
	assert.Contains(t, string(raw), "patient_id: JANE_DOE")
}

func TestWriteSQLite(t *testing.T) {
	data := sampleDashboard(t)
	path := filepath.Join(t.TempDir(), "snapshot", "biomarkers.db")
	ctx := context.Background()

	require.NoError(t, WriteSQLite(ctx, path, data))
	// A second run replaces the snapshot rather than appending to it.
	require.NoError(t, WriteSQLite(ctx, path, data))

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	counts := map[string]int{
		"patients":     1,
		"reports":      2,
		"measurements": 4,
		"trends":       len(data.Trends),
		"alerts":       len(data.Alerts),
	}
	for table, want := range counts {
		var got int
		require.NoError(t, db.QueryRow("SELECT count(*) FROM "+table).Scan(&got), table)
		assert.Equal(t, want, got, table)
	}

	var status string
	var refMax float64
	require.NoError(t, db.QueryRow(
		`SELECT m.status, m.reference_max FROM measurements m JOIN reports r ON r.seq = m.report_seq
		 WHERE r.id = 'r1' AND m.biomarker = 'LDL'`,
	).Scan(&status, &refMax))
	assert.Equal(t, "High", status)
	assert.Equal(t, 100.0, refMax)

	var age sql.NullInt64
	require.NoError(t, db.QueryRow(`SELECT age FROM patients WHERE id = 'JANE_DOE'`).Scan(&age))
	assert.Equal(t, int64(45), age.Int64)
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ExportConfig{
		JSONPaths:  []string{filepath.Join(dir, "extract", "processed_patient_data.json"), filepath.Join(dir, "public", "dashboard_data.json")},
		YAMLPath:   filepath.Join(dir, "dashboard.yaml"),
		SQLitePath: filepath.Join(dir, "dashboard.db"),
	}

	written, err := WriteAll(context.Background(), cfg, sampleDashboard(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{cfg.JSONPaths[0], cfg.JSONPaths[1], cfg.YAMLPath, cfg.SQLitePath}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}
}

func TestWriteAllStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "public")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	cfg := types.ExportConfig{JSONPaths: []string{
		filepath.Join(dir, "ok.json"),
		filepath.Join(blocker, "dashboard_data.json"),
		filepath.Join(dir, "never.json"),
	}}
	written, err := WriteAll(context.Background(), cfg, sampleDashboard(t), nil)
	require.Error(t, err)
	assert.Equal(t, []string{cfg.JSONPaths[0]}, written)
	assert.NoFileExists(t, cfg.JSONPaths[2])
}
