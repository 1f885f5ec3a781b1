// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/biomarker-engine/pkg/types"
)

var schema = []string{
	`CREATE TABLE patients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER,
		gender TEXT,
		created_at TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE reports (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		patient_id TEXT NOT NULL REFERENCES patients(id),
		report_date TEXT NOT NULL,
		source_file TEXT,
		metadata TEXT
	)`,
	`CREATE TABLE measurements (
		report_seq INTEGER NOT NULL REFERENCES reports(seq),
		biomarker TEXT NOT NULL,
		value REAL NOT NULL,
		unit TEXT NOT NULL,
		reference_min REAL,
		reference_max REAL,
		status TEXT NOT NULL,
		confidence REAL NOT NULL,
		PRIMARY KEY (report_seq, biomarker)
	)`,
	`CREATE INDEX idx_measurements_biomarker ON measurements(biomarker)`,
	`CREATE TABLE trends (
		biomarker TEXT PRIMARY KEY,
		direction TEXT NOT NULL,
		strength REAL NOT NULL,
		latest_value REAL NOT NULL,
		change_percentage REAL NOT NULL,
		"values" TEXT NOT NULL,
		dates TEXT NOT NULL
	)`,
	`CREATE TABLE alerts (
		seq INTEGER PRIMARY KEY,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		biomarker TEXT NOT NULL,
		value TEXT,
		status TEXT,
		message TEXT NOT NULL,
		recommendation TEXT NOT NULL
	)`,
}

// WriteSQLite writes data to a fresh SQLite database at path, replacing any
// existing file.
func WriteSQLite(ctx context.Context, path string, data types.DashboardData) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing old snapshot %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertProfile(ctx, tx, data.PatientProfile); err != nil {
		return err
	}
	if err := insertTrends(ctx, tx, data.Trends); err != nil {
		return err
	}
	if err := insertAlerts(ctx, tx, data.Alerts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

func insertProfile(ctx context.Context, tx *sql.Tx, p types.PatientProfile) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO patients (id, name, age, gender, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.PatientID, p.Name, p.Age, p.Gender, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}

	reportStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reports (seq, id, patient_id, report_date, source_file, metadata) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing report insert: %w", err)
	}
	defer reportStmt.Close()

	measStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (report_seq, biomarker, value, unit, reference_min, reference_max, status, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing measurement insert: %w", err)
	}
	defer measStmt.Close()

	for i, r := range p.Reports {
		seq := i + 1
		meta, _ := json.Marshal(r.Metadata)
		if _, err := reportStmt.ExecContext(ctx,
			seq, r.ID, p.PatientID, formatTime(r.ReportDate), r.SourceFile, string(meta),
		); err != nil {
			return fmt.Errorf("inserting report %s: %w", r.ID, err)
		}

		for _, b := range types.AllBiomarkers {
			m, ok := r.Biomarkers[b]
			if !ok {
				continue
			}
			if _, err := measStmt.ExecContext(ctx,
				seq, string(b), m.Value, string(m.Unit),
				m.ReferenceRange.Min, m.ReferenceRange.Max, string(m.Status), m.Confidence,
			); err != nil {
				return fmt.Errorf("inserting %s for report %s: %w", b, r.ID, err)
			}
		}
	}
	return nil
}

func insertTrends(ctx context.Context, tx *sql.Tx, trends map[types.Biomarker]types.Trend) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trends (biomarker, direction, strength, latest_value, change_percentage, "values", dates)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing trend insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range types.AllBiomarkers {
		t, ok := trends[b]
		if !ok {
			continue
		}
		values, _ := json.Marshal(t.Values)
		dates, _ := json.Marshal(t.Dates)
		if _, err := stmt.ExecContext(ctx,
			string(b), string(t.Direction), t.Strength, t.LatestValue, t.ChangePercentage,
			string(values), string(dates),
		); err != nil {
			return fmt.Errorf("inserting trend %s: %w", b, err)
		}
	}
	return nil
}

func insertAlerts(ctx context.Context, tx *sql.Tx, alerts []types.Alert) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO alerts (seq, type, severity, biomarker, value, status, message, recommendation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing alert insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range alerts {
		if _, err := stmt.ExecContext(ctx,
			i+1, string(a.Type), string(a.Severity), string(a.Biomarker),
			nullable(a.Value), nullable(string(a.Status)), a.Message, a.Recommendation,
		); err != nil {
			return fmt.Errorf("inserting alert %d: %w", i+1, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
