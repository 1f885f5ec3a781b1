// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile merges reports from many sources into one chronologically
// ordered PatientProfile. A failing source is logged and counted; it never
// aborts the build.
package profile

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/biomarker-engine/internal/logging"
	"github.com/pdiddy/biomarker-engine/pkg/types"
)

const (
	// UnknownName is the patient name when no source carries one.
	UnknownName = "Unknown"
	// UnknownID is the patient id when no source carries identity.
	UnknownID = "UNKNOWN"

	maxAge = 150
)

// ErrNoData reports that no source produced identity or reports.
var ErrNoData = errors.New("no source yielded any patient data")

// BuildSummary holds the outcome of a profile build.
type BuildSummary struct {
	Sources  int
	Loaded   int
	Failed   int
	Reports  int
	Degraded int
	Measured int

	// Identified is set when some source carried patient identity.
	Identified bool
}

// HasFailures reports whether any source failed to load.
func (s BuildSummary) HasFailures() bool {
	return s.Failed > 0
}

// Err returns ErrNoData when no source yielded identity or reports.
func (s BuildSummary) Err() error {
	if s.Reports == 0 && !s.Identified {
		return ErrNoData
	}
	return nil
}

// Builder assembles PatientProfiles.
type Builder struct {
	log     logrus.FieldLogger
	workers int
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers bounds how many sources load at once. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithClock overrides the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// New returns a Builder.
func New(log logrus.FieldLogger, opts ...Option) *Builder {
	b := &Builder{
		log:     logging.OrDiscard(log),
		workers: 1,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type loaded struct {
	batch Batch
	err   error
}

// Build loads every source and merges the results. Sources may load
// concurrently; their results are merged in input order, so identity comes
// from the earliest source that carries any, and reports with equal dates
// keep their input order.
func (b *Builder) Build(ctx context.Context, sources []Source) (types.PatientProfile, BuildSummary) {
	b.log.Infof("loading data from %d sources", len(sources))

	results := make([]loaded, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, b.workers))
	for i, src := range sources {
		g.Go(func() error {
			batch, err := src.Load(gctx)
			results[i] = loaded{batch: batch, err: err}
			return nil
		})
	}
	// Load errors are kept per source in results; g only bounds concurrency.
	_ = g.Wait()

	summary := BuildSummary{Sources: len(sources)}
	var (
		identity *Identity
		reports  []types.Report
	)
	for i, res := range results {
		log := b.log.WithField("source", sources[i].Name())
		if res.err != nil {
			log.Warnf("error processing source: %v", res.err)
			summary.Failed++
			continue
		}
		summary.Loaded++
		if identity == nil && res.batch.Identity != nil {
			identity = res.batch.Identity
			log.WithField("patient", identity.Name).Debug("patient identity taken from source")
		}
		reports = append(reports, res.batch.Reports...)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ReportDate.Before(reports[j].ReportDate)
	})

	for _, r := range reports {
		if r.Metadata.Error != "" {
			summary.Degraded++
		}
		summary.Measured += len(r.Biomarkers)
	}
	summary.Reports = len(reports)
	if reports == nil {
		reports = []types.Report{}
	}

	now := b.now()
	p := types.PatientProfile{
		PatientID: UnknownID,
		Name:      UnknownName,
		Reports:   reports,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if identity != nil {
		summary.Identified = true
		p.PatientID = PatientID(identity.Name)
		p.Name = identity.Name
		p.Age = b.validAge(identity.Age)
		p.Gender = identity.Gender
	}

	b.log.WithFields(logrus.Fields{
		"reports":    summary.Reports,
		"biomarkers": summary.Measured,
		"failed":     summary.Failed,
	}).Info("profile built")
	return p, summary
}

func (b *Builder) validAge(age *int) *int {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > maxAge {
		b.log.WithField("age", *age).Warn("age out of range, dropping")
		return nil
	}
	return age
}

// PatientID derives a patient identifier from a display name.
func PatientID(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}
