package workload

import (
	"context"
	"sort"
	"strings"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxDistributionWeeks bounds a single distribution query.
const MaxDistributionWeeks = 104

// Invalidator drops cached views that depend on a crew member's week.
type Invalidator interface {
	Invalidate(ctx context.Context, crewID string, weekStart time.Time) error
}

// WeekDistribution is the ledger snapshot of one week.
type WeekDistribution struct {
	WeekStart time.Time `json:"weekStart"`
	Records   []Record  `json:"records"`
}

type Ledger struct {
	store       Store
	policy      Policy
	invalidator Invalidator
	logger      logger.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

type Option func(*Ledger)

func WithInvalidator(inv Invalidator) Option {
	return func(l *Ledger) { l.invalidator = inv }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(store Store, policy Policy, log logger.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		policy: policy,
		logger: logger.ForComponent(log, "workload-ledger"),
		tracer: otel.Tracer("crew-workers/workload"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Policy() Policy {
	return l.policy
}

// CalculateWorkload returns the crew member's record for the week, creating a zeroed one if
// needed. The returned record always carries a fresh LastUpdated.
func (l *Ledger) CalculateWorkload(ctx context.Context, crewID string, weekStart time.Time) (*Record, error) {
	if strings.TrimSpace(crewID) == "" {
		return nil, errors.Invalid("crew id is required")
	}
	if weekStart.IsZero() {
		return nil, errors.Invalid("week start is required")
	}

	key := NewKey(crewID, weekStart)
	ctx, span := l.tracer.Start(ctx, "workload.CalculateWorkload", trace.WithAttributes(
		attribute.String("crew.id", crewID),
		attribute.String("week.start", key.WeekStart.Format("2006-01-02")),
	))
	defer span.End()

	now := l.now()
	rec, err := l.store.Upsert(ctx, key, func(rec *Record, created bool) {
		rec.IsOverloaded = l.policy.IsOverloaded(rec.TotalJobs)
		rec.UtilizationRate = l.policy.Utilization(rec.HoursWorked)
		rec.LastUpdated = now
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Upstream("workload store", err)
	}

	l.invalidate(ctx, key)
	return rec, nil
}

// RecordJob counts a job against the crew member's week.
func (l *Ledger) RecordJob(ctx context.Context, crewID string, jobDate time.Time, hours float64, status string) (*Record, error) {
	if strings.TrimSpace(crewID) == "" {
		return nil, errors.Invalid("crew id is required")
	}
	if jobDate.IsZero() {
		return nil, errors.Invalid("job date is required")
	}
	if hours < 0 {
		return nil, errors.Invalid("hours must not be negative, got %v", hours)
	}
	switch status {
	case StatusScheduled, StatusInProgress, StatusCompleted:
	default:
		return nil, errors.Invalid("unknown job status %q", status)
	}

	key := NewKey(crewID, jobDate)
	ctx, span := l.tracer.Start(ctx, "workload.RecordJob", trace.WithAttributes(
		attribute.String("crew.id", crewID),
		attribute.String("job.status", status),
	))
	defer span.End()

	now := l.now()
	rec, err := l.store.Upsert(ctx, key, func(rec *Record, _ bool) {
		rec.TotalJobs++
		switch status {
		case StatusScheduled:
			rec.ScheduledJobs++
		case StatusInProgress:
			rec.InProgressJobs++
		case StatusCompleted:
			rec.CompletedJobs++
		}
		rec.HoursWorked += hours
		rec.UtilizationRate = l.policy.Utilization(rec.HoursWorked)
		rec.IsOverloaded = l.policy.IsOverloaded(rec.TotalJobs)
		rec.LastUpdated = now
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Upstream("workload store", err)
	}

	if rec.IsOverloaded {
		l.logger.Warn("crew member overloaded", map[string]interface{}{
			"crewId":    crewID,
			"weekStart": key.WeekStart.Format("2006-01-02"),
			"totalJobs": rec.TotalJobs,
		})
	}
	l.invalidate(ctx, key)
	return rec, nil
}

// GetCrewWorkload returns nil, nil when the crew member has no record for the week of anyDate.
func (l *Ledger) GetCrewWorkload(ctx context.Context, crewID string, anyDate time.Time) (*Record, error) {
	rec, err := l.store.Get(ctx, NewKey(crewID, anyDate))
	if err != nil {
		return nil, errors.Upstream("workload store", err)
	}
	return rec, nil
}

// GetWorkloadDistribution returns one snapshot per week from start's week to end's week inclusive.
func (l *Ledger) GetWorkloadDistribution(ctx context.Context, start, end time.Time) ([]WeekDistribution, error) {
	first, last := WeekStart(start), WeekStart(end)
	if last.Before(first) {
		return nil, errors.Invalid("end %s is before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	weeks := int(last.Sub(first).Hours()/(24*7)) + 1
	if weeks > MaxDistributionWeeks {
		return nil, errors.Invalid("distribution spans %d weeks, limit is %d", weeks, MaxDistributionWeeks)
	}

	out := make([]WeekDistribution, 0, weeks)
	for ws := first; !ws.After(last); ws = ws.AddDate(0, 0, 7) {
		records, err := l.store.ListWeek(ctx, ws)
		if err != nil {
			return nil, errors.Upstream("workload store", err)
		}
		if records == nil {
			records = []Record{}
		}
		out = append(out, WeekDistribution{WeekStart: ws, Records: records})
	}
	return out, nil
}

// GetOverloadedCrew lists the week's overloaded records, heaviest first.
func (l *Ledger) GetOverloadedCrew(ctx context.Context, weekStart time.Time) ([]Record, error) {
	records, err := l.ListWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0)
	for _, rec := range records {
		if rec.IsOverloaded {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalJobs > out[j].TotalJobs })
	return out, nil
}

// ListWeek returns every record of the week containing weekStart.
func (l *Ledger) ListWeek(ctx context.Context, weekStart time.Time) ([]Record, error) {
	records, err := l.store.ListWeek(ctx, WeekStart(weekStart))
	if err != nil {
		return nil, errors.Upstream("workload store", err)
	}
	return records, nil
}

func (l *Ledger) invalidate(ctx context.Context, key Key) {
	if l.invalidator == nil {
		return
	}
	if err := l.invalidator.Invalidate(ctx, key.CrewID, key.WeekStart); err != nil {
		l.logger.Warn("cache invalidation failed", map[string]interface{}{
			"crewId": key.CrewID,
			"error":  err.Error(),
		})
	}
}
