// Package workload keeps the per-crew weekly workload ledger.
package workload

import (
	"fmt"
	"time"

	"crew-workers/internal/models"
)

// Record is one crew member's workload for one ISO week.
type Record = models.WorkloadRecord

// Key identifies a ledger row. WeekStart is always a Monday at 00:00 UTC.
type Key struct {
	CrewID    string
	WeekStart time.Time
}

// NewKey normalizes any instant in the week to its Monday.
func NewKey(crewID string, anyDate time.Time) Key {
	return Key{CrewID: crewID, WeekStart: WeekStart(anyDate)}
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s", k.CrewID, k.WeekStart.Format(models.DateLayout))
}

// WeekStart returns Monday 00:00 UTC of the ISO week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Job statuses counted by the ledger.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Policy holds the thresholds that drive overload and utilization.
type Policy struct {
	OverloadThreshold     int
	UnderutilizationRatio float64
	StandardWeekHours     float64
}

const (
	DefaultOverloadThreshold     = 5
	DefaultUnderutilizationRatio = 0.7
	DefaultStandardWeekHours     = 40.0
)

func DefaultPolicy() Policy {
	return Policy{
		OverloadThreshold:     DefaultOverloadThreshold,
		UnderutilizationRatio: DefaultUnderutilizationRatio,
		StandardWeekHours:     DefaultStandardWeekHours,
	}
}

// IsOverloaded is strictly greater than the threshold.
func (p Policy) IsOverloaded(totalJobs int) bool {
	return totalJobs > p.OverloadThreshold
}

// Utilization is hours as a percentage of a standard week.
func (p Policy) Utilization(hours float64) float64 {
	if p.StandardWeekHours <= 0 {
		return 0
	}
	return hours / p.StandardWeekHours * 100
}
