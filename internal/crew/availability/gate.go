// Package availability decides whether a crew member can take a job on a given date.
package availability

import (
	"context"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/models"
)

// LeaveChecker answers whether approved time off covers date (inclusive of both ends).
type LeaveChecker interface {
	IsOnApprovedLeave(ctx context.Context, crewID string, date time.Time) (bool, error)
}

// WorkloadReader returns the crew member's record for the week of anyDate, or nil when none exists.
type WorkloadReader interface {
	GetCrewWorkload(ctx context.Context, crewID string, anyDate time.Time) (*models.WorkloadRecord, error)
}

type Gate struct {
	leave    LeaveChecker
	workload WorkloadReader
}

func NewGate(leave LeaveChecker, workload WorkloadReader) *Gate {
	return &Gate{leave: leave, workload: workload}
}

// IsAvailable is false on approved leave or when the week is already overloaded.
// Collaborator failures are returned, never read as "available".
func (g *Gate) IsAvailable(ctx context.Context, crewID string, jobDate time.Time, _ float64) (bool, error) {
	onLeave, err := g.leave.IsOnApprovedLeave(ctx, crewID, jobDate)
	if err != nil {
		return false, errors.Upstream("leave checker", err)
	}
	if onLeave {
		return false, nil
	}

	rec, err := g.workload.GetCrewWorkload(ctx, crewID, jobDate)
	if err != nil {
		return false, errors.Upstream("workload ledger", err)
	}
	if rec != nil && rec.IsOverloaded {
		return false, nil
	}
	return true, nil
}
