package assignment

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/metrics"

	"github.com/google/uuid"
)

// Invalidator drops cached views for a crew member's week.
type Invalidator interface {
	Invalidate(ctx context.Context, crewID string, weekStart time.Time) error
}

// NewAssignment is what a caller supplies; the service fills in identity and timestamps.
type NewAssignment struct {
	JobID        string
	CrewIDs      []string
	LeadID       string
	AssignedDate time.Time
	AssignedBy   string
	Method       Method
	Scores       map[string]float64
	Notes        string
}

type Service struct {
	store       Store
	invalidator Invalidator
	weekOf      func(time.Time) time.Time
	logger      logger.Logger
	now         func() time.Time
}

type Option func(*Service)

// WithInvalidator invalidates each member's cached week on every recorded confirmation. weekOf maps the
// assigned date to the cache's week key.
func WithInvalidator(inv Invalidator, weekOf func(time.Time) time.Time) Option {
	return func(s *Service) {
		s.invalidator = inv
		s.weekOf = weekOf
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger.ForComponent(log, "assignment-service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new unconfirmed assignment.
func (s *Service) Create(ctx context.Context, in NewAssignment) (*CrewAssignment, error) {
	if err := validateNew(in); err != nil {
		return nil, err
	}

	now := s.now()
	a := &CrewAssignment{
		ID:           uuid.NewString(),
		JobID:        in.JobID,
		CrewIDs:      append([]string(nil), in.CrewIDs...),
		LeadID:       in.LeadID,
		AssignedDate: in.AssignedDate,
		AssignedBy:   in.AssignedBy,
		Method:       in.Method,
		Scores:       in.Scores,
		ConfirmedBy:  []string{},
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if a.Method == MethodManual {
		a.Scores = nil
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, storeError(err)
	}

	metrics.AssignmentsCreated.WithLabelValues(string(a.Method)).Inc()
	s.logger.Info("crew assignment created", map[string]interface{}{
		"assignmentId": a.ID,
		"jobId":        a.JobID,
		"crewIds":      a.CrewIDs,
		"leadId":       a.LeadID,
		"method":       string(a.Method),
	})
	return a, nil
}

func validateNew(in NewAssignment) error {
	if strings.TrimSpace(in.JobID) == "" {
		return errors.Invalid("job id is required")
	}
	if len(in.CrewIDs) == 0 {
		return errors.Invalid("at least one crew member is required")
	}
	seen := make(map[string]struct{}, len(in.CrewIDs))
	for _, id := range in.CrewIDs {
		if strings.TrimSpace(id) == "" {
			return errors.Invalid("crew ids must not be empty")
		}
		if _, dup := seen[id]; dup {
			return errors.Invalid("crew member %s listed twice", id)
		}
		seen[id] = struct{}{}
	}
	if _, ok := seen[in.LeadID]; !ok {
		return errors.Invalid("lead %q is not part of the crew", in.LeadID)
	}
	if in.AssignedDate.IsZero() {
		return errors.Invalid("assigned date is required")
	}
	if in.Method != MethodManual && in.Method != MethodAuto {
		return errors.Invalid("unknown assignment method %q", in.Method)
	}
	return nil
}

// Confirm records crewID's confirmation. Repeating a confirmation is a no-op; the assignment
// becomes confirmed exactly when every member has confirmed.
func (s *Service) Confirm(ctx context.Context, assignmentID, crewID string) (*CrewAssignment, error) {
	if strings.TrimSpace(assignmentID) == "" || strings.TrimSpace(crewID) == "" {
		return nil, errors.Invalid("assignment id and crew id are required")
	}

	var changed, becameConfirmed bool
	a, err := s.store.Update(ctx, assignmentID, func(a *CrewAssignment) (bool, error) {
		if !a.IsMember(crewID) {
			return false, errors.Invalid("crew member %s is not assigned to %s", crewID, assignmentID)
		}
		if a.HasConfirmed(crewID) {
			return false, nil
		}
		a.ConfirmedBy = append(a.ConfirmedBy, crewID)
		wasConfirmed := a.IsConfirmed
		a.IsConfirmed = a.allConfirmed()
		becameConfirmed = !wasConfirmed && a.IsConfirmed
		a.UpdatedAt = s.now()
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if becameConfirmed {
		metrics.AssignmentsConfirmed.Inc()
		s.logger.Info("crew assignment confirmed", map[string]interface{}{
			"assignmentId": a.ID,
			"jobId":        a.JobID,
		})
	}
	if changed {
		s.invalidateMembers(ctx, a)
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*CrewAssignment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return a, nil
}

func (s *Service) GetByJob(ctx context.Context, jobID string) (*CrewAssignment, error) {
	a, err := s.store.GetByJob(ctx, jobID)
	if err != nil {
		return nil, storeError(err)
	}
	return a, nil
}

func (s *Service) invalidateMembers(ctx context.Context, a *CrewAssignment) {
	if s.invalidator == nil {
		return
	}
	week := a.AssignedDate
	if s.weekOf != nil {
		week = s.weekOf(week)
	}
	for _, id := range a.CrewIDs {
		if err := s.invalidator.Invalidate(ctx, id, week); err != nil {
			s.logger.Warn("cache invalidation failed", map[string]interface{}{
				"crewId": id,
				"error":  err.Error(),
			})
		}
	}
}

// storeError keeps domain outcomes as they are and marks everything else as an upstream failure.
func storeError(err error) error {
	switch {
	case stderrors.Is(err, errors.ErrAssignmentNotFound),
		stderrors.Is(err, errors.ErrDuplicateAssignment),
		stderrors.Is(err, errors.ErrInvalidInput):
		return err
	default:
		return errors.Upstream("assignment store", err)
	}
}
