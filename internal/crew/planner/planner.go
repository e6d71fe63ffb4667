// Package planner scores a candidate pool against a job and turns the best available crew into
// a persisted assignment.
package planner

import (
	"context"
	"sort"
	"strings"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/metrics"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/crew/scoring"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const DefaultScoringWorkers = 16

// CrewSuggestion is one ranked candidate with its breakdown, availability and workload snapshot.
type CrewSuggestion = scoring.Result

type CandidatePool interface {
	GetCandidatePool(ctx context.Context, job *models.Job) ([]models.CrewCandidate, error)
}

type CandidateScorer interface {
	Score(ctx context.Context, candidate models.CrewCandidate, job *models.Job) (scoring.Result, error)
}

type AssignmentCreator interface {
	Create(ctx context.Context, in assignment.NewAssignment) (*assignment.CrewAssignment, error)
}

type WorkloadRecorder interface {
	RecordJob(ctx context.Context, crewID string, jobDate time.Time, hours float64, status string) (*workload.Record, error)
}

type Notifier interface {
	AssignmentCreated(ctx context.Context, a *assignment.CrewAssignment) error
}

// ManualRequest names the crew directly; LeadID defaults to the first crew id.
type ManualRequest struct {
	JobID          string
	CrewIDs        []string
	LeadID         string
	JobDate        time.Time
	EstimatedHours float64
	AssignedBy     string
	Notes          string
}

type Planner struct {
	pool        CandidatePool
	scorer      CandidateScorer
	assignments AssignmentCreator
	ledger      WorkloadRecorder
	notifier    Notifier
	workers     int
	logger      logger.Logger
	tracer      trace.Tracer
}

type Option func(*Planner)

func WithNotifier(n Notifier) Option {
	return func(p *Planner) { p.notifier = n }
}

// WithScoringWorkers caps how many candidates are scored at once.
func WithScoringWorkers(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.workers = n
		}
	}
}

func New(pool CandidatePool, scorer CandidateScorer, assignments AssignmentCreator, ledger WorkloadRecorder, log logger.Logger, opts ...Option) *Planner {
	p := &Planner{
		pool:        pool,
		scorer:      scorer,
		assignments: assignments,
		ledger:      ledger,
		workers:     DefaultScoringWorkers,
		logger:      logger.ForComponent(log, "assignment-planner"),
		tracer:      otel.Tracer("crew-workers/planner"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SuggestCrew ranks every non-excluded candidate, available or not, best first.
func (p *Planner) SuggestCrew(ctx context.Context, job *models.Job) ([]CrewSuggestion, error) {
	if err := validateJob(job); err != nil {
		return nil, err
	}
	ctx, span := p.tracer.Start(ctx, "planner.SuggestCrew", trace.WithAttributes(attribute.String("job.id", job.ID)))
	defer span.End()

	ranked, err := p.rank(ctx, job)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return ranked, nil
}

// AutoAssignCrew selects the top CrewSize available candidates and persists them as an auto
// assignment. Nothing is persisted when too few candidates are available.
func (p *Planner) AutoAssignCrew(ctx context.Context, job *models.Job, assignedBy string) (*assignment.CrewAssignment, error) {
	if err := validateJob(job); err != nil {
		return nil, err
	}
	req := job.Requirements
	if req.CrewSize <= 0 {
		return nil, errors.Invalid("crew size must be positive, got %d", req.CrewSize)
	}
	if req.EstimatedHours <= 0 {
		return nil, errors.Invalid("estimated hours must be positive, got %v", req.EstimatedHours)
	}

	ctx, span := p.tracer.Start(ctx, "planner.AutoAssignCrew", trace.WithAttributes(
		attribute.String("job.id", job.ID),
		attribute.Int("crew.size", req.CrewSize),
	))
	defer span.End()

	ranked, err := p.rank(ctx, job)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	available := make([]scoring.Result, 0, len(ranked))
	for _, r := range ranked {
		if r.Available {
			available = append(available, r)
		}
	}
	if len(available) < req.CrewSize {
		metrics.InsufficientCandidates.Inc()
		p.logger.Warn("not enough available crew", map[string]interface{}{
			"jobId":     job.ID,
			"required":  req.CrewSize,
			"available": len(available),
		})
		return nil, &errors.InsufficientCandidatesError{Required: req.CrewSize, Available: len(available)}
	}

	selected := available[:req.CrewSize]
	crewIDs := make([]string, len(selected))
	for i, r := range selected {
		crewIDs[i] = r.CrewID
	}
	scores := make(map[string]float64, len(ranked))
	for _, r := range ranked {
		scores[r.CrewID] = r.Score
	}

	a, err := p.assignments.Create(ctx, assignment.NewAssignment{
		JobID:        job.ID,
		CrewIDs:      crewIDs,
		LeadID:       chooseLead(crewIDs, req.PreferredLeadID),
		AssignedDate: req.JobDate,
		AssignedBy:   assignedBy,
		Method:       assignment.MethodAuto,
		Scores:       scores,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.afterCreate(ctx, a, req.EstimatedHours)
	return a, nil
}

// ManualAssign persists a dispatcher-chosen crew without scoring.
func (p *Planner) ManualAssign(ctx context.Context, req ManualRequest) (*assignment.CrewAssignment, error) {
	if req.EstimatedHours < 0 {
		return nil, errors.Invalid("estimated hours must not be negative, got %v", req.EstimatedHours)
	}
	lead := req.LeadID
	if lead == "" && len(req.CrewIDs) > 0 {
		lead = req.CrewIDs[0]
	}

	a, err := p.assignments.Create(ctx, assignment.NewAssignment{
		JobID:        req.JobID,
		CrewIDs:      req.CrewIDs,
		LeadID:       lead,
		AssignedDate: req.JobDate,
		AssignedBy:   req.AssignedBy,
		Method:       assignment.MethodManual,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}

	p.afterCreate(ctx, a, req.EstimatedHours)
	return a, nil
}

func validateJob(job *models.Job) error {
	if job == nil {
		return errors.Invalid("job is required")
	}
	if strings.TrimSpace(job.ID) == "" {
		return errors.Invalid("job id is required")
	}
	req := job.Requirements
	if req.CrewSize < 0 {
		return errors.Invalid("crew size must not be negative, got %d", req.CrewSize)
	}
	if req.JobDate.IsZero() {
		return errors.Invalid("job date is required")
	}
	if req.EstimatedHours < 0 {
		return errors.Invalid("estimated hours must not be negative, got %v", req.EstimatedHours)
	}
	return nil
}

// rank scores the deduplicated, non-excluded pool concurrently and sorts it by score, keeping
// pool order among equal scores.
func (p *Planner) rank(ctx context.Context, job *models.Job) ([]scoring.Result, error) {
	pool, err := p.pool.GetCandidatePool(ctx, job)
	if err != nil {
		return nil, errors.Upstream("candidate pool", err)
	}
	if len(pool) == 0 && len(job.Requirements.RequiredSkills) == 0 {
		return nil, errors.Invalid("job %s has no required skills and no candidates", job.ID)
	}

	candidates := eligible(pool, job.Requirements.ExcludedCrewIDs)
	results := make([]scoring.Result, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(candidates), p.workers))
	for i, c := range candidates {
		g.Go(func() error {
			r, err := p.scorer.Score(gctx, c, job)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Upstream("candidate scorer", err)
	}
	metrics.CandidatesScored.Add(float64(len(candidates)))
	metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// eligible drops excluded ids and repeated ids, keeping first occurrences in pool order.
func eligible(pool []models.CrewCandidate, excluded []string) []models.CrewCandidate {
	skip := make(map[string]struct{}, len(excluded)+len(pool))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}
	out := make([]models.CrewCandidate, 0, len(pool))
	for _, c := range pool {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		skip[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func chooseLead(crewIDs []string, preferred string) string {
	for _, id := range crewIDs {
		if preferred != "" && id == preferred {
			return id
		}
	}
	return crewIDs[0]
}

// afterCreate records the job against each member's week and announces the assignment. Both
// are logged on failure; the assignment already exists.
func (p *Planner) afterCreate(ctx context.Context, a *assignment.CrewAssignment, hours float64) {
	for _, crewID := range a.CrewIDs {
		if _, err := p.ledger.RecordJob(ctx, crewID, a.AssignedDate, hours, workload.StatusScheduled); err != nil {
			p.logger.Error("failed to record workload", map[string]interface{}{
				"assignmentId": a.ID,
				"crewId":       crewID,
				"error":        err.Error(),
			})
		}
	}

	if p.notifier == nil {
		return
	}
	if err := p.notifier.AssignmentCreated(ctx, a); err != nil {
		p.logger.Warn("assignment notification failed", map[string]interface{}{
			"assignmentId": a.ID,
			"error":        err.Error(),
		})
	}
}
