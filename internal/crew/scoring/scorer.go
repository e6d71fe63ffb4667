// Package scoring ranks a crew candidate against a job on a 0-100 scale.
package scoring

import (
	"context"
	"math"
	"strings"
	"time"

	"crew-workers/internal/crew/geo"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"
)

// Weights are the maximum points each factor can contribute. Defaults sum to 100.
type Weights struct {
	SkillsMatch    float64
	Availability   float64
	Proximity      float64
	Performance    float64
	Workload       float64
	TeamPreference float64
}

func DefaultWeights() Weights {
	return Weights{
		SkillsMatch:    30,
		Availability:   20,
		Proximity:      20,
		Performance:    15,
		Workload:       10,
		TeamPreference: 5,
	}
}

const (
	DefaultPerformanceRating = 3.0
	MaxPerformanceRating     = 5.0

	// Weekly job counts at which the workload factor drops to half and then to zero.
	busyWeekJobs = 3
	fullWeekJobs = 5

	maxScore = 100.0
)

// Breakdown is the per-factor contribution. Proximity is nil when it could not be computed.
type Breakdown struct {
	SkillsMatch    float64  `json:"skillsMatch"`
	Availability   float64  `json:"availability"`
	Proximity      *float64 `json:"proximity,omitempty"`
	Performance    float64  `json:"performance"`
	Workload       float64  `json:"workload"`
	TeamPreference float64  `json:"teamPreference"`
}

// Sum is the unclamped total.
func (b Breakdown) Sum() float64 {
	total := b.SkillsMatch + b.Availability + b.Performance + b.Workload + b.TeamPreference
	if b.Proximity != nil {
		total += *b.Proximity
	}
	return total
}

type Result struct {
	CrewID    string           `json:"crewId"`
	Name      string           `json:"name,omitempty"`
	Score     float64          `json:"score"`
	Breakdown Breakdown        `json:"breakdown"`
	Available bool             `json:"available"`
	Workload  *workload.Record `json:"workload,omitempty"`
}

// AvailabilityChecker is satisfied by availability.Gate.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, crewID string, jobDate time.Time, hours float64) (bool, error)
}

// WorkloadReader is satisfied by workload.Ledger.
type WorkloadReader interface {
	GetCrewWorkload(ctx context.Context, crewID string, anyDate time.Time) (*workload.Record, error)
}

type Scorer struct {
	availability AvailabilityChecker
	workload     WorkloadReader
	weights      Weights
}

func NewScorer(availability AvailabilityChecker, workloadReader WorkloadReader, weights Weights) *Scorer {
	return &Scorer{availability: availability, workload: workloadReader, weights: weights}
}

// Score evaluates one candidate. It only reads collaborators; any collaborator error is returned.
func (s *Scorer) Score(ctx context.Context, candidate models.CrewCandidate, job *models.Job) (Result, error) {
	req := job.Requirements

	available, err := s.availability.IsAvailable(ctx, candidate.ID, req.JobDate, req.EstimatedHours)
	if err != nil {
		return Result{}, err
	}

	rec, err := s.currentWorkload(ctx, candidate, req.JobDate)
	if err != nil {
		return Result{}, err
	}

	b := Breakdown{
		SkillsMatch:    s.weights.SkillsMatch * SkillCoverage(req.RequiredSkills, candidate.Skills),
		Performance:    s.weights.Performance * clampRating(candidate.PerformanceRating) / MaxPerformanceRating,
		Workload:       s.workloadPoints(rec),
		TeamPreference: s.teamPoints(candidate.ID, req.PreferredCrewIDs),
	}
	if available {
		b.Availability = s.weights.Availability
	}
	if jobLoc := job.EffectiveLocation(); candidate.HomeLocation != nil && jobLoc != nil {
		points := geo.ProximityPoints(geo.Distance(candidate.HomeLocation, jobLoc)) * s.weights.Proximity / 20
		b.Proximity = &points
	}

	return Result{
		CrewID:    candidate.ID,
		Name:      candidate.Name,
		Score:     clamp(b.Sum(), 0, maxScore),
		Breakdown: b,
		Available: available,
		Workload:  rec,
	}, nil
}

// currentWorkload uses the candidate's snapshot when it covers the job's week.
func (s *Scorer) currentWorkload(ctx context.Context, candidate models.CrewCandidate, jobDate time.Time) (*workload.Record, error) {
	if snap := candidate.CurrentWorkload; snap != nil && snap.WeekStart.Equal(workload.WeekStart(jobDate)) {
		return snap, nil
	}
	return s.workload.GetCrewWorkload(ctx, candidate.ID, jobDate)
}

func (s *Scorer) workloadPoints(rec *workload.Record) float64 {
	jobs := 0
	if rec != nil {
		jobs = rec.TotalJobs
	}
	switch {
	case jobs < busyWeekJobs:
		return s.weights.Workload
	case jobs < fullWeekJobs:
		return s.weights.Workload / 2
	default:
		return 0
	}
}

func (s *Scorer) teamPoints(crewID string, preferred []string) float64 {
	for _, id := range preferred {
		if id == crewID {
			return s.weights.TeamPreference
		}
	}
	return 0
}

// SkillCoverage is the fraction of required skills the candidate has, compared case-insensitively.
// No requirements means full coverage.
func SkillCoverage(required, have []string) float64 {
	req := skillSet(required)
	if len(req) == 0 {
		return 1
	}
	got := skillSet(have)
	matched := 0
	for skill := range req {
		if _, ok := got[skill]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(req))
}

func skillSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

// clampRating treats a missing or NaN rating as unset.
func clampRating(rating *float64) float64 {
	if rating == nil || math.IsNaN(*rating) {
		return DefaultPerformanceRating
	}
	return clamp(*rating, 0, MaxPerformanceRating)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
