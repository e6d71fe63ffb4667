// Package balancing summarizes a week's workload and recommends how to rebalance it.
package balancing

import (
	"context"
	stderrors "errors"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/metrics"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"
)

// Recommendation texts surfaced to dispatchers.
const (
	RecommendReduce        = "Reduce workload"
	RecommendUnderutilized = "Underutilized — can take more jobs"
	RecommendNormal        = "Normal workload"
)

// Ledger is the slice of workload.Ledger the reporter reads.
type Ledger interface {
	ListWeek(ctx context.Context, weekStart time.Time) ([]workload.Record, error)
	GetOverloadedCrew(ctx context.Context, weekStart time.Time) ([]workload.Record, error)
	Policy() workload.Policy
}

// ProfileDirectory resolves display information. Unknown crew members return errors.ErrCrewNotFound.
type ProfileDirectory interface {
	GetCrewProfile(ctx context.Context, crewID string) (*models.CrewProfile, error)
}

type CrewRecommendation struct {
	CrewID         string  `json:"crewId"`
	TotalJobs      int     `json:"totalJobs"`
	HoursWorked    float64 `json:"hoursWorked"`
	Recommendation string  `json:"recommendation"`
}

type Result struct {
	WeekStart           time.Time            `json:"weekStart"`
	AverageJobsPerCrew  float64              `json:"averageJobsPerCrew"`
	OverloadedCount     int                  `json:"overloadedCount"`
	UnderutilizedCount  int                  `json:"underutilizedCount"`
	CrewRecommendations []CrewRecommendation `json:"crewRecommendations"`
}

type CrewWithWorkload struct {
	CrewID   string              `json:"crewId"`
	Profile  *models.CrewProfile `json:"profile,omitempty"`
	Workload workload.Record     `json:"workload"`
}

type Reporter struct {
	ledger   Ledger
	profiles ProfileDirectory
	logger   logger.Logger
}

func NewReporter(ledger Ledger, profiles ProfileDirectory, log logger.Logger) *Reporter {
	return &Reporter{
		ledger:   ledger,
		profiles: profiles,
		logger:   logger.ForComponent(log, "balancing-reporter"),
	}
}

// BalanceWorkload reports the week's mean load and a recommendation per crew member.
// Overload follows the record's flag; underutilized means fewer jobs than ratio x mean.
func (r *Reporter) BalanceWorkload(ctx context.Context, weekStart time.Time) (*Result, error) {
	week := workload.WeekStart(weekStart)
	records, err := r.ledger.ListWeek(ctx, week)
	if err != nil {
		return nil, err
	}

	result := &Result{
		WeekStart:           week,
		CrewRecommendations: make([]CrewRecommendation, 0, len(records)),
	}
	if len(records) == 0 {
		metrics.OverloadedCrew.Set(0)
		return result, nil
	}

	total := 0
	for _, rec := range records {
		total += rec.TotalJobs
	}
	mean := float64(total) / float64(len(records))
	threshold := r.ledger.Policy().UnderutilizationRatio * mean

	for _, rec := range records {
		underutilized := float64(rec.TotalJobs) < threshold
		if rec.IsOverloaded {
			result.OverloadedCount++
		}
		if underutilized {
			result.UnderutilizedCount++
		}

		// One recommendation per member; overload wins.
		recommendation := RecommendNormal
		switch {
		case rec.IsOverloaded:
			recommendation = RecommendReduce
		case underutilized:
			recommendation = RecommendUnderutilized
		}
		result.CrewRecommendations = append(result.CrewRecommendations, CrewRecommendation{
			CrewID:         rec.CrewID,
			TotalJobs:      rec.TotalJobs,
			HoursWorked:    rec.HoursWorked,
			Recommendation: recommendation,
		})
	}
	result.AverageJobsPerCrew = mean

	metrics.OverloadedCrew.Set(float64(result.OverloadedCount))
	r.logger.Info("workload balanced", map[string]interface{}{
		"weekStart":     week.Format(models.DateLayout),
		"crewCount":     len(records),
		"average":       mean,
		"overloaded":    result.OverloadedCount,
		"underutilized": result.UnderutilizedCount,
	})
	return result, nil
}

// GetOverloadedCrew joins the week's overloaded records with profile display data.
// A missing profile leaves Profile nil; other directory failures are returned.
func (r *Reporter) GetOverloadedCrew(ctx context.Context, weekStart time.Time) ([]CrewWithWorkload, error) {
	records, err := r.ledger.GetOverloadedCrew(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	out := make([]CrewWithWorkload, 0, len(records))
	for _, rec := range records {
		item := CrewWithWorkload{CrewID: rec.CrewID, Workload: rec}
		if r.profiles != nil {
			profile, err := r.profiles.GetCrewProfile(ctx, rec.CrewID)
			switch {
			case err == nil:
				item.Profile = profile
			case stderrors.Is(err, errors.ErrCrewNotFound):
				r.logger.Warn("overloaded crew member has no profile", map[string]interface{}{
					"crewId": rec.CrewID,
				})
			default:
				return nil, errors.Upstream("profile directory", err)
			}
		}
		out = append(out, item)
	}
	return out, nil
}
