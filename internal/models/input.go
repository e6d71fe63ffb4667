package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form accepted in job variables.
const DateLayout = "2006-01-02"

// ParseDate accepts either YYYY-MM-DD or RFC 3339 and returns the instant in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is neither %s nor RFC3339", s, DateLayout)
	}
	return t.UTC(), nil
}

// RequirementsInput is the job-variable shape shared by the suggest and auto-assign workers.
type RequirementsInput struct {
	JobID            string    `json:"jobId"`
	JobLocation      *Location `json:"jobLocation,omitempty"`
	RequiredSkills   []string  `json:"requiredSkills"`
	CrewSize         int       `json:"crewSize"`
	JobDate          string    `json:"jobDate"`
	EstimatedHours   float64   `json:"estimatedHours"`
	PreferredLeadID  string    `json:"preferredCrewLeadId,omitempty"`
	PreferredCrewIDs []string  `json:"preferredCrewIds,omitempty"`
	ExcludedCrewIDs  []string  `json:"excludedCrewIds,omitempty"`
	Location         *Location `json:"location,omitempty"`
}

// ToJob converts wire input into the domain job.
func (in *RequirementsInput) ToJob() (*Job, error) {
	date, err := ParseDate(in.JobDate)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:       in.JobID,
		Location: in.JobLocation,
		Requirements: JobRequirements{
			RequiredSkills:   in.RequiredSkills,
			CrewSize:         in.CrewSize,
			JobDate:          date,
			EstimatedHours:   in.EstimatedHours,
			PreferredLeadID:  in.PreferredLeadID,
			PreferredCrewIDs: in.PreferredCrewIDs,
			ExcludedCrewIDs:  in.ExcludedCrewIDs,
			Location:         in.Location,
		},
	}, nil
}
