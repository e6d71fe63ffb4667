package models

import (
	"strings"
	"time"
)

// Location is either a coordinate pair, a postal code, or both.
type Location struct {
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
}

// HasCoordinates is true only when both latitude and longitude are set.
func (l *Location) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

func (l *Location) HasPostalCode() bool {
	return l != nil && strings.TrimSpace(l.PostalCode) != ""
}

type JobRequirements struct {
	RequiredSkills   []string  `json:"requiredSkills"`
	CrewSize         int       `json:"crewSize"`
	JobDate          time.Time `json:"jobDate"`
	EstimatedHours   float64   `json:"estimatedHours"`
	PreferredLeadID  string    `json:"preferredCrewLeadId,omitempty"`
	PreferredCrewIDs []string  `json:"preferredCrewIds,omitempty"`
	ExcludedCrewIDs  []string  `json:"excludedCrewIds,omitempty"`
	Location         *Location `json:"location,omitempty"`
}

// Job is a unit of field work that needs a crew.
type Job struct {
	ID           string          `json:"id"`
	Location     *Location       `json:"location,omitempty"`
	Requirements JobRequirements `json:"requirements"`
}

// EffectiveLocation prefers the requirements location over the job site.
func (j *Job) EffectiveLocation() *Location {
	if j.Requirements.Location != nil {
		return j.Requirements.Location
	}
	return j.Location
}

type CrewCandidate struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Skills            []string        `json:"skills"`
	PerformanceRating *float64        `json:"performanceRating,omitempty"`
	HomeLocation      *Location       `json:"homeLocation,omitempty"`
	CurrentWorkload   *WorkloadRecord `json:"currentWorkload,omitempty"`
}

// CrewProfile is the display information a directory holds for a crew member.
type CrewProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
