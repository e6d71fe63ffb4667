package models

import "time"

// WorkloadRecord is one crew member's activity for one week. (CrewID, WeekStart) is unique.
type WorkloadRecord struct {
	CrewID          string    `json:"crewId"`
	WeekStart       time.Time `json:"weekStart"`
	TotalJobs       int       `json:"totalJobs"`
	ScheduledJobs   int       `json:"scheduledJobs"`
	InProgressJobs  int       `json:"inProgressJobs"`
	CompletedJobs   int       `json:"completedJobs"`
	HoursWorked     float64   `json:"hoursWorked"`
	UtilizationRate float64   `json:"utilizationRate"`
	IsOverloaded    bool      `json:"isOverloaded"`
	LastUpdated     time.Time `json:"lastUpdated"`
}
