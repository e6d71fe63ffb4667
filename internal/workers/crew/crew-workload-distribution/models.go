package crewworkloaddistribution

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/workload"
)

type Input struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type WeekSummary struct {
	WeekStart  string            `json:"weekStart"`
	CrewCount  int               `json:"crewCount"`
	TotalJobs  int               `json:"totalJobs"`
	TotalHours float64           `json:"totalHours"`
	Records    []workload.Record `json:"records"`
}

type Output struct {
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
	Weeks     []WeekSummary `json:"weeks"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["startDate", "endDate"],
  "properties": {
    "startDate": {"type": "string", "minLength": 10},
    "endDate": {"type": "string", "minLength": 10}
  }
}`)
