package crewcalculateworkload

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/workload"
)

// Input refreshes a crew member's week. With Status set, the job on Date is also counted.
type Input struct {
	CrewID string  `json:"crewId"`
	Date   string  `json:"date"`
	Status string  `json:"status,omitempty"`
	Hours  float64 `json:"hours,omitempty"`
}

type Output struct {
	CrewID    string           `json:"crewId"`
	WeekStart string           `json:"weekStart"`
	Workload  *workload.Record `json:"workload"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["crewId", "date"],
  "properties": {
    "crewId": {"type": "string", "minLength": 1},
    "date": {"type": "string", "minLength": 10},
    "status": {"type": "string", "enum": ["scheduled", "in_progress", "completed"]},
    "hours": {"type": "number", "minimum": 0}
  }
}`)
