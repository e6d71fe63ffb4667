package crewoverloadedreport

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/balancing"
)

type Input struct {
	WeekStart string `json:"weekStart"`
}

type Output struct {
	WeekStart string                       `json:"weekStart"`
	Count     int                          `json:"count"`
	Crew      []balancing.CrewWithWorkload `json:"crew"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["weekStart"],
  "properties": {
    "weekStart": {"type": "string", "minLength": 10}
  }
}`)
