package crewsuggest

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/planner"
	"crew-workers/internal/models"
)

type Input struct {
	models.RequirementsInput
}

type Output struct {
	JobID       string                   `json:"jobId"`
	Suggestions []planner.CrewSuggestion `json:"suggestions"`
	Available   int                      `json:"availableCount"`
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["jobId", "jobDate"],
  "properties": {
    "jobId": {"type": "string", "minLength": 1},
    "jobDate": {"type": "string", "minLength": 10},
    "requiredSkills": {"type": "array", "items": {"type": "string"}},
    "crewSize": {"type": "integer", "minimum": 0},
    "estimatedHours": {"type": "number", "minimum": 0},
    "preferredCrewLeadId": {"type": "string"},
    "preferredCrewIds": {"type": "array", "items": {"type": "string"}},
    "excludedCrewIds": {"type": "array", "items": {"type": "string"}}
  }
}`)
