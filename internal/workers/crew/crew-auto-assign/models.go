package crewautoassign

import (
	"time"

	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/models"
)

type Input struct {
	models.RequirementsInput
	AssignedBy string `json:"assignedBy"`
}

type Output struct {
	AssignmentID string             `json:"assignmentId"`
	JobID        string             `json:"jobId"`
	CrewIDs      []string           `json:"crewIds"`
	LeadID       string             `json:"leadId"`
	Method       string             `json:"method"`
	Scores       map[string]float64 `json:"scores"`
	AssignedDate string             `json:"assignedDate"`
	IsConfirmed  bool               `json:"isConfirmed"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func toOutput(a *assignment.CrewAssignment) *Output {
	return &Output{
		AssignmentID: a.ID,
		JobID:        a.JobID,
		CrewIDs:      a.CrewIDs,
		LeadID:       a.LeadID,
		Method:       string(a.Method),
		Scores:       a.Scores,
		AssignedDate: a.AssignedDate.Format(models.DateLayout),
		IsConfirmed:  a.IsConfirmed,
		CreatedAt:    a.CreatedAt,
	}
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["jobId", "jobDate", "crewSize", "estimatedHours", "assignedBy"],
  "properties": {
    "jobId": {"type": "string", "minLength": 1},
    "jobDate": {"type": "string", "minLength": 10},
    "requiredSkills": {"type": "array", "items": {"type": "string"}},
    "crewSize": {"type": "integer", "minimum": 1},
    "estimatedHours": {"type": "number", "exclusiveMinimum": 0},
    "assignedBy": {"type": "string", "minLength": 1},
    "preferredCrewLeadId": {"type": "string"},
    "preferredCrewIds": {"type": "array", "items": {"type": "string"}},
    "excludedCrewIds": {"type": "array", "items": {"type": "string"}}
  }
}`)
