package crewmanualassign

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/models"
)

type Input struct {
	JobID          string   `json:"jobId"`
	CrewIDs        []string `json:"crewIds"`
	LeadID         string   `json:"leadId,omitempty"`
	JobDate        string   `json:"jobDate"`
	EstimatedHours float64  `json:"estimatedHours"`
	AssignedBy     string   `json:"assignedBy"`
	Notes          string   `json:"notes,omitempty"`
}

type Output struct {
	AssignmentID string   `json:"assignmentId"`
	JobID        string   `json:"jobId"`
	CrewIDs      []string `json:"crewIds"`
	LeadID       string   `json:"leadId"`
	Method       string   `json:"method"`
	AssignedDate string   `json:"assignedDate"`
	IsConfirmed  bool     `json:"isConfirmed"`
}

func toOutput(a *assignment.CrewAssignment) *Output {
	return &Output{
		AssignmentID: a.ID,
		JobID:        a.JobID,
		CrewIDs:      a.CrewIDs,
		LeadID:       a.LeadID,
		Method:       string(a.Method),
		AssignedDate: a.AssignedDate.Format(models.DateLayout),
		IsConfirmed:  a.IsConfirmed,
	}
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["jobId", "crewIds", "jobDate", "assignedBy"],
  "properties": {
    "jobId": {"type": "string", "minLength": 1},
    "crewIds": {"type": "array", "minItems": 1, "uniqueItems": true, "items": {"type": "string", "minLength": 1}},
    "leadId": {"type": "string"},
    "jobDate": {"type": "string", "minLength": 10},
    "estimatedHours": {"type": "number", "minimum": 0},
    "assignedBy": {"type": "string", "minLength": 1},
    "notes": {"type": "string", "maxLength": 2000}
  }
}`)
