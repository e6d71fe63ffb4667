package crewconfirmassignment

import (
	"crew-workers/internal/common/validation"
	"crew-workers/internal/crew/assignment"
)

// Input names the assignment directly or through its job.
type Input struct {
	AssignmentID string `json:"assignmentId,omitempty"`
	JobID        string `json:"jobId,omitempty"`
	CrewID       string `json:"crewId"`
}

type Output struct {
	AssignmentID         string   `json:"assignmentId"`
	JobID                string   `json:"jobId"`
	State                string   `json:"state"`
	IsConfirmed          bool     `json:"isConfirmed"`
	ConfirmedBy          []string `json:"confirmedBy"`
	PendingConfirmations []string `json:"pendingConfirmations"`
}

func toOutput(a *assignment.CrewAssignment) *Output {
	return &Output{
		AssignmentID:         a.ID,
		JobID:                a.JobID,
		State:                string(a.State()),
		IsConfirmed:          a.IsConfirmed,
		ConfirmedBy:          a.ConfirmedBy,
		PendingConfirmations: a.PendingConfirmations(),
	}
}

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["crewId"],
  "properties": {
    "assignmentId": {"type": "string", "minLength": 1},
    "jobId": {"type": "string", "minLength": 1},
    "crewId": {"type": "string", "minLength": 1}
  },
  "anyOf": [
    {"required": ["assignmentId"]},
    {"required": ["jobId"]}
  ]
}`)
