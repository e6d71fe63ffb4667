// Package assignment stores crew assignments and drives their confirmation lifecycle.
package assignment

import (
	"time"
)

type Method string

const (
	MethodManual Method = "manual"
	MethodAuto   Method = "auto"
)

// State is derived from the confirmation set. Confirmed is terminal.
type State string

const (
	StateUnconfirmed State = "unconfirmed"
	StateConfirmed   State = "confirmed"
)

// CrewAssignment binds an ordered crew and a lead to one job.
type CrewAssignment struct {
	ID           string             `json:"id"`
	JobID        string             `json:"jobId"`
	CrewIDs      []string           `json:"crewIds"`
	LeadID       string             `json:"leadId"`
	AssignedDate time.Time          `json:"assignedDate"`
	AssignedBy   string             `json:"assignedBy"`
	Method       Method             `json:"method"`
	Scores       map[string]float64 `json:"scores,omitempty"`
	ConfirmedBy  []string           `json:"confirmedBy"`
	IsConfirmed  bool               `json:"isConfirmed"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func (a *CrewAssignment) State() State {
	if a.IsConfirmed {
		return StateConfirmed
	}
	return StateUnconfirmed
}

func (a *CrewAssignment) IsMember(crewID string) bool {
	return contains(a.CrewIDs, crewID)
}

func (a *CrewAssignment) HasConfirmed(crewID string) bool {
	return contains(a.ConfirmedBy, crewID)
}

// PendingConfirmations lists members that have not confirmed yet, in crew order.
func (a *CrewAssignment) PendingConfirmations() []string {
	pending := make([]string, 0, len(a.CrewIDs))
	for _, id := range a.CrewIDs {
		if !a.HasConfirmed(id) {
			pending = append(pending, id)
		}
	}
	return pending
}

func (a *CrewAssignment) allConfirmed() bool {
	return len(a.CrewIDs) > 0 && len(a.PendingConfirmations()) == 0
}

func (a *CrewAssignment) clone() *CrewAssignment {
	c := *a
	c.CrewIDs = append([]string(nil), a.CrewIDs...)
	c.ConfirmedBy = append([]string{}, a.ConfirmedBy...)
	if a.Scores != nil {
		c.Scores = make(map[string]float64, len(a.Scores))
		for k, v := range a.Scores {
			c.Scores[k] = v
		}
	}
	return &c
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
