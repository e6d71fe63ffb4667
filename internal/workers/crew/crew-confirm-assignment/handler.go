package crewconfirmassignment

import (
	"context"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/assignment"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-confirm-assignment"

type Confirmer interface {
	Confirm(ctx context.Context, assignmentID, crewID string) (*assignment.CrewAssignment, error)
	GetByJob(ctx context.Context, jobID string) (*assignment.CrewAssignment, error)
}

type Handler struct {
	config      *Config
	assignments Confirmer
	runner      *camunda.Runner
}

func NewHandler(config *Config, assignments Confirmer, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:      config,
		assignments: assignments,
		runner:      camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	assignmentID := input.AssignmentID
	if assignmentID == "" {
		a, err := h.assignments.GetByJob(ctx, input.JobID)
		if err != nil {
			return nil, err
		}
		assignmentID = a.ID
	}

	a, err := h.assignments.Confirm(ctx, assignmentID, input.CrewID)
	if err != nil {
		return nil, err
	}
	return toOutput(a), nil
}
