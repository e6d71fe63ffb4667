package crewautoassign

import (
	"context"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-auto-assign"

type AutoAssigner interface {
	AutoAssignCrew(ctx context.Context, job *models.Job, assignedBy string) (*assignment.CrewAssignment, error)
}

type Handler struct {
	config  *Config
	planner AutoAssigner
	runner  *camunda.Runner
}

func NewHandler(config *Config, p AutoAssigner, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:  config,
		planner: p,
		runner:  camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

// Execute surfaces too few available crew as INSUFFICIENT_CANDIDATES with the required and
// available counts in the error variables.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := input.ToJob()
	if err != nil {
		return nil, errors.Invalid("%v", err)
	}

	a, err := h.planner.AutoAssignCrew(ctx, job, input.AssignedBy)
	if err != nil {
		return nil, err
	}
	return toOutput(a), nil
}
