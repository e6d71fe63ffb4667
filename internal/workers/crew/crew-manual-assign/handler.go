package crewmanualassign

import (
	"context"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/crew/planner"
	"crew-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-manual-assign"

type ManualAssigner interface {
	ManualAssign(ctx context.Context, req planner.ManualRequest) (*assignment.CrewAssignment, error)
}

type Handler struct {
	config  *Config
	planner ManualAssigner
	runner  *camunda.Runner
}

func NewHandler(config *Config, p ManualAssigner, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:  config,
		planner: p,
		runner:  camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	jobDate, err := models.ParseDate(input.JobDate)
	if err != nil {
		return nil, errors.Invalid("%v", err)
	}

	a, err := h.planner.ManualAssign(ctx, planner.ManualRequest{
		JobID:          input.JobID,
		CrewIDs:        input.CrewIDs,
		LeadID:         input.LeadID,
		JobDate:        jobDate,
		EstimatedHours: input.EstimatedHours,
		AssignedBy:     input.AssignedBy,
		Notes:          input.Notes,
	})
	if err != nil {
		return nil, err
	}
	return toOutput(a), nil
}
