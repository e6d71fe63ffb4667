package crewoverloadedreport

import (
	"context"
	"time"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/balancing"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-overloaded-report"

type Reporter interface {
	GetOverloadedCrew(ctx context.Context, weekStart time.Time) ([]balancing.CrewWithWorkload, error)
}

type Handler struct {
	config   *Config
	reporter Reporter
	runner   *camunda.Runner
}

func NewHandler(config *Config, reporter Reporter, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:   config,
		reporter: reporter,
		runner:   camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	date, err := models.ParseDate(input.WeekStart)
	if err != nil {
		return nil, errors.Invalid("%v", err)
	}
	week := workload.WeekStart(date)

	crew, err := h.reporter.GetOverloadedCrew(ctx, week)
	if err != nil {
		return nil, err
	}

	return &Output{
		WeekStart: week.Format(models.DateLayout),
		Count:     len(crew),
		Crew:      crew,
	}, nil
}
