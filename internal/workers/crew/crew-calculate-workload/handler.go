package crewcalculateworkload

import (
	"context"
	"time"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-calculate-workload"

type Ledger interface {
	CalculateWorkload(ctx context.Context, crewID string, weekStart time.Time) (*workload.Record, error)
	RecordJob(ctx context.Context, crewID string, jobDate time.Time, hours float64, status string) (*workload.Record, error)
}

type Handler struct {
	config *Config
	ledger Ledger
	runner *camunda.Runner
}

func NewHandler(config *Config, ledger Ledger, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config: config,
		ledger: ledger,
		runner: camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, errors.Invalid("%v", err)
	}

	var rec *workload.Record
	if input.Status != "" {
		rec, err = h.ledger.RecordJob(ctx, input.CrewID, date, input.Hours, input.Status)
	} else {
		rec, err = h.ledger.CalculateWorkload(ctx, input.CrewID, date)
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		CrewID:    rec.CrewID,
		WeekStart: rec.WeekStart.Format(models.DateLayout),
		Workload:  rec,
	}, nil
}
