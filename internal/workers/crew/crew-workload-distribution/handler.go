package crewworkloaddistribution

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

const TaskType = "crew-workload-distribution"

type Ledger interface {
	GetWorkloadDistribution(ctx context.Context, start, end time.Time) ([]workload.WeekDistribution, error)
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
	start, err := models.ParseDate(input.StartDate)
	if err != nil {
		return nil, errors.Invalid("start date: %v", err)
	}
	end, err := models.ParseDate(input.EndDate)
	if err != nil {
		return nil, errors.Invalid("end date: %v", err)
	}

	dist, err := h.ledger.GetWorkloadDistribution(ctx, start, end)
	if err != nil {
		return nil, err
	}

	out := &Output{
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Weeks:     make([]WeekSummary, 0, len(dist)),
	}
	for _, week := range dist {
		summary := WeekSummary{
			WeekStart: week.WeekStart.Format(models.DateLayout),
			CrewCount: len(week.Records),
			Records:   week.Records,
		}
		for _, rec := range week.Records {
			summary.TotalJobs += rec.TotalJobs
			summary.TotalHours += rec.HoursWorked
		}
		out.Weeks = append(out.Weeks, summary)
	}
	return out, nil
}
