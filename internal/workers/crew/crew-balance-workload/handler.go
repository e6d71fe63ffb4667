package crewbalanceworkload

import (
	"context"
	"time"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/balancing"
	"crew-workers/internal/crew/cache"
	"crew-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-balance-workload"

type Balancer interface {
	BalanceWorkload(ctx context.Context, weekStart time.Time) (*balancing.Result, error)
}

type ReportSender interface {
	BalanceReport(ctx context.Context, result *balancing.Result) error
}

type Handler struct {
	config   *Config
	reporter Balancer
	sender   ReportSender
	cache    *cache.Cache
	logger   logger.Logger
	runner   *camunda.Runner
}

// NewHandler accepts a nil sender and a nil cache.
func NewHandler(config *Config, reporter Balancer, sender ReportSender, c *cache.Cache, log logger.Logger, obs *observability.Observability) *Handler {
	runner := camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs)
	return &Handler{
		config:   config,
		reporter: reporter,
		sender:   sender,
		cache:    c,
		logger:   runner.Logger,
		runner:   runner,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

// Execute never fails because the report could not be sent.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	week, err := models.ParseDate(input.WeekStart)
	if err != nil {
		return nil, errors.Invalid("%v", err)
	}

	tagsOf := func(*balancing.Result) []string { return []string{cache.WeekTag(week)} }
	result, err := cache.Fetch(ctx, h.cache, cache.BalanceKey(week), tagsOf, func(ctx context.Context) (*balancing.Result, error) {
		return h.reporter.BalanceWorkload(ctx, week)
	})
	if err != nil {
		return nil, err
	}

	out := &Output{Result: *result}
	if input.SendReport && h.sender != nil {
		if err := h.sender.BalanceReport(ctx, result); err != nil {
			h.logger.Warn("balance report not sent", map[string]interface{}{
				"weekStart": input.WeekStart,
				"error":     err.Error(),
			})
		} else {
			out.ReportSent = true
		}
	}
	return out, nil
}
