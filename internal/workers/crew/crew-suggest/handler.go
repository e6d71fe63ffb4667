package crewsuggest

import (
	"context"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/crew/cache"
	"crew-workers/internal/crew/planner"
	"crew-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "crew-suggest"

type Suggester interface {
	SuggestCrew(ctx context.Context, job *models.Job) ([]planner.CrewSuggestion, error)
}

type Handler struct {
	config  *Config
	planner Suggester
	cache   *cache.Cache
	runner  *camunda.Runner
}

// NewHandler accepts a nil cache.
func NewHandler(config *Config, p Suggester, c *cache.Cache, log logger.Logger, obs *observability.Observability) *Handler {
	return &Handler{
		config:  config,
		planner: p,
		cache:   c,
		runner:  camunda.NewRunner(TaskType, inputSchema, config.Timeout, log, obs),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	camunda.Run(h.runner, client, job, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	job, err := input.ToJob()
	if err != nil {
		return nil, errors.Invalid("%v", err)
	}

	tagsOf := func(out *Output) []string {
		tags := make([]string, 0, len(out.Suggestions))
		for _, s := range out.Suggestions {
			tags = append(tags, cache.CrewWeekTag(s.CrewID, job.Requirements.JobDate))
		}
		return tags
	}
	return cache.Fetch(ctx, h.cache, cache.SuggestionKey(job), tagsOf, func(ctx context.Context) (*Output, error) {
		suggestions, err := h.planner.SuggestCrew(ctx, job)
		if err != nil {
			return nil, err
		}
		available := 0
		for _, s := range suggestions {
			if s.Available {
				available++
			}
		}
		return &Output{JobID: job.ID, Suggestions: suggestions, Available: available}, nil
	})
}
