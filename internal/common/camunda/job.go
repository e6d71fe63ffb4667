package camunda

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/common/metrics"
	"crew-workers/internal/common/observability"
	"crew-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Runner carries what every crew job shares: its task type, input schema, deadline and
// the reporting plumbing.
type Runner struct {
	TaskType string
	Schema   *validation.Schema
	Timeout  time.Duration
	Logger   logger.Logger
	Errors   *errors.ErrorHandler
	Obs      *observability.Observability
}

// NewRunner tags log with the task type and reports failures through a fresh ErrorHandler.
func NewRunner(taskType string, schema *validation.Schema, timeout time.Duration, log logger.Logger, obs *observability.Observability) *Runner {
	log = logger.ForComponent(log, "worker").WithFields(map[string]interface{}{"taskType": taskType})
	return &Runner{
		TaskType: taskType,
		Schema:   schema,
		Timeout:  timeout,
		Logger:   log,
		Errors:   errors.NewErrorHandler(log),
		Obs:      obs,
	}
}

// Decode validates raw job variables against schema and unmarshals them into I.
func Decode[I any](schema *validation.Schema, variables string) (*I, error) {
	raw := []byte(variables)
	if strings.TrimSpace(variables) == "" {
		raw = []byte("{}")
	}

	if schema != nil {
		result, err := schema.Validate(raw)
		if err != nil {
			return nil, errors.NewInputParsingFailedError(err)
		}
		if !result.Valid {
			return nil, errors.NewValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	var input I
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

// Run decodes the job, executes it and completes or fails it in Zeebe.
func Run[I, O any](r *Runner, client worker.JobClient, job entities.Job, exec func(context.Context, *I) (*O, error)) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Dec()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ctx, span := r.Obs.StartSpan(ctx, r.TaskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("process.instance.key", job.ProcessInstanceKey),
	)
	defer span.End()

	r.Logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	output, err := decodeAndExecute(ctx, r, job, exec)
	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.TaskType).Observe(elapsed.Seconds())

	if err != nil {
		stdErr := errors.FromDomain(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.WorkerJobsFailed.WithLabelValues(r.TaskType, string(stdErr.Code)).Inc()
		r.Obs.RecordJobProcessed(ctx, r.TaskType, "failed")
		r.Obs.RecordJobDuration(ctx, r.TaskType, elapsed, "failed")
		r.Errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		r.Errors.HandleJobError(ctx, client, job, errors.NewInputParsingFailedError(err))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		r.Logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.TaskType).Inc()
	r.Obs.RecordJobProcessed(ctx, r.TaskType, "completed")
	r.Obs.RecordJobDuration(ctx, r.TaskType, elapsed, "completed")
	r.Logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"durationMs": elapsed.Milliseconds(),
	})
}

func decodeAndExecute[I, O any](ctx context.Context, r *Runner, job entities.Job, exec func(context.Context, *I) (*O, error)) (*O, error) {
	input, err := Decode[I](r.Schema, job.Variables)
	if err != nil {
		return nil, err
	}
	return exec(ctx, input)
}
