package crewautoassign

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"crew-workers/internal/common/camunda"
	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/crew/assignment"
	"crew-workers/internal/crew/availability"
	"crew-workers/internal/crew/planner"
	"crew-workers/internal/crew/scoring"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticPool []models.CrewCandidate

func (p staticPool) GetCandidatePool(context.Context, *models.Job) ([]models.CrewCandidate, error) {
	return p, nil
}

type noLeave struct{}

func (noLeave) IsOnApprovedLeave(context.Context, string, time.Time) (bool, error) { return false, nil }

func newHandler(t *testing.T, pool staticPool) (*Handler, *assignment.Service) {
	t.Helper()
	log := logger.NewTestLogger(t)
	ledger := workload.NewLedger(workload.NewMemoryStore(), workload.DefaultPolicy(), log)
	scorer := scoring.NewScorer(availability.NewGate(noLeave{}, ledger), ledger, scoring.DefaultWeights())
	service := assignment.NewService(assignment.NewMemoryStore(), log)
	p := planner.New(pool, scorer, service, ledger, log)
	return NewHandler(LoadConfig(), p, log, nil), service
}

func createTestInput(crewSize int) *Input {
	return &Input{
		RequirementsInput: models.RequirementsInput{
			JobID:          "job-1",
			RequiredSkills: []string{"packing", "driving"},
			CrewSize:       crewSize,
			JobDate:        "2024-03-13",
			EstimatedHours: 8,
		},
		AssignedBy: "dispatcher-1",
	}
}

var testPool = staticPool{
	{ID: "c-1", Skills: []string{"packing"}},
	{ID: "c-2", Skills: []string{"packing", "driving"}},
	{ID: "c-3", Skills: []string{"welding"}},
}

func TestHandler_Execute(t *testing.T) {
	h, service := newHandler(t, testPool)

	out, err := h.Execute(context.Background(), createTestInput(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"c-2", "c-1"}, out.CrewIDs)
	assert.Equal(t, "c-2", out.LeadID)
	assert.Equal(t, "auto", out.Method)
	assert.Equal(t, "2024-03-13", out.AssignedDate)
	assert.Len(t, out.Scores, 3)
	assert.False(t, out.IsConfirmed)

	stored, err := service.GetByJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, out.AssignmentID, stored.ID)
}

func TestHandler_Execute_InsufficientCandidates(t *testing.T) {
	h, service := newHandler(t, testPool)

	_, err := h.Execute(context.Background(), createTestInput(4))
	require.Error(t, err)

	stdErr := errors.FromDomain(err)
	assert.Equal(t, errors.ErrCodeInsufficientCandidates, stdErr.Code)
	assert.Equal(t, 4, stdErr.Metadata["required"])
	assert.Equal(t, 3, stdErr.Metadata["available"])

	bpmn := errors.ConvertToBPMNError(stdErr)
	assert.Zero(t, bpmn.Retries)
	assert.Equal(t, 4, bpmn.ErrorVariables["required"])

	_, err = service.GetByJob(context.Background(), "job-1")
	assert.ErrorIs(t, err, errors.ErrAssignmentNotFound)
}

func TestHandler_Execute_BadDate(t *testing.T) {
	h, _ := newHandler(t, testPool)
	input := createTestInput(1)
	input.JobDate = "13/03/2024"

	_, err := h.Execute(context.Background(), input)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name string
		vars string
		want errors.ErrorCode
	}{
		{"valid", `{"jobId":"job-1","jobDate":"2024-03-13","crewSize":2,"estimatedHours":8,"assignedBy":"d-1"}`, ""},
		{"zero crew size", `{"jobId":"job-1","jobDate":"2024-03-13","crewSize":0,"estimatedHours":8,"assignedBy":"d-1"}`, errors.ErrCodeValidationFailed},
		{"zero hours", `{"jobId":"job-1","jobDate":"2024-03-13","crewSize":2,"estimatedHours":0,"assignedBy":"d-1"}`, errors.ErrCodeValidationFailed},
		{"missing assigner", `{"jobId":"job-1","jobDate":"2024-03-13","crewSize":2,"estimatedHours":8}`, errors.ErrCodeValidationFailed},
		{"not json", `jobId=job-1`, errors.ErrCodeInputParsingFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := camunda.Decode[Input](inputSchema, tt.vars)
			if tt.want == "" {
				require.NoError(t, err)
				assert.Equal(t, "d-1", input.AssignedBy)
				assert.Equal(t, 2, input.CrewSize)
				return
			}
			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, tt.want, stdErr.Code)
		})
	}
}
