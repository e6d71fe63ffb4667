package crewoverloadedreport

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/crew/balancing"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) GetCrewProfile(ctx context.Context, crewID string) (*models.CrewProfile, error) {
	args := m.Called(ctx, crewID)
	if p := args.Get(0); p != nil {
		return p.(*models.CrewProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func newHandler(t *testing.T, profiles balancing.ProfileDirectory, jobs map[string]int) *Handler {
	t.Helper()
	log := logger.NewTestLogger(t)
	ledger := workload.NewLedger(workload.NewMemoryStore(), workload.DefaultPolicy(), log)
	for crewID, n := range jobs {
		for i := 0; i < n; i++ {
			_, err := ledger.RecordJob(context.Background(), crewID, monday.AddDate(0, 0, 2), 3, workload.StatusScheduled)
			require.NoError(t, err)
		}
	}
	return NewHandler(LoadConfig(), balancing.NewReporter(ledger, profiles, log), log, nil)
}

func TestHandler_Execute(t *testing.T) {
	profiles := &mockProfiles{}
	profiles.On("GetCrewProfile", mock.Anything, "c-1").Return(&models.CrewProfile{ID: "c-1", Name: "Ayesha Khan"}, nil)
	profiles.On("GetCrewProfile", mock.Anything, "c-2").Return(nil, errors.ErrCrewNotFound)

	h := newHandler(t, profiles, map[string]int{"c-1": 9, "c-2": 7, "c-3": 2})

	out, err := h.Execute(context.Background(), &Input{WeekStart: "2024-03-14"})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-11", out.WeekStart)
	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Crew, 2)
	assert.Equal(t, "c-1", out.Crew[0].CrewID)
	require.NotNil(t, out.Crew[0].Profile)
	assert.Equal(t, "Ayesha Khan", out.Crew[0].Profile.Name)
	assert.Equal(t, 9, out.Crew[0].Workload.TotalJobs)
	assert.Equal(t, "c-2", out.Crew[1].CrewID)
	assert.Nil(t, out.Crew[1].Profile)
	profiles.AssertExpectations(t)
}

func TestHandler_Execute_NobodyOverloaded(t *testing.T) {
	h := newHandler(t, &mockProfiles{}, map[string]int{"c-1": 2})

	out, err := h.Execute(context.Background(), &Input{WeekStart: "2024-03-11"})
	require.NoError(t, err)
	assert.Zero(t, out.Count)
	assert.NotNil(t, out.Crew)
	assert.Empty(t, out.Crew)
}

func TestHandler_Execute_DirectoryFailure(t *testing.T) {
	profiles := &mockProfiles{}
	profiles.On("GetCrewProfile", mock.Anything, "c-1").Return(nil, stderrors.New("connection refused"))

	h := newHandler(t, profiles, map[string]int{"c-1": 6})

	_, err := h.Execute(context.Background(), &Input{WeekStart: "2024-03-11"})
	assert.ErrorIs(t, err, errors.ErrUpstreamFailure)
}

func TestHandler_Execute_BadWeek(t *testing.T) {
	h := newHandler(t, nil, nil)

	_, err := h.Execute(context.Background(), &Input{WeekStart: "11/03/2024"})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
