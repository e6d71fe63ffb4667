package assignment

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	assignedDate = time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	fixedNow     = time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
)

type recordingInvalidator struct {
	mu    sync.Mutex
	crews []string
	weeks []time.Time
}

func (r *recordingInvalidator) Invalidate(_ context.Context, crewID string, week time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crews = append(r.crews, crewID)
	r.weeks = append(r.weeks, week)
	return nil
}

type brokenStore struct{ MemoryStore }

func (brokenStore) Get(context.Context, string) (*CrewAssignment, error) {
	return nil, stderrors.New("connection refused")
}

func newTestService(t *testing.T, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(NewMemoryStore(), logger.NewTestLogger(t), opts...)
}

func newAuto(jobID string, crew ...string) NewAssignment {
	return NewAssignment{
		JobID:        jobID,
		CrewIDs:      crew,
		LeadID:       crew[0],
		AssignedDate: assignedDate,
		AssignedBy:   "dispatcher-1",
		Method:       MethodAuto,
		Scores:       map[string]float64{crew[0]: 90},
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)

	a, err := svc.Create(context.Background(), newAuto("job-1", "c-1", "c-2"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, []string{"c-1", "c-2"}, a.CrewIDs)
	assert.Equal(t, "c-1", a.LeadID)
	assert.Equal(t, StateUnconfirmed, a.State())
	assert.NotNil(t, a.ConfirmedBy)
	assert.Empty(t, a.ConfirmedBy)
	assert.Equal(t, fixedNow, a.CreatedAt)
	assert.Equal(t, 90.0, a.Scores["c-1"])

	byJob, err := svc.GetByJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byJob.ID)
}

func TestService_Create_ManualDropsScores(t *testing.T) {
	svc := newTestService(t)
	in := newAuto("job-1", "c-1")
	in.Method = MethodManual

	a, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, a.Scores)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*NewAssignment)
	}{
		{"missing job", func(n *NewAssignment) { n.JobID = "" }},
		{"empty crew", func(n *NewAssignment) { n.CrewIDs = nil }},
		{"duplicate member", func(n *NewAssignment) { n.CrewIDs = []string{"c-1", "c-1"} }},
		{"lead outside crew", func(n *NewAssignment) { n.LeadID = "c-9" }},
		{"zero date", func(n *NewAssignment) { n.AssignedDate = time.Time{} }},
		{"bad method", func(n *NewAssignment) { n.Method = "magic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newAuto("job-1", "c-1", "c-2")
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
		})
	}
}

func TestService_Create_DuplicateJob(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, newAuto("job-1", "c-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, newAuto("job-1", "c-2"))
	assert.ErrorIs(t, err, errors.ErrDuplicateAssignment)
}

func TestService_Confirm_Lifecycle(t *testing.T) {
	inv := &recordingInvalidator{}
	weekOf := func(t time.Time) time.Time { return t.AddDate(0, 0, -2) }
	svc := newTestService(t, WithInvalidator(inv, weekOf))
	ctx := context.Background()

	a, err := svc.Create(ctx, newAuto("job-1", "c-1", "c-2"))
	require.NoError(t, err)

	a, err = svc.Confirm(ctx, a.ID, "c-2")
	require.NoError(t, err)
	assert.Equal(t, StateUnconfirmed, a.State())
	assert.Equal(t, []string{"c-2"}, a.ConfirmedBy)
	assert.Equal(t, []string{"c-1"}, a.PendingConfirmations())
	assert.ElementsMatch(t, []string{"c-1", "c-2"}, inv.crews, "every recorded confirmation invalidates")

	a, err = svc.Confirm(ctx, a.ID, "c-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"c-2"}, a.ConfirmedBy, "repeat confirmation is a no-op")
	assert.Len(t, inv.crews, 2)

	a, err = svc.Confirm(ctx, a.ID, "c-1")
	require.NoError(t, err)
	assert.True(t, a.IsConfirmed)
	assert.Equal(t, StateConfirmed, a.State())
	assert.ElementsMatch(t, []string{"c-1", "c-2", "c-1", "c-2"}, inv.crews)
	assert.True(t, inv.weeks[0].Equal(assignedDate.AddDate(0, 0, -2)))

	a, err = svc.Confirm(ctx, a.ID, "c-1")
	require.NoError(t, err)
	assert.True(t, a.IsConfirmed, "confirmed is terminal")
	assert.Len(t, inv.crews, 4)
}

func TestService_Confirm_Errors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, newAuto("job-1", "c-1"))
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, "missing", "c-1")
	assert.ErrorIs(t, err, errors.ErrAssignmentNotFound)

	_, err = svc.Confirm(ctx, a.ID, "stranger")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = svc.Confirm(ctx, a.ID, "")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	after, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, after.ConfirmedBy)
}

func TestService_Confirm_ConcurrentMembers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	crew := []string{"c-1", "c-2", "c-3", "c-4", "c-5", "c-6", "c-7", "c-8"}
	a, err := svc.Create(ctx, newAuto("job-1", crew...))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range crew {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, err := svc.Confirm(ctx, a.ID, id)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	final, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, final.IsConfirmed)
	assert.ElementsMatch(t, crew, final.ConfirmedBy)
}

func TestService_StoreFailureIsUpstream(t *testing.T) {
	svc := NewService(&brokenStore{MemoryStore: *NewMemoryStore()}, logger.NewNoOpLogger())

	_, err := svc.Get(context.Background(), "a-1")
	assert.ErrorIs(t, err, errors.ErrUpstreamFailure)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	a := &CrewAssignment{ID: "a-1", JobID: "job-1", CrewIDs: []string{"c-1"}, LeadID: "c-1"}
	require.NoError(t, store.Create(ctx, a))

	got, err := store.Get(ctx, "a-1")
	require.NoError(t, err)
	got.CrewIDs[0] = "tampered"

	again, err := store.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", again.CrewIDs[0])
}
