package crewbalanceworkload

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"crew-workers/internal/common/errors"
	"crew-workers/internal/common/logger"
	"crew-workers/internal/crew/balancing"
	"crew-workers/internal/crew/cache"
	"crew-workers/internal/crew/workload"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) BalanceReport(ctx context.Context, result *balancing.Result) error {
	return m.Called(ctx, result).Error(0)
}

type countingBalancer struct {
	inner *balancing.Reporter
	calls int
}

func (c *countingBalancer) BalanceWorkload(ctx context.Context, weekStart time.Time) (*balancing.Result, error) {
	c.calls++
	return c.inner.BalanceWorkload(ctx, weekStart)
}

func setup(t *testing.T) (*workload.Ledger, *countingBalancer) {
	t.Helper()
	log := logger.NewTestLogger(t)
	ledger := workload.NewLedger(workload.NewMemoryStore(), workload.DefaultPolicy(), log)
	for crewID, jobs := range map[string]int{"c-1": 6, "c-2": 3, "c-3": 1} {
		for i := 0; i < jobs; i++ {
			_, err := ledger.RecordJob(context.Background(), crewID, monday, 4, workload.StatusScheduled)
			require.NoError(t, err)
		}
	}
	return ledger, &countingBalancer{inner: balancing.NewReporter(ledger, nil, log)}
}

func TestHandler_Execute(t *testing.T) {
	_, balancer := setup(t)
	sender := &mockSender{}
	sender.On("BalanceReport", mock.Anything, mock.Anything).Return(nil)
	h := NewHandler(LoadConfig(), balancer, sender, nil, logger.NewTestLogger(t), nil)

	out, err := h.Execute(context.Background(), &Input{WeekStart: "2024-03-13", SendReport: true})
	require.NoError(t, err)

	assert.True(t, monday.Equal(out.WeekStart))
	assert.InDelta(t, 10.0/3, out.AverageJobsPerCrew, 1e-9)
	assert.Equal(t, 1, out.OverloadedCount)
	assert.Equal(t, 1, out.UnderutilizedCount)
	assert.Len(t, out.CrewRecommendations, 3)
	assert.True(t, out.ReportSent)
	sender.AssertExpectations(t)
}

func TestHandler_Execute_ReportFailureIsNotFatal(t *testing.T) {
	_, balancer := setup(t)
	sender := &mockSender{}
	sender.On("BalanceReport", mock.Anything, mock.Anything).Return(stderrors.New("ses throttled"))

	out, err := NewHandler(LoadConfig(), balancer, sender, nil, logger.NewTestLogger(t), nil).
		Execute(context.Background(), &Input{WeekStart: "2024-03-11", SendReport: true})
	require.NoError(t, err)
	assert.False(t, out.ReportSent)
}

func TestHandler_Execute_NoReportRequested(t *testing.T) {
	_, balancer := setup(t)
	sender := &mockSender{}

	out, err := NewHandler(LoadConfig(), balancer, sender, nil, logger.NewTestLogger(t), nil).
		Execute(context.Background(), &Input{WeekStart: "2024-03-11"})
	require.NoError(t, err)
	assert.False(t, out.ReportSent)
	sender.AssertNotCalled(t, "BalanceReport", mock.Anything, mock.Anything)
}

func TestHandler_Execute_CacheDroppedByWorkloadWrite(t *testing.T) {
	log := logger.NewTestLogger(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.New(client, time.Minute, log)

	ledger := workload.NewLedger(workload.NewMemoryStore(), workload.DefaultPolicy(), log, workload.WithInvalidator(c))
	balancer := &countingBalancer{inner: balancing.NewReporter(ledger, nil, log)}
	h := NewHandler(LoadConfig(), balancer, nil, c, log, nil)
	ctx := context.Background()

	_, err := ledger.RecordJob(ctx, "c-1", monday, 2, workload.StatusScheduled)
	require.NoError(t, err)

	first, err := h.Execute(ctx, &Input{WeekStart: "2024-03-11"})
	require.NoError(t, err)
	_, err = h.Execute(ctx, &Input{WeekStart: "2024-03-11"})
	require.NoError(t, err)
	assert.Equal(t, 1, balancer.calls)
	assert.Len(t, first.CrewRecommendations, 1)

	_, err = ledger.CalculateWorkload(ctx, "c-2", monday)
	require.NoError(t, err)

	second, err := h.Execute(ctx, &Input{WeekStart: "2024-03-11"})
	require.NoError(t, err)
	assert.Equal(t, 2, balancer.calls)
	assert.Len(t, second.CrewRecommendations, 2)
}

func TestHandler_Execute_BadWeek(t *testing.T) {
	_, balancer := setup(t)

	_, err := NewHandler(LoadConfig(), balancer, nil, nil, logger.NewTestLogger(t), nil).
		Execute(context.Background(), &Input{WeekStart: "week 11"})
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Zero(t, balancer.calls)
}
