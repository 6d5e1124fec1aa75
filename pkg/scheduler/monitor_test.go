package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTester struct {
	calls   atomic.Int32
	results []*models.ConnectionResult
	err     error
}

func (f *fakeTester) TestAll(context.Context) ([]*models.ConnectionResult, error) {
	f.calls.Add(1)

	return f.results, f.err
}

func TestNewMonitor_Validation(t *testing.T) {
	_, err := NewMonitor(slog.Default(), "", &fakeTester{})
	require.ErrorIs(t, err, ErrScheduleRequired)

	_, err = NewMonitor(slog.Default(), "every tuesday", &fakeTester{})
	require.Error(t, err)

	for _, schedule := range []string{"@every 6h", "0 */6 * * *", "@hourly"} {
		_, err = NewMonitor(slog.Default(), schedule, &fakeTester{})
		assert.NoError(t, err, schedule)
	}
}

func TestMonitor_RunOnce(t *testing.T) {
	tester := &fakeTester{results: []*models.ConnectionResult{
		{TenantID: "acme", Success: true},
		{TenantID: "globex", ErrorKind: models.ErrorKindAuthFailed},
	}}

	monitor, err := NewMonitor(slog.Default(), "@every 6h", tester)
	require.NoError(t, err)

	results, err := monitor.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, int32(1), tester.calls.Load())
}

func TestMonitor_RunOncePropagatesError(t *testing.T) {
	tester := &fakeTester{err: errors.New("db down")}

	monitor, err := NewMonitor(slog.Default(), "@every 6h", tester)
	require.NoError(t, err)

	_, err = monitor.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestMonitor_StartRunsOnSchedule(t *testing.T) {
	tester := &fakeTester{}

	monitor, err := NewMonitor(slog.Default(), "@every 1s", tester)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, monitor.Start(ctx))
	require.ErrorIs(t, monitor.Start(ctx), ErrAlreadyStarted)

	assert.Eventually(t, func() bool { return tester.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()

	require.NoError(t, monitor.Stop(stopCtx))
}
