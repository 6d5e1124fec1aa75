// Package scheduler runs the periodic CMS connectivity self-test.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/robfig/cron/v3"
)

const defaultRunTimeout = 10 * time.Minute

var (
	ErrScheduleRequired = errors.New("monitor schedule is required")
	ErrAlreadyStarted   = errors.New("monitor already started")
)

// SelfTester tests the CMS connection of every active tenant.
type SelfTester interface {
	TestAll(ctx context.Context) ([]*models.ConnectionResult, error)
}

// Monitor runs SelfTester on a cron schedule. Overlapping runs are skipped.
type Monitor struct {
	schedule   string
	tester     SelfTester
	runTimeout time.Duration
	logger     *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
	ctx  context.Context
}

// NewMonitor validates schedule and creates a Monitor. Descriptors such as
// "@every 6h" are accepted.
func NewMonitor(logger *slog.Logger, schedule string, tester SelfTester) (*Monitor, error) {
	if schedule == "" {
		return nil, ErrScheduleRequired
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	return &Monitor{
		schedule:   schedule,
		tester:     tester,
		runTimeout: defaultRunTimeout,
		logger:     logger.With("module", "connection_monitor", "schedule", schedule),
	}, nil
}

// Start schedules the self-test. Runs stop being scheduled when ctx ends.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron != nil {
		return ErrAlreadyStarted
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(m.logger.Handler(), slog.LevelInfo))

	m.ctx = ctx
	m.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	id, err := m.cron.AddFunc(m.schedule, m.run)
	if err != nil {
		m.cron = nil

		return fmt.Errorf("failed to add cron job: %w", err)
	}

	m.logger.InfoContext(ctx, "Starting connection monitor", "entry_id", id)
	m.cron.Start()

	go func() {
		<-ctx.Done()
		m.stop()
	}()

	return nil
}

// Stop stops scheduling and waits for a running self-test, or for ctx.
func (m *Monitor) Stop(ctx context.Context) error {
	done := m.stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) stop() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		return ctx
	}

	done := m.cron.Stop()
	m.cron = nil

	return done
}

// RunOnce runs a single self-test synchronously.
func (m *Monitor) RunOnce(ctx context.Context) ([]*models.ConnectionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.runTimeout)
	defer cancel()

	start := time.Now()

	results, err := m.tester.TestAll(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Connection self-test failed", "error", err)

		return results, err
	}

	failed := 0

	for _, result := range results {
		if !result.Success {
			failed++

			m.logger.WarnContext(ctx, "Tenant CMS connection failing",
				"tenant_id", result.TenantID,
				"error_kind", result.ErrorKind,
			)
		}
	}

	m.logger.InfoContext(ctx, "Connection self-test completed",
		"tenants", len(results),
		"failed", failed,
		"duration", time.Since(start),
	)

	return results, nil
}

func (m *Monitor) run() {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	_, _ = m.RunOnce(ctx)
}
