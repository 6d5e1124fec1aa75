package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manasvi0103/ai-blog-platform/pkg/eventbus"
	"github.com/manasvi0103/ai-blog-platform/pkg/events"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// ConnectionTester runs the CMS connectivity self-test.
type ConnectionTester interface {
	TestConnection(ctx context.Context, tenantID string) *models.ConnectionResult
}

// Connection runs connectivity self-tests and stores their outcome on the
// tenant config. It is the only writer of a tenant's connection status.
type Connection struct {
	persistence persistence.Persistence
	tester      ConnectionTester
	events      eventbus.EventPublisher
	logger      *slog.Logger
}

// NewConnection creates the connection service. publisher may be nil.
func NewConnection(
	logger *slog.Logger,
	persistence persistence.Persistence,
	tester ConnectionTester,
	publisher eventbus.EventPublisher,
) *Connection {
	return &Connection{
		persistence: persistence,
		tester:      tester,
		events:      publisher,
		logger:      logger.With("module", "connection"),
	}
}

// Test checks the CMS connection of tenantID, or of the default credentials
// when tenantID is empty.
func (c *Connection) Test(ctx context.Context, tenantID string) *models.ConnectionResult {
	result := c.tester.TestConnection(ctx, tenantID)
	logger := c.logger.With("tenant_id", tenantID)

	if tenantID != "" && result.Source != models.CredentialSourceDefault {
		status := models.ConnectionStatusFailed
		if result.Success {
			status = models.ConnectionStatusConnected
		}

		err := c.persistence.TenantConfigs().UpdateConnectionStatus(ctx, tenantID, status, result.TestedAt)

		switch {
		case persistence.IsTenantConfigNotFound(err):
			logger.DebugContext(ctx, "No tenant config to record connection status on")
		case err != nil:
			logger.ErrorContext(ctx, "Failed to record connection status", "error", err)
		}
	}

	if tenantID != "" && c.events != nil {
		if err := c.events.Publish(ctx, tenantID, events.NewConnectionTested(result)); err != nil {
			logger.ErrorContext(ctx, "Failed to publish event", "event_type", events.ConnectionTestedEvent, "error", err)
		}
	}

	return result
}

// TestAll tests every active tenant in turn.
func (c *Connection) TestAll(ctx context.Context) ([]*models.ConnectionResult, error) {
	tenants, err := c.persistence.TenantConfigs().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tenants: %w", err)
	}

	results := make([]*models.ConnectionResult, 0, len(tenants))
	failed := 0

	for _, tenant := range tenants {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		result := c.Test(ctx, tenant.TenantID)
		if !result.Success {
			failed++
		}

		results = append(results, result)
	}

	c.logger.InfoContext(ctx, "Connection self-test finished", "tenants", len(results), "failed", failed)

	return results, nil
}
