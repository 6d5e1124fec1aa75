// Package persistence provides the data storage abstraction layer for tenants, drafts and publish records.
package persistence

import (
	"context"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
)

// Persistence groups the repositories used by the publish pipeline.
type Persistence interface {
	TenantConfigs() TenantConfigRepository
	Drafts() DraftRepository
	PublishRecords() PublishRecordRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// TenantConfigRepository stores per-tenant CMS configuration.
type TenantConfigRepository interface {
	GetByTenantID(ctx context.Context, tenantID string) (*models.TenantCMSConfig, error)
	ListActive(ctx context.Context) ([]*models.TenantCMSConfig, error)
	Save(ctx context.Context, config *models.TenantCMSConfig) error
	// UpdateConnectionStatus records the outcome of a connectivity self-test.
	UpdateConnectionStatus(ctx context.Context, tenantID string, status models.ConnectionStatus, testedAt time.Time) error
}

// DraftRepository stores drafts together with their content blocks.
type DraftRepository interface {
	GetByID(ctx context.Context, draftID string) (*models.Draft, error)
	Save(ctx context.Context, draft *models.Draft) error
}

// PublishRecordRepository stores the single publish record of each draft.
type PublishRecordRepository interface {
	GetByDraftID(ctx context.Context, draftID string) (*models.DraftPublishRecord, error)
	// Commit writes record and sets the parent draft's status in one step.
	// Either both writes happen or neither does.
	Commit(ctx context.Context, record *models.DraftPublishRecord, draftStatus models.DraftStatus) error
	// RecordFailure marks the record publish-failed without touching any
	// previously stored CMS post reference.
	RecordFailure(ctx context.Context, draftID string, kind models.ErrorKind, attemptedAt time.Time) error
}
