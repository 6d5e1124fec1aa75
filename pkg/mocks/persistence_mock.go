package mocks

import (
	"context"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	Tenants *MockTenantConfigRepository
	Draft   *MockDraftRepository
	Records *MockPublishRecordRepository
}

// NewMockPersistence creates a MockPersistence with fresh repository mocks.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		Tenants: &MockTenantConfigRepository{},
		Draft:   &MockDraftRepository{},
		Records: &MockPublishRecordRepository{},
	}
}

func (m *MockPersistence) TenantConfigs() persistence.TenantConfigRepository {
	return m.Tenants
}

func (m *MockPersistence) Drafts() persistence.DraftRepository {
	return m.Draft
}

func (m *MockPersistence) PublishRecords() persistence.PublishRecordRepository {
	return m.Records
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockTenantConfigRepository is a mock implementation of persistence.TenantConfigRepository interface.
type MockTenantConfigRepository struct {
	mock.Mock
}

func (m *MockTenantConfigRepository) GetByTenantID(ctx context.Context, tenantID string) (*models.TenantCMSConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.TenantCMSConfig), args.Error(1)
}

func (m *MockTenantConfigRepository) ListActive(ctx context.Context) ([]*models.TenantCMSConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.TenantCMSConfig), args.Error(1)
}

func (m *MockTenantConfigRepository) Save(ctx context.Context, config *models.TenantCMSConfig) error {
	args := m.Called(ctx, config)

	return args.Error(0)
}

func (m *MockTenantConfigRepository) UpdateConnectionStatus(
	ctx context.Context,
	tenantID string,
	status models.ConnectionStatus,
	testedAt time.Time,
) error {
	args := m.Called(ctx, tenantID, status, testedAt)

	return args.Error(0)
}

// MockDraftRepository is a mock implementation of persistence.DraftRepository interface.
type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) GetByID(ctx context.Context, draftID string) (*models.Draft, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Draft), args.Error(1)
}

func (m *MockDraftRepository) Save(ctx context.Context, draft *models.Draft) error {
	args := m.Called(ctx, draft)

	return args.Error(0)
}

// MockPublishRecordRepository is a mock implementation of persistence.PublishRecordRepository interface.
type MockPublishRecordRepository struct {
	mock.Mock
}

func (m *MockPublishRecordRepository) GetByDraftID(ctx context.Context, draftID string) (*models.DraftPublishRecord, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.DraftPublishRecord), args.Error(1)
}

func (m *MockPublishRecordRepository) Commit(
	ctx context.Context,
	record *models.DraftPublishRecord,
	draftStatus models.DraftStatus,
) error {
	args := m.Called(ctx, record, draftStatus)

	return args.Error(0)
}

func (m *MockPublishRecordRepository) RecordFailure(
	ctx context.Context,
	draftID string,
	kind models.ErrorKind,
	attemptedAt time.Time,
) error {
	args := m.Called(ctx, draftID, kind, attemptedAt)

	return args.Error(0)
}
