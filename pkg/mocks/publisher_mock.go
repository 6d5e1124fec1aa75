package mocks

import (
	"context"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/rehost"
	"github.com/stretchr/testify/mock"
)

// MockDirectPublisher is a mock implementation of the direct CMS publisher.
type MockDirectPublisher struct {
	mock.Mock
}

func (m *MockDirectPublisher) CreateDraft(ctx context.Context, payload *models.PublishPayload, tenantID string) *models.PublishResult {
	args := m.Called(ctx, payload, tenantID)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*models.PublishResult)
}

func (m *MockDirectPublisher) TestConnection(ctx context.Context, tenantID string) *models.ConnectionResult {
	args := m.Called(ctx, tenantID)

	return args.Get(0).(*models.ConnectionResult)
}

// MockRelayPublisher is a mock implementation of the relay webhook publisher.
type MockRelayPublisher struct {
	mock.Mock
}

func (m *MockRelayPublisher) Enabled() bool {
	args := m.Called()

	return args.Bool(0)
}

func (m *MockRelayPublisher) CreateWordPressDraft(
	ctx context.Context,
	payload *models.PublishPayload,
	tenantID string,
) *models.PublishResult {
	args := m.Called(ctx, payload, tenantID)
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(*models.PublishResult)
}

// MockCredentialResolver is a mock implementation of the CMS credential resolver.
type MockCredentialResolver struct {
	mock.Mock
}

func (m *MockCredentialResolver) Resolve(ctx context.Context, tenantID string) (*models.Credentials, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Credentials), args.Error(1)
}

// MockContentRehoster is a mock implementation of the content rehoster.
type MockContentRehoster struct {
	mock.Mock
}

func (m *MockContentRehoster) Rehost(ctx context.Context, markup string, creds *models.Credentials) *rehost.Report {
	args := m.Called(ctx, markup, creds)

	return args.Get(0).(*rehost.Report)
}
