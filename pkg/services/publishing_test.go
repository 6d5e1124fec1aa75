package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/manasvi0103/ai-blog-platform/pkg/events"
	"github.com/manasvi0103/ai-blog-platform/pkg/mocks"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/manasvi0103/ai-blog-platform/pkg/rehost"
	"github.com/manasvi0103/ai-blog-platform/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publishingFixture struct {
	store    *mocks.MockPersistence
	rehoster *mocks.MockContentRehoster
	resolver *mocks.MockCredentialResolver
	direct   *mocks.MockDirectPublisher
	relay    *mocks.MockRelayPublisher
	bus      *mocks.MockEventBus
	draft    *models.Draft
	creds    *models.Credentials
}

func newPublishingFixture(t *testing.T) *publishingFixture {
	t.Helper()

	f := &publishingFixture{
		store:    mocks.NewMockPersistence(),
		rehoster: &mocks.MockContentRehoster{},
		resolver: &mocks.MockCredentialResolver{},
		direct:   &mocks.MockDirectPublisher{},
		relay:    &mocks.MockRelayPublisher{},
		bus:      &mocks.MockEventBus{},
		draft:    testutil.CreateTestDraft(testutil.WithTenant("acme")),
		creds: &models.Credentials{
			TenantID:    "acme",
			BaseURL:     "https://acme.example",
			Username:    "editor",
			AppPassword: "secret",
			Source:      models.CredentialSourceTenant,
		},
	}

	f.store.Draft.On("GetByID", mock.Anything, f.draft.ID).Return(f.draft, nil).Maybe()
	f.resolver.On("Resolve", mock.Anything, "acme").Return(f.creds, nil).Maybe()
	f.rehoster.On("Rehost", mock.Anything, mock.Anything, f.creds).Return(&rehost.Report{
		Markup: "<h1>Solar ROI</h1><p>rehosted</p>",
		Images: []rehost.Image{{SourceURL: "https://img.example/a.png", Outcome: rehost.OutcomeRehosted}},
	}).Maybe()

	t.Cleanup(func() {
		f.store.Draft.AssertExpectations(t)
		f.store.Records.AssertExpectations(t)
		f.direct.AssertExpectations(t)
		f.relay.AssertExpectations(t)
		f.bus.AssertExpectations(t)
	})

	return f
}

func (f *publishingFixture) service(cfg PublishingConfig) *Publishing {
	return NewPublishing(slog.Default(), nil, f.store, f.rehoster, f.resolver, f.direct, f.relay, f.bus, cfg)
}

func (f *publishingFixture) relayEnabled(enabled bool) {
	f.relay.On("Enabled").Return(enabled)
}

func (f *publishingFixture) expectEvent(eventType events.EventType) {
	f.bus.On("Publish", mock.Anything, f.draft.ID, mock.MatchedBy(func(event any) bool {
		typed, ok := event.(interface{ GetType() events.EventType })

		return ok && typed.GetType() == eventType
	})).Return(nil).Once()
}

func authFailure(method models.DeliveryMethod) *models.PublishResult {
	return models.Failed(method, models.NewStatusError(models.ErrorKindAuthFailed, "cms.CreateDraft", 401, "invalid"))
}

func directSuccess() *models.PublishResult {
	return models.Succeeded(models.DeliveryMethodDirect, 42,
		"https://acme.example/wp-admin/post.php?post=42&action=edit",
		"https://acme.example/?p=42&preview=true")
}

func assertResultShape(t *testing.T, result *models.PublishResult) {
	t.Helper()

	assert.Equal(t, result.Success, result.CMSPostID != 0, "success must match presence of a post id")
	assert.Equal(t, result.Success, result.ErrorKind == "", "error kind must be set exactly on failure")
}

func TestPublish_DirectSuccessCommitsRecord(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(false)

	f.direct.On("CreateDraft", mock.Anything, mock.MatchedBy(func(p *models.PublishPayload) bool {
		return p.Title == "Solar ROI" && p.Content == "<h1>Solar ROI</h1><p>rehosted</p>" && p.FocusKeyword == "solar"
	}), "acme").Return(directSuccess()).Once()

	f.store.Records.On("Commit", mock.Anything, mock.MatchedBy(func(r *models.DraftPublishRecord) bool {
		return r.DraftID == f.draft.ID &&
			r.CMSPostID == 42 &&
			r.DeliveryMethod == models.DeliveryMethodDirect &&
			r.Status == models.PublishRecordDraftCreated &&
			!r.LastAttemptedAt.IsZero()
	}), models.DraftStatusPublished).Return(nil).Once()
	f.expectEvent(events.DraftPublishedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst, Fallback: true}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assertResultShape(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, int64(42), result.CMSPostID)
	assert.Equal(t, models.DeliveryMethodDirect, result.DeliveryMethod)
	assert.Nil(t, result.Inconsistency)
	require.Len(t, result.Attempts, 1)
	assert.True(t, result.Attempts[0].Success)
	require.NotNil(t, result.Media)
	assert.Equal(t, 1, result.Media.Rehosted)
}

func TestPublish_AuthFailureLeavesRecordUntouched(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(false)

	f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(authFailure(models.DeliveryMethodDirect)).Once()
	f.expectEvent(events.DraftPublishFailedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst, Fallback: true}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assertResultShape(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, models.ErrorKindAuthFailed, result.ErrorKind)
	assert.Equal(t, models.DeliveryMethodFailed, result.DeliveryMethod)
	f.store.Records.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
	f.store.Records.AssertNotCalled(t, "RecordFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_RelayOfflineFallsBackToDirect(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(true)

	offline := models.Failed(models.DeliveryMethodRelay,
		models.NewError(models.ErrorKindRelayOffline, "relay.CreateWordPressDraft", context.DeadlineExceeded))

	f.relay.On("CreateWordPressDraft", mock.Anything, mock.Anything, "acme").Return(offline).Once()
	f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(directSuccess()).Once()
	f.store.Records.On("Commit", mock.Anything, mock.Anything, models.DraftStatusPublished).Return(nil).Once()
	f.expectEvent(events.DraftPublishedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderRelayFirst, Fallback: true}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assertResultShape(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, models.DeliveryMethodDirect, result.DeliveryMethod)
	assert.Empty(t, result.ErrorKind)
	require.Len(t, result.Attempts, 2)
	assert.Equal(t, models.DeliveryMethodRelay, result.Attempts[0].Method)
	assert.Equal(t, models.ErrorKindRelayOffline, result.Attempts[0].ErrorKind)
	assert.True(t, result.Attempts[1].Success)
}

func TestPublish_LocalFailureAfterRemoteSuccessIsFlagged(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(false)

	f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(directSuccess()).Once()
	f.store.Records.On("Commit", mock.Anything, mock.Anything, models.DraftStatusPublished).
		Return(errors.New("connection reset")).Once()
	f.expectEvent(events.DraftPublishedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst, Fallback: true}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assertResultShape(t, result)
	assert.True(t, result.Success)
	assert.Empty(t, result.ErrorKind)
	require.NotNil(t, result.Inconsistency)
	assert.Equal(t, models.ErrorKindLocalPersistenceFailed, result.Inconsistency.Kind)
	assert.Contains(t, result.Inconsistency.Message, "post 42")
	assert.Contains(t, result.Inconsistency.Message, "post.php?post=42")
	assert.Contains(t, result.Inconsistency.Message, "Do not publish this draft again")
}

func TestPublish_RelaySuccessWithoutLinksUsesTenantSite(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(true)

	f.relay.On("CreateWordPressDraft", mock.Anything, mock.Anything, "acme").
		Return(models.Succeeded(models.DeliveryMethodRelay, 77, "", "")).Once()
	f.store.Records.On("Commit", mock.Anything, mock.MatchedBy(func(r *models.DraftPublishRecord) bool {
		return r.CMSPostID == 77 && r.EditURL == "https://acme.example/wp-admin/post.php?post=77&action=edit"
	}), models.DraftStatusPublished).Return(nil).Once()
	f.expectEvent(events.DraftPublishedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderRelayOnly}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assertResultShape(t, result)
	require.True(t, result.Success, result.ErrorDetail)
	assert.Equal(t, "https://acme.example/wp-admin/post.php?post=77&action=edit", result.EditURL)
	assert.Equal(t, "https://acme.example/?p=77&preview=true", result.PreviewURL)
}

func TestPublish_RelaySuccessWithoutLinksOrSiteIsRejected(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(true)

	f.resolver = &mocks.MockCredentialResolver{}
	f.resolver.On("Resolve", mock.Anything, "acme").
		Return(nil, models.NewError(models.ErrorKindConfigMissing, "cms.Resolve", errors.New("no credentials available")))

	f.relay.On("CreateWordPressDraft", mock.Anything, mock.Anything, "acme").
		Return(models.Succeeded(models.DeliveryMethodRelay, 77, "", "")).Once()
	f.expectEvent(events.DraftPublishFailedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderRelayOnly}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assertResultShape(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, models.ErrorKindRelayRejected, result.ErrorKind)
	assert.Contains(t, result.ErrorDetail, "post 77")
	f.store.Records.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_ReportsMostSpecificFailure(t *testing.T) {
	tests := []struct {
		name   string
		direct *models.PublishResult
		relay  *models.PublishResult
		want   models.ErrorKind
	}{
		{
			name:   "rejection beats outage",
			direct: models.Failed(models.DeliveryMethodDirect, models.NewError(models.ErrorKindRemoteUnreachable, "cms", nil)),
			relay:  models.Failed(models.DeliveryMethodRelay, models.NewStatusError(models.ErrorKindRelayRejected, "relay", 500, "boom")),
			want:   models.ErrorKindRelayRejected,
		},
		{
			name:   "credentials beat outage",
			direct: authFailure(models.DeliveryMethodDirect),
			relay:  models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, "relay", nil)),
			want:   models.ErrorKindAuthFailed,
		},
		{
			name:   "ties keep the first attempt",
			direct: models.Failed(models.DeliveryMethodDirect, models.NewError(models.ErrorKindRemoteUnreachable, "cms", nil)),
			relay:  models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, "relay", nil)),
			want:   models.ErrorKindRemoteUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPublishingFixture(t)
			f.relayEnabled(true)

			f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(tt.direct).Once()
			f.relay.On("CreateWordPressDraft", mock.Anything, mock.Anything, "acme").Return(tt.relay).Once()
			f.expectEvent(events.DraftPublishFailedEvent)

			result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst, Fallback: true}).
				Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

			assertResultShape(t, result)
			assert.Equal(t, tt.want, result.ErrorKind)
			assert.Len(t, result.Attempts, 2)
		})
	}
}

func TestPublish_InvalidPayloadDoesNotFallBack(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(true)

	invalid := models.Failed(models.DeliveryMethodDirect,
		models.NewError(models.ErrorKindInvalidRequest, "cms.CreateDraft", errors.New("title is required")))

	f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(invalid).Once()
	f.expectEvent(events.DraftPublishFailedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst, Fallback: true}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assert.Equal(t, models.ErrorKindInvalidRequest, result.ErrorKind)
	assert.Len(t, result.Attempts, 1)
	f.relay.AssertNotCalled(t, "CreateWordPressDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_FallbackDisabledTriesPrimaryOnly(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(true)

	offline := models.Failed(models.DeliveryMethodRelay, models.NewError(models.ErrorKindRelayOffline, "relay", nil))
	f.relay.On("CreateWordPressDraft", mock.Anything, mock.Anything, "acme").Return(offline).Once()
	f.expectEvent(events.DraftPublishFailedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderRelayFirst}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assert.Equal(t, models.ErrorKindRelayOffline, result.ErrorKind)
	f.direct.AssertNotCalled(t, "CreateDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_RecordsFailedAttemptWhenEnabled(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(false)

	f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(authFailure(models.DeliveryMethodDirect)).Once()
	f.store.Records.On("RecordFailure", mock.Anything, f.draft.ID, models.ErrorKindAuthFailed, mock.Anything).Return(nil).Once()
	f.expectEvent(events.DraftPublishFailedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst, RecordFailedAttempts: true}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assert.False(t, result.Success)
}

func TestPublish_UnknownDraft(t *testing.T) {
	f := newPublishingFixture(t)
	f.store.Draft.On("GetByID", mock.Anything, "missing").
		Return(nil, persistence.NewDraftError("GetByID", "missing", persistence.ErrDraftNotFound)).Once()

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst}).
		Publish(context.Background(), PublishRequest{DraftID: "missing"})

	assertResultShape(t, result)
	assert.Equal(t, models.ErrorKindDraftNotFound, result.ErrorKind)
	f.direct.AssertNotCalled(t, "CreateDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_EmptyDraftID(t *testing.T) {
	f := newPublishingFixture(t)

	result := f.service(PublishingConfig{}).Publish(context.Background(), PublishRequest{})

	assert.Equal(t, models.ErrorKindInvalidRequest, result.ErrorKind)
}

func TestPublish_NoSelectedBlocksIsInvalid(t *testing.T) {
	f := newPublishingFixture(t)
	for _, block := range f.draft.Blocks {
		block.Selected = false
	}

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assert.Equal(t, models.ErrorKindInvalidRequest, result.ErrorKind)
	f.direct.AssertNotCalled(t, "CreateDraft", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_SkipsRehostWithoutCredentials(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(true)

	f.resolver = &mocks.MockCredentialResolver{}
	f.resolver.On("Resolve", mock.Anything, "acme").
		Return(nil, models.NewError(models.ErrorKindConfigMissing, "cms.Resolve", errors.New("no credentials available")))

	relayed := models.Succeeded(models.DeliveryMethodRelay, 7, "https://acme.example/edit", "")
	f.relay.On("CreateWordPressDraft", mock.Anything, mock.MatchedBy(func(p *models.PublishPayload) bool {
		return p.Content != "" && p.Content != "<h1>Solar ROI</h1><p>rehosted</p>"
	}), "acme").Return(relayed).Once()
	f.store.Records.On("Commit", mock.Anything, mock.Anything, models.DraftStatusPublished).Return(nil).Once()
	f.expectEvent(events.DraftPublishedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderRelayOnly}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assert.True(t, result.Success)
	assert.Nil(t, result.Media)
	f.rehoster.AssertNotCalled(t, "Rehost", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublish_SuppliedContentSkipsAssembly(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(false)

	f.direct.On("CreateDraft", mock.Anything, mock.MatchedBy(func(p *models.PublishPayload) bool {
		return p.Title == "Edited title"
	}), "acme").Return(directSuccess()).Once()
	f.store.Records.On("Commit", mock.Anything, mock.Anything, models.DraftStatusPublished).Return(nil).Once()
	f.expectEvent(events.DraftPublishedEvent)

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst}).
		Publish(context.Background(), PublishRequest{
			DraftID: f.draft.ID,
			Content: &models.AssembledDocument{Title: "Edited title", BodyMarkup: "<p>edited</p>"},
		})

	assert.True(t, result.Success)
	f.rehoster.AssertCalled(t, "Rehost", mock.Anything, "<p>edited</p>", f.creds)
}

func TestPublish_EventFailureDoesNotChangeResult(t *testing.T) {
	f := newPublishingFixture(t)
	f.relayEnabled(false)

	f.direct.On("CreateDraft", mock.Anything, mock.Anything, "acme").Return(directSuccess()).Once()
	f.store.Records.On("Commit", mock.Anything, mock.Anything, models.DraftStatusPublished).Return(nil).Once()
	f.bus.On("Publish", mock.Anything, f.draft.ID, mock.Anything).Return(errors.New("broker down")).Once()

	result := f.service(PublishingConfig{Order: models.DeliveryOrderDirectFirst}).
		Publish(context.Background(), PublishRequest{DraftID: f.draft.ID})

	assert.True(t, result.Success)
	assert.Nil(t, result.Inconsistency)
}

func TestCheckPublishable(t *testing.T) {
	f := newPublishingFixture(t)
	service := f.service(PublishingConfig{})

	f.store.Records.On("GetByDraftID", mock.Anything, "fresh").
		Return(nil, persistence.NewPublishRecordError("GetByDraftID", "fresh", persistence.ErrPublishRecordNotFound)).Once()
	f.store.Records.On("GetByDraftID", mock.Anything, "failed").
		Return(&models.DraftPublishRecord{DraftID: "failed", Status: models.PublishRecordPublishFailed}, nil).Once()
	f.store.Records.On("GetByDraftID", mock.Anything, "done").
		Return(&models.DraftPublishRecord{DraftID: "done", CMSPostID: 42, Status: models.PublishRecordDraftCreated}, nil).Once()

	require.NoError(t, service.CheckPublishable(context.Background(), "fresh"))
	require.NoError(t, service.CheckPublishable(context.Background(), "failed"))

	err := service.CheckPublishable(context.Background(), "done")
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
	assert.Contains(t, err.Error(), "CMS post 42")
}

func TestPreview(t *testing.T) {
	f := newPublishingFixture(t)

	preview, err := f.service(PublishingConfig{}).Preview(context.Background(), f.draft.ID)
	require.NoError(t, err)

	assert.Equal(t, "Solar ROI", preview.Document.Title)
	assert.Equal(t, 10, preview.Metrics.WordCount)
	assert.InDelta(t, 1.0, preview.Metrics.CompletionPercent, 0.001)
}
