// Package events defines the publish lifecycle notifications emitted by the pipeline.
package events

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
)

type EventType string

// Topic carries every publish lifecycle event.
const Topic = "blogpublisher.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DraftPublishedEvent     EventType = "draft.published"
	DraftPublishFailedEvent EventType = "draft.publish_failed"
	ConnectionTestedEvent   EventType = "cms.connection_tested"
)

var (
	ErrMissingDraftID  = errors.New("draft_id is required")
	ErrMissingPostID   = errors.New("cms_post_id is required")
	ErrMissingKind     = errors.New("error_kind is required")
	ErrMissingTenantID = errors.New("tenant_id is required")
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TenantID  string         `json:"tenant_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, tenantID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
		Metadata:  make(map[string]any),
	}
}

// DraftPublished is emitted after a remote draft was created for a local draft.
type DraftPublished struct {
	BaseEvent

	DraftID        string                   `json:"draft_id"`
	CMSPostID      int64                    `json:"cms_post_id"`
	EditURL        string                   `json:"edit_url,omitempty"`
	PreviewURL     string                   `json:"preview_url,omitempty"`
	DeliveryMethod models.DeliveryMethod    `json:"delivery_method"`
	Attempts       []models.DeliveryAttempt `json:"attempts,omitempty"`
	Media          *models.MediaSummary     `json:"media,omitempty"`
	// Inconsistent is set when the local record could not be written.
	Inconsistent bool `json:"inconsistent,omitempty"`
}

func (e DraftPublished) GetType() EventType {
	return DraftPublishedEvent
}

func (e *DraftPublished) Validate() error {
	if e.DraftID == "" {
		return ErrMissingDraftID
	}

	if e.CMSPostID == 0 {
		return ErrMissingPostID
	}

	return nil
}

// NewDraftPublished builds the event from a successful result.
func NewDraftPublished(draftID, tenantID string, result *models.PublishResult) *DraftPublished {
	return &DraftPublished{
		BaseEvent:      NewBaseEvent(DraftPublishedEvent, tenantID),
		DraftID:        draftID,
		CMSPostID:      result.CMSPostID,
		EditURL:        result.EditURL,
		PreviewURL:     result.PreviewURL,
		DeliveryMethod: result.DeliveryMethod,
		Attempts:       result.Attempts,
		Media:          result.Media,
		Inconsistent:   result.Inconsistency != nil,
	}
}

// DraftPublishFailed is emitted when every configured delivery path failed.
type DraftPublishFailed struct {
	BaseEvent

	DraftID     string                   `json:"draft_id"`
	ErrorKind   models.ErrorKind         `json:"error_kind"`
	ErrorDetail string                   `json:"error_detail,omitempty"`
	Attempts    []models.DeliveryAttempt `json:"attempts,omitempty"`
}

func (e DraftPublishFailed) GetType() EventType {
	return DraftPublishFailedEvent
}

func (e *DraftPublishFailed) Validate() error {
	if e.DraftID == "" {
		return ErrMissingDraftID
	}

	if e.ErrorKind == "" {
		return ErrMissingKind
	}

	return nil
}

// NewDraftPublishFailed builds the event from a failed result.
func NewDraftPublishFailed(draftID, tenantID string, result *models.PublishResult) *DraftPublishFailed {
	return &DraftPublishFailed{
		BaseEvent:   NewBaseEvent(DraftPublishFailedEvent, tenantID),
		DraftID:     draftID,
		ErrorKind:   result.ErrorKind,
		ErrorDetail: result.ErrorDetail,
		Attempts:    result.Attempts,
	}
}

// ConnectionTested is emitted by the periodic CMS self-test.
type ConnectionTested struct {
	BaseEvent

	Success   bool                    `json:"success"`
	BaseURL   string                  `json:"base_url,omitempty"`
	Source    models.CredentialSource `json:"source,omitempty"`
	ErrorKind models.ErrorKind        `json:"error_kind,omitempty"`
	Message   string                  `json:"message"`
}

func (e ConnectionTested) GetType() EventType {
	return ConnectionTestedEvent
}

func (e *ConnectionTested) Validate() error {
	if e.TenantID == "" {
		return ErrMissingTenantID
	}

	return nil
}

// NewConnectionTested builds the event from a self-test result.
func NewConnectionTested(result *models.ConnectionResult) *ConnectionTested {
	return &ConnectionTested{
		BaseEvent: NewBaseEvent(ConnectionTestedEvent, result.TenantID),
		Success:   result.Success,
		BaseURL:   result.BaseURL,
		Source:    result.Source,
		ErrorKind: result.ErrorKind,
		Message:   result.Message,
	}
}
