package events

import (
	"encoding/json"
	"testing"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraftPublished(t *testing.T) {
	result := models.Succeeded(models.DeliveryMethodRelay, 42, "https://acme.example/edit", "https://acme.example/preview")
	result.Attempts = []models.DeliveryAttempt{
		{Method: models.DeliveryMethodDirect, ErrorKind: models.ErrorKindRemoteUnreachable},
		{Method: models.DeliveryMethodRelay, Success: true},
	}

	event := NewDraftPublished("draft-1", "acme", result)

	require.NoError(t, event.Validate())
	assert.Equal(t, DraftPublishedEvent, event.GetType())
	assert.Equal(t, DraftPublishedEvent, event.Type)
	assert.Equal(t, "acme", event.TenantID)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Inconsistent)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cms_post_id":42`)
	assert.Contains(t, string(data), `"delivery_method":"relay"`)
}

func TestNewDraftPublished_FlagsInconsistency(t *testing.T) {
	result := models.Succeeded(models.DeliveryMethodDirect, 7, "", "")
	result.Inconsistency = &models.Inconsistency{Kind: models.ErrorKindLocalPersistenceFailed}

	event := NewDraftPublished("draft-1", "acme", result)

	assert.True(t, event.Inconsistent)
}

func TestEvents_Validate(t *testing.T) {
	tests := []struct {
		name  string
		event interface{ Validate() error }
		err   error
	}{
		{"published without draft", &DraftPublished{CMSPostID: 1}, ErrMissingDraftID},
		{"published without post", &DraftPublished{DraftID: "d"}, ErrMissingPostID},
		{"failed without draft", &DraftPublishFailed{ErrorKind: models.ErrorKindAuthFailed}, ErrMissingDraftID},
		{"failed without kind", &DraftPublishFailed{DraftID: "d"}, ErrMissingKind},
		{"connection without tenant", &ConnectionTested{}, ErrMissingTenantID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.event.Validate(), tt.err)
		})
	}
}

func TestNewDraftPublishFailed(t *testing.T) {
	result := models.Failed(models.DeliveryMethodFailed, models.NewStatusError(models.ErrorKindAuthFailed, "cms.CreateDraft", 401, "nope"))

	event := NewDraftPublishFailed("draft-1", "acme", result)

	require.NoError(t, event.Validate())
	assert.Equal(t, models.ErrorKindAuthFailed, event.ErrorKind)
	assert.Equal(t, DraftPublishFailedEvent, event.GetType())
}

func TestNewConnectionTested(t *testing.T) {
	event := NewConnectionTested(&models.ConnectionResult{
		TenantID:  "acme",
		Success:   false,
		ErrorKind: models.ErrorKindAuthFailed,
		Message:   "Authenticated request was refused",
	})

	require.NoError(t, event.Validate())
	assert.Equal(t, "acme", event.TenantID)
	assert.Equal(t, ConnectionTestedEvent, event.GetType())
}
