package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		draftErr := persistence.NewDraftError("GetByID", "draft-123", persistence.ErrDraftNotFound)
		tenantErr := persistence.NewTenantError("GetByTenantID", "acme", persistence.ErrTenantConfigNotFound)
		recordErr := persistence.NewPublishRecordError("GetByDraftID", "draft-123", persistence.ErrPublishRecordNotFound)

		assert.True(t, persistence.IsDraftNotFound(draftErr))
		assert.True(t, persistence.IsTenantConfigNotFound(tenantErr))
		assert.True(t, persistence.IsPublishRecordNotFound(recordErr))
		assert.False(t, persistence.IsDraftNotFound(tenantErr))

		assert.True(t, errors.Is(fmt.Errorf("load: %w", draftErr), persistence.ErrDraftNotFound))
	})

	t.Run("record error contains context", func(t *testing.T) {
		err := persistence.NewDraftError("Commit", "draft-123", persistence.ErrDraftNotFound)

		assert.Contains(t, err.Error(), "Commit")
		assert.Contains(t, err.Error(), "draft draft-123")
		assert.Contains(t, err.Error(), "draft not found")
	})

	t.Run("unwrap exposes cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := persistence.NewPublishRecordError("Commit", "draft-1", cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cause, errors.Unwrap(err))
	})
}
