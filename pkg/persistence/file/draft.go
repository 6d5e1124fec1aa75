package file

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// DraftRepository handles draft file operations. Blocks are stored inline with the draft.
type DraftRepository struct {
	store *Persistence
}

// GetByID retrieves a draft and its blocks.
func (r *DraftRepository) GetByID(_ context.Context, draftID string) (*models.Draft, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.get(draftID)
}

func (r *DraftRepository) get(draftID string) (*models.Draft, error) {
	var draft models.Draft

	err := r.store.read(draftsDir, draftID, &draft)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewDraftError("GetByID", draftID, persistence.ErrDraftNotFound)
		}

		return nil, persistence.NewDraftError("GetByID", draftID, err)
	}

	return &draft, nil
}

// Save creates or replaces a draft.
func (r *DraftRepository) Save(_ context.Context, draft *models.Draft) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}

	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}

	draft.UpdatedAt = now

	for _, block := range draft.Blocks {
		block.DraftID = draft.ID
	}

	err := r.store.write(draftsDir, draft.ID, draft)
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, err)
	}

	return nil
}
