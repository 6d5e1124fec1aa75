package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// PublishRecordRepository handles publish record file operations.
type PublishRecordRepository struct {
	store *Persistence
}

// GetByDraftID retrieves the publish record of a draft.
func (r *PublishRecordRepository) GetByDraftID(_ context.Context, draftID string) (*models.DraftPublishRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.get(draftID)
}

func (r *PublishRecordRepository) get(draftID string) (*models.DraftPublishRecord, error) {
	var record models.DraftPublishRecord

	err := r.store.read(publishRecordsDir, draftID, &record)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewPublishRecordError("GetByDraftID", draftID, persistence.ErrPublishRecordNotFound)
		}

		return nil, persistence.NewPublishRecordError("GetByDraftID", draftID, err)
	}

	return &record, nil
}

// Commit writes the record, then the draft status. A failed draft write
// restores the previous record.
func (r *PublishRecordRepository) Commit(_ context.Context, record *models.DraftPublishRecord, draftStatus models.DraftStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	draft, err := r.store.draftRepo.get(record.DraftID)
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	previous, err := r.get(record.DraftID)
	if err != nil && !persistence.IsPublishRecordNotFound(err) {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	record.UpdatedAt = time.Now().UTC()

	err = r.store.write(publishRecordsDir, record.DraftID, record)
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	draft.Status = draftStatus
	draft.UpdatedAt = record.UpdatedAt

	err = r.store.write(draftsDir, draft.ID, draft)
	if err == nil {
		return nil
	}

	rollbackErr := r.restore(record.DraftID, previous)
	if rollbackErr != nil {
		err = fmt.Errorf("%w (rollback failed: %w)", err, rollbackErr)
	}

	return persistence.NewPublishRecordError("Commit", record.DraftID, err)
}

func (r *PublishRecordRepository) restore(draftID string, previous *models.DraftPublishRecord) error {
	if previous == nil {
		return r.store.remove(publishRecordsDir, draftID)
	}

	return r.store.write(publishRecordsDir, draftID, previous)
}

// RecordFailure marks the draft's record publish-failed.
func (r *PublishRecordRepository) RecordFailure(_ context.Context, draftID string, kind models.ErrorKind, attemptedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	record, err := r.get(draftID)
	if err != nil {
		if !persistence.IsPublishRecordNotFound(err) {
			return err
		}

		record = &models.DraftPublishRecord{DraftID: draftID}
	}

	record.Status = models.PublishRecordPublishFailed
	record.ErrorKind = kind
	record.LastAttemptedAt = attemptedAt.UTC()
	record.UpdatedAt = time.Now().UTC()

	err = r.store.write(publishRecordsDir, draftID, record)
	if err != nil {
		return persistence.NewPublishRecordError("RecordFailure", draftID, err)
	}

	return nil
}
