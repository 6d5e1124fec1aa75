package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// PublishRecordRepository handles publish record database operations.
type PublishRecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPublishRecordRepository creates a new publish record repository.
func NewPublishRecordRepository(db *sql.DB, logger *slog.Logger) *PublishRecordRepository {
	return &PublishRecordRepository{db: db, logger: logger}
}

// GetByDraftID retrieves the publish record of a draft.
func (r *PublishRecordRepository) GetByDraftID(ctx context.Context, draftID string) (*models.DraftPublishRecord, error) {
	query, args, err := psql.Select(
		"draft_id",
		"cms_post_id",
		"edit_url",
		"preview_url",
		"delivery_method",
		"status",
		"error_kind",
		"last_attempted_at",
		"updated_at",
	).
		From("draft_publish_records").
		Where(sq.Eq{"draft_id": draftID}).
		ToSql()
	if err != nil {
		return nil, persistence.NewPublishRecordError("GetByDraftID", draftID, err)
	}

	var (
		record    models.DraftPublishRecord
		postID    sql.NullInt64
		method    string
		status    string
		errorKind string
	)

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&record.DraftID,
		&postID,
		&record.EditURL,
		&record.PreviewURL,
		&method,
		&status,
		&errorKind,
		&record.LastAttemptedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewPublishRecordError("GetByDraftID", draftID, persistence.ErrPublishRecordNotFound)
		}

		return nil, persistence.NewPublishRecordError("GetByDraftID", draftID, err)
	}

	record.CMSPostID = postID.Int64
	record.DeliveryMethod = models.DeliveryMethod(method)
	record.Status = models.PublishRecordStatus(status)
	record.ErrorKind = models.ErrorKind(errorKind)

	return &record, nil
}

// Commit updates the draft status and upserts the record in one transaction.
func (r *PublishRecordRepository) Commit(ctx context.Context, record *models.DraftPublishRecord, draftStatus models.DraftStatus) error {
	record.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Update("drafts").
		Set("status", string(draftStatus)).
		Set("updated_at", record.UpdatedAt).
		Where(sq.Eq{"id": record.DraftID}).
		ToSql()
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, fmt.Errorf("failed to update draft status: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	if affected == 0 {
		return persistence.NewPublishRecordError("Commit", record.DraftID, persistence.ErrDraftNotFound)
	}

	var postID sql.NullInt64
	if record.CMSPostID != 0 {
		postID = sql.NullInt64{Int64: record.CMSPostID, Valid: true}
	}

	query, args, err = psql.Insert("draft_publish_records").
		Columns(
			"draft_id",
			"cms_post_id",
			"edit_url",
			"preview_url",
			"delivery_method",
			"status",
			"error_kind",
			"last_attempted_at",
			"updated_at",
		).
		Values(
			record.DraftID,
			postID,
			record.EditURL,
			record.PreviewURL,
			string(record.DeliveryMethod),
			string(record.Status),
			string(record.ErrorKind),
			record.LastAttemptedAt.UTC(),
			record.UpdatedAt,
		).
		Suffix(`ON CONFLICT (draft_id) DO UPDATE SET
			cms_post_id = EXCLUDED.cms_post_id,
			edit_url = EXCLUDED.edit_url,
			preview_url = EXCLUDED.preview_url,
			delivery_method = EXCLUDED.delivery_method,
			status = EXCLUDED.status,
			error_kind = EXCLUDED.error_kind,
			last_attempted_at = EXCLUDED.last_attempted_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, fmt.Errorf("failed to upsert publish record: %w", err))
	}

	err = tx.Commit()
	if err != nil {
		return persistence.NewPublishRecordError("Commit", record.DraftID, fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

// RecordFailure upserts a publish-failed record, keeping any stored CMS post reference.
func (r *PublishRecordRepository) RecordFailure(ctx context.Context, draftID string, kind models.ErrorKind, attemptedAt time.Time) error {
	now := time.Now().UTC()

	query, args, err := psql.Insert("draft_publish_records").
		Columns("draft_id", "status", "error_kind", "last_attempted_at", "updated_at").
		Values(draftID, string(models.PublishRecordPublishFailed), string(kind), attemptedAt.UTC(), now).
		Suffix(`ON CONFLICT (draft_id) DO UPDATE SET
			status = EXCLUDED.status,
			error_kind = EXCLUDED.error_kind,
			last_attempted_at = EXCLUDED.last_attempted_at,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return persistence.NewPublishRecordError("RecordFailure", draftID, err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewPublishRecordError("RecordFailure", draftID, err)
	}

	return nil
}
