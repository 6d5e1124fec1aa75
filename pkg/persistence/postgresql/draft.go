package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// DraftRepository handles draft and content block database operations.
type DraftRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(db *sql.DB, logger *slog.Logger) *DraftRepository {
	return &DraftRepository{db: db, logger: logger}
}

// GetByID retrieves a draft and its blocks ordered by (sort_order, id).
func (r *DraftRepository) GetByID(ctx context.Context, draftID string) (*models.Draft, error) {
	query, args, err := psql.Select(
		"id",
		"company_id",
		"title",
		"focus_keyword",
		"target_word_count",
		"meta_title",
		"meta_description",
		"excerpt",
		"categories",
		"tags",
		"featured_image_url",
		"featured_image_required",
		"status",
		"created_at",
		"updated_at",
	).
		From("drafts").
		Where(sq.Eq{"id": draftID}).
		ToSql()
	if err != nil {
		return nil, persistence.NewDraftError("GetByID", draftID, err)
	}

	var (
		draft      models.Draft
		categories []byte
		tags       []byte
		status     string
	)

	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&draft.ID,
		&draft.CompanyID,
		&draft.Title,
		&draft.FocusKeyword,
		&draft.TargetWordCount,
		&draft.MetaTitle,
		&draft.MetaDescription,
		&draft.Excerpt,
		&categories,
		&tags,
		&draft.FeaturedImageURL,
		&draft.FeaturedImageRequired,
		&status,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewDraftError("GetByID", draftID, persistence.ErrDraftNotFound)
		}

		return nil, persistence.NewDraftError("GetByID", draftID, err)
	}

	draft.Status = models.DraftStatus(status)

	err = json.Unmarshal(categories, &draft.Categories)
	if err != nil {
		return nil, persistence.NewDraftError("GetByID", draftID, fmt.Errorf("failed to unmarshal categories: %w", err))
	}

	err = json.Unmarshal(tags, &draft.Tags)
	if err != nil {
		return nil, persistence.NewDraftError("GetByID", draftID, fmt.Errorf("failed to unmarshal tags: %w", err))
	}

	draft.Blocks, err = r.loadBlocks(ctx, draftID)
	if err != nil {
		return nil, persistence.NewDraftError("GetByID", draftID, err)
	}

	return &draft, nil
}

func (r *DraftRepository) loadBlocks(ctx context.Context, draftID string) ([]*models.ContentBlock, error) {
	query, args, err := psql.Select(
		"id",
		"kind",
		"level",
		"content",
		"alt_text",
		"language",
		"sort_order",
		"selected",
		"metadata",
	).
		From("content_blocks").
		Where(sq.Eq{"draft_id": draftID}).
		OrderBy("sort_order", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build block query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content blocks: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	blocks := make([]*models.ContentBlock, 0)

	for rows.Next() {
		var (
			block    models.ContentBlock
			kind     string
			metadata []byte
		)

		err := rows.Scan(
			&block.ID,
			&kind,
			&block.Level,
			&block.Content,
			&block.AltText,
			&block.Language,
			&block.Order,
			&block.Selected,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content block: %w", err)
		}

		err = json.Unmarshal(metadata, &block.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal block metadata: %w", err)
		}

		block.Kind = models.BlockKind(kind)
		block.DraftID = draftID
		blocks = append(blocks, &block)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating content blocks: %w", err)
	}

	return blocks, nil
}

// Save creates or replaces a draft and all of its blocks in one transaction.
func (r *DraftRepository) Save(ctx context.Context, draft *models.Draft) error {
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}

	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}

	draft.UpdatedAt = now

	categories, err := json.Marshal(orEmpty(draft.Categories))
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, err)
	}

	tags, err := json.Marshal(orEmpty(draft.Tags))
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, err)
	}

	defer func() { _ = tx.Rollback() }()

	query, args, err := psql.Insert("drafts").
		Columns(
			"id",
			"company_id",
			"title",
			"focus_keyword",
			"target_word_count",
			"meta_title",
			"meta_description",
			"excerpt",
			"categories",
			"tags",
			"featured_image_url",
			"featured_image_required",
			"status",
			"created_at",
			"updated_at",
		).
		Values(
			draft.ID,
			draft.CompanyID,
			draft.Title,
			draft.FocusKeyword,
			draft.TargetWordCount,
			draft.MetaTitle,
			draft.MetaDescription,
			draft.Excerpt,
			categories,
			tags,
			draft.FeaturedImageURL,
			draft.FeaturedImageRequired,
			string(draft.Status),
			draft.CreatedAt,
			draft.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			title = EXCLUDED.title,
			focus_keyword = EXCLUDED.focus_keyword,
			target_word_count = EXCLUDED.target_word_count,
			meta_title = EXCLUDED.meta_title,
			meta_description = EXCLUDED.meta_description,
			excerpt = EXCLUDED.excerpt,
			categories = EXCLUDED.categories,
			tags = EXCLUDED.tags,
			featured_image_url = EXCLUDED.featured_image_url,
			featured_image_required = EXCLUDED.featured_image_required,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, fmt.Errorf("failed to upsert draft: %w", err))
	}

	err = r.replaceBlocks(ctx, tx, draft)
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, err)
	}

	err = tx.Commit()
	if err != nil {
		return persistence.NewDraftError("Save", draft.ID, fmt.Errorf("failed to commit transaction: %w", err))
	}

	return nil
}

func (r *DraftRepository) replaceBlocks(ctx context.Context, tx *sql.Tx, draft *models.Draft) error {
	query, args, err := psql.Delete("content_blocks").Where(sq.Eq{"draft_id": draft.ID}).ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete content blocks: %w", err)
	}

	if len(draft.Blocks) == 0 {
		return nil
	}

	insert := psql.Insert("content_blocks").Columns(
		"draft_id",
		"id",
		"kind",
		"level",
		"content",
		"alt_text",
		"language",
		"sort_order",
		"selected",
		"metadata",
	)

	for _, block := range draft.Blocks {
		metadata, err := json.Marshal(block.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata of block %s: %w", block.ID, err)
		}

		block.DraftID = draft.ID
		insert = insert.Values(
			draft.ID,
			block.ID,
			string(block.Kind),
			block.Level,
			block.Content,
			block.AltText,
			block.Language,
			block.Order,
			block.Selected,
			metadata,
		)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert content blocks: %w", err)
	}

	return nil
}

func orEmpty(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}

	return ids
}
