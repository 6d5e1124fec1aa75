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

var tenantColumns = []string{
	"tenant_id",
	"base_url",
	"username",
	"app_password",
	"is_active",
	"last_tested_at",
	"connection_status",
	"created_at",
	"updated_at",
}

// TenantConfigRepository handles tenant config database operations.
type TenantConfigRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTenantConfigRepository creates a new tenant config repository.
func NewTenantConfigRepository(db *sql.DB, logger *slog.Logger) *TenantConfigRepository {
	return &TenantConfigRepository{db: db, logger: logger}
}

// GetByTenantID retrieves a tenant config.
func (r *TenantConfigRepository) GetByTenantID(ctx context.Context, tenantID string) (*models.TenantCMSConfig, error) {
	query, args, err := psql.Select(tenantColumns...).
		From("tenant_cms_configs").
		Where(sq.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, persistence.NewTenantError("GetByTenantID", tenantID, err)
	}

	cfg, err := scanTenant(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewTenantError("GetByTenantID", tenantID, persistence.ErrTenantConfigNotFound)
		}

		return nil, persistence.NewTenantError("GetByTenantID", tenantID, err)
	}

	return cfg, nil
}

// ListActive returns active tenant configs ordered by tenant id.
func (r *TenantConfigRepository) ListActive(ctx context.Context) ([]*models.TenantCMSConfig, error) {
	query, args, err := psql.Select(tenantColumns...).
		From("tenant_cms_configs").
		Where(sq.Eq{"is_active": true}).
		OrderBy("tenant_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tenant query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant configs: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	configs := make([]*models.TenantCMSConfig, 0)

	for rows.Next() {
		cfg, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant config: %w", err)
		}

		configs = append(configs, cfg)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating tenant configs: %w", err)
	}

	return configs, nil
}

// Save creates or replaces a tenant config.
func (r *TenantConfigRepository) Save(ctx context.Context, cfg *models.TenantCMSConfig) error {
	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}

	if cfg.ConnectionStatus == "" {
		cfg.ConnectionStatus = models.ConnectionStatusNotTested
	}

	cfg.UpdatedAt = now

	query, args, err := psql.Insert("tenant_cms_configs").
		Columns(tenantColumns...).
		Values(
			cfg.TenantID,
			cfg.BaseURL,
			cfg.Username,
			cfg.AppPassword,
			cfg.IsActive,
			cfg.LastTestedAt,
			string(cfg.ConnectionStatus),
			cfg.CreatedAt,
			cfg.UpdatedAt,
		).
		Suffix(`ON CONFLICT (tenant_id) DO UPDATE SET
			base_url = EXCLUDED.base_url,
			username = EXCLUDED.username,
			app_password = EXCLUDED.app_password,
			is_active = EXCLUDED.is_active,
			last_tested_at = EXCLUDED.last_tested_at,
			connection_status = EXCLUDED.connection_status,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return persistence.NewTenantError("Save", cfg.TenantID, err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewTenantError("Save", cfg.TenantID, err)
	}

	return nil
}

// UpdateConnectionStatus records a self-test outcome.
func (r *TenantConfigRepository) UpdateConnectionStatus(
	ctx context.Context,
	tenantID string,
	status models.ConnectionStatus,
	testedAt time.Time,
) error {
	query, args, err := psql.Update("tenant_cms_configs").
		Set("connection_status", string(status)).
		Set("last_tested_at", testedAt.UTC()).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return persistence.NewTenantError("UpdateConnectionStatus", tenantID, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewTenantError("UpdateConnectionStatus", tenantID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewTenantError("UpdateConnectionStatus", tenantID, err)
	}

	if affected == 0 {
		return persistence.NewTenantError("UpdateConnectionStatus", tenantID, persistence.ErrTenantConfigNotFound)
	}

	return nil
}

func scanTenant(row scanner) (*models.TenantCMSConfig, error) {
	var (
		cfg          models.TenantCMSConfig
		lastTestedAt sql.NullTime
		status       string
	)

	err := row.Scan(
		&cfg.TenantID,
		&cfg.BaseURL,
		&cfg.Username,
		&cfg.AppPassword,
		&cfg.IsActive,
		&lastTestedAt,
		&status,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastTestedAt.Valid {
		testedAt := lastTestedAt.Time.UTC()
		cfg.LastTestedAt = &testedAt
	}

	cfg.ConnectionStatus = models.ConnectionStatus(status)

	return &cfg, nil
}
