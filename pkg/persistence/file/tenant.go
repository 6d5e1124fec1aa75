package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// storedTenant is the on-disk shape of a tenant config. Unlike the model it
// keeps the application password.
type storedTenant struct {
	TenantID         string                  `json:"tenant_id"`
	BaseURL          string                  `json:"base_url"`
	Username         string                  `json:"username"`
	AppPassword      string                  `json:"app_password"`
	IsActive         bool                    `json:"is_active"`
	LastTestedAt     *time.Time              `json:"last_tested_at,omitempty"`
	ConnectionStatus models.ConnectionStatus `json:"connection_status"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func toStoredTenant(cfg *models.TenantCMSConfig) storedTenant {
	return storedTenant(*cfg)
}

func (s storedTenant) model() *models.TenantCMSConfig {
	cfg := models.TenantCMSConfig(s)

	return &cfg
}

// TenantConfigRepository handles tenant config file operations.
type TenantConfigRepository struct {
	store *Persistence
}

// GetByTenantID retrieves a tenant config.
func (r *TenantConfigRepository) GetByTenantID(_ context.Context, tenantID string) (*models.TenantCMSConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.get(tenantID)
}

func (r *TenantConfigRepository) get(tenantID string) (*models.TenantCMSConfig, error) {
	var stored storedTenant

	err := r.store.read(tenantsDir, tenantID, &stored)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewTenantError("GetByTenantID", tenantID, persistence.ErrTenantConfigNotFound)
		}

		return nil, persistence.NewTenantError("GetByTenantID", tenantID, err)
	}

	return stored.model(), nil
}

// ListActive returns active tenant configs ordered by tenant id.
func (r *TenantConfigRepository) ListActive(_ context.Context) ([]*models.TenantCMSConfig, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.list(tenantsDir)
	if err != nil {
		return nil, err
	}

	sort.Strings(ids)

	configs := make([]*models.TenantCMSConfig, 0, len(ids))

	for _, id := range ids {
		cfg, err := r.get(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load tenant %s: %w", id, err)
		}

		if cfg.IsActive {
			configs = append(configs, cfg)
		}
	}

	return configs, nil
}

// Save creates or replaces a tenant config.
func (r *TenantConfigRepository) Save(_ context.Context, cfg *models.TenantCMSConfig) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}

	if cfg.ConnectionStatus == "" {
		cfg.ConnectionStatus = models.ConnectionStatusNotTested
	}

	cfg.UpdatedAt = now

	err := r.store.write(tenantsDir, cfg.TenantID, toStoredTenant(cfg))
	if err != nil {
		return persistence.NewTenantError("Save", cfg.TenantID, err)
	}

	return nil
}

// UpdateConnectionStatus records a self-test outcome.
func (r *TenantConfigRepository) UpdateConnectionStatus(
	_ context.Context,
	tenantID string,
	status models.ConnectionStatus,
	testedAt time.Time,
) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cfg, err := r.get(tenantID)
	if err != nil {
		return err
	}

	testedAt = testedAt.UTC()
	cfg.ConnectionStatus = status
	cfg.LastTestedAt = &testedAt
	cfg.UpdatedAt = time.Now().UTC()

	err = r.store.write(tenantsDir, tenantID, toStoredTenant(cfg))
	if err != nil {
		return persistence.NewTenantError("UpdateConnectionStatus", tenantID, err)
	}

	return nil
}
