// Package cms publishes drafts directly to a WordPress-compatible REST API.
package cms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
)

// ErrNoCredentials is returned when neither the tenant nor the process defaults can authenticate.
var ErrNoCredentials = errors.New("no credentials available")

// Defaults are the process-wide CMS credentials used by single-tenant deployments.
type Defaults struct {
	BaseURL     string
	Username    string
	AppPassword string
	// TenantOnly refuses the defaults to a tenant without a usable config.
	TenantOnly bool
}

func (d Defaults) usable() bool {
	return d.BaseURL != "" && d.Username != "" && d.AppPassword != ""
}

// Resolver applies the credential precedence: tenant config, then process
// defaults, then ConfigMissing.
type Resolver struct {
	tenants  persistence.TenantConfigRepository
	defaults Defaults
	logger   *slog.Logger
}

// NewResolver creates a resolver. tenants may be nil for default-only deployments.
func NewResolver(logger *slog.Logger, tenants persistence.TenantConfigRepository, defaults Defaults) *Resolver {
	return &Resolver{
		tenants:  tenants,
		defaults: defaults,
		logger:   logger.With("module", "cms_resolver"),
	}
}

// Resolve returns the credentials to use for tenantID.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) (*models.Credentials, error) {
	const op = "cms.Resolve"

	if tenantID != "" && r.tenants != nil {
		cfg, err := r.tenants.GetByTenantID(ctx, tenantID)

		switch {
		case err == nil && cfg.Usable():
			return cfg.Credentials(), nil
		case err == nil:
			r.logger.WarnContext(ctx, "Tenant CMS config is inactive or incomplete", "tenant_id", tenantID)
		case !persistence.IsTenantConfigNotFound(err):
			return nil, models.NewError(models.ErrorKindInternal, op, err)
		}
	}

	if !r.defaults.usable() {
		return nil, models.NewError(models.ErrorKindConfigMissing, op, ErrNoCredentials)
	}

	if tenantID != "" {
		if r.defaults.TenantOnly {
			return nil, models.NewError(models.ErrorKindConfigMissing, op, ErrNoCredentials)
		}

		r.logger.WarnContext(ctx, "Falling back to default CMS credentials", "tenant_id", tenantID)
	}

	return &models.Credentials{
		BaseURL:     r.defaults.BaseURL,
		Username:    r.defaults.Username,
		AppPassword: r.defaults.AppPassword,
		Source:      models.CredentialSourceDefault,
	}, nil
}
