package models

import (
	"net/url"
	"strings"
	"time"
)

// ConnectionStatus is the outcome of the last CMS connectivity self-test.
type ConnectionStatus string

const (
	ConnectionStatusConnected ConnectionStatus = "connected"
	ConnectionStatusFailed    ConnectionStatus = "failed"
	ConnectionStatusNotTested ConnectionStatus = "not-tested"
)

// TenantCMSConfig is the per-tenant publish target.
//
// AppPassword is write-only: it is never serialized to JSON so it cannot leak
// through API responses or event payloads.
type TenantCMSConfig struct {
	TenantID         string           `json:"tenant_id"         validate:"required"`
	BaseURL          string           `json:"base_url"          validate:"required,url"`
	Username         string           `json:"username"          validate:"required"`
	AppPassword      string           `json:"-"                 validate:"required"`
	IsActive         bool             `json:"is_active"`
	LastTestedAt     *time.Time       `json:"last_tested_at,omitempty"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Usable reports whether the config can be used to authenticate against the CMS.
func (c *TenantCMSConfig) Usable() bool {
	return c != nil && c.IsActive && c.BaseURL != "" && c.Username != "" && c.AppPassword != ""
}

// Credentials returns the tenant config as resolved credentials.
func (c *TenantCMSConfig) Credentials() *Credentials {
	return &Credentials{
		TenantID:    c.TenantID,
		BaseURL:     c.BaseURL,
		Username:    c.Username,
		AppPassword: c.AppPassword,
		Source:      CredentialSourceTenant,
	}
}

// CredentialSource records which precedence level satisfied a credential lookup.
type CredentialSource string

const (
	CredentialSourceTenant  CredentialSource = "tenant"
	CredentialSourceDefault CredentialSource = "default"
)

// Credentials are the resolved CMS credentials for a single operation.
type Credentials struct {
	TenantID    string           `json:"tenant_id,omitempty"`
	BaseURL     string           `json:"base_url"`
	Username    string           `json:"username"`
	AppPassword string           `json:"-"`
	Source      CredentialSource `json:"source"`
}

// Host returns the lower-cased host name of the CMS site, without a leading "www.".
func (c *Credentials) Host() string {
	if c == nil {
		return ""
	}

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}

	return NormalizeHost(parsed.Hostname())
}

// CacheScope is the key prefix used for tenant-scoped cache entries.
func (c *Credentials) CacheScope() string {
	if c.TenantID == "" {
		return "default"
	}

	return "tenant:" + c.TenantID
}

// NormalizeHost lower-cases a host name and strips a leading "www.".
func NormalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
