// Package config loads the publish pipeline configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file values.
const (
	EnvRelayURL          = "PUBLISHER_RELAY_URL"
	EnvRelaySecret       = "PUBLISHER_RELAY_SECRET"
	EnvDeliveryOrder     = "PUBLISHER_DELIVERY_ORDER"
	EnvWordPressURL      = "WORDPRESS_URL"
	EnvWordPressUsername = "WORDPRESS_USERNAME"
	EnvWordPressPassword = "WORDPRESS_APP_PASSWORD" //nolint:gosec // variable name, not a credential
)

const (
	defaultMonitorSchedule = "@every 6h"
	defaultServiceName     = "blogpublisher"
	defaultRequestTimeout  = 30 * time.Second
)

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the pipeline configuration.
type Config struct {
	Delivery DeliveryConfig `yaml:"delivery"`
	CMS      CMSConfig      `yaml:"cms"`
	Relay    RelayConfig    `yaml:"relay"`
	Media    MediaConfig    `yaml:"media"`
	Records  RecordsConfig  `yaml:"records"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// DeliveryConfig controls which delivery paths run and in which order.
type DeliveryConfig struct {
	Order    models.DeliveryOrder `yaml:"order"    validate:"oneof=direct-first relay-first direct-only relay-only"`
	Fallback bool                 `yaml:"fallback"`
}

// CMSConfig holds the process-wide default credentials and client limits.
type CMSConfig struct {
	DefaultURL         string `yaml:"default_url"          validate:"omitempty,url"`
	DefaultUsername    string `yaml:"default_username"`
	DefaultAppPassword string `yaml:"default_app_password"`
	// TenantOnly stops tenants without usable credentials from falling back
	// to the default ones.
	TenantOnly   bool          `yaml:"tenant_only"`
	Timeout      time.Duration `yaml:"timeout"        validate:"gt=0"`
	DraftListTTL time.Duration `yaml:"draft_list_ttl" validate:"gte=0"`
}

type RelayConfig struct {
	URL     string        `yaml:"url"     validate:"omitempty,url"`
	Secret  string        `yaml:"secret"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type MediaConfig struct {
	FetchTimeout  time.Duration `yaml:"fetch_timeout"  validate:"gt=0"`
	MaxBytes      int64         `yaml:"max_bytes"      validate:"gt=0"`
	Concurrency   int           `yaml:"concurrency"    validate:"min=1,max=16"`
	HostedDomains []string      `yaml:"hosted_domains"`
}

type RecordsConfig struct {
	// RecordFailedAttempts marks the publish record publish-failed when every
	// delivery path failed.
	RecordFailedAttempts bool `yaml:"record_failed_attempts"`
}

type MonitorConfig struct {
	Schedule string `yaml:"schedule" validate:"required"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" validate:"required"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Delivery: DeliveryConfig{
			Order:    models.DeliveryOrderDirectFirst,
			Fallback: true,
		},
		CMS: CMSConfig{
			Timeout:      defaultRequestTimeout,
			DraftListTTL: 5 * time.Minute,
		},
		Relay: RelayConfig{
			Timeout: defaultRequestTimeout,
		},
		Media: MediaConfig{
			FetchTimeout: 20 * time.Second,
			MaxBytes:     10 << 20,
			Concurrency:  3,
		},
		Monitor: MonitorConfig{Schedule: defaultMonitorSchedule},
		Tracing: TracingConfig{ServiceName: defaultServiceName},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		EnvRelayURL:          &c.Relay.URL,
		EnvRelaySecret:       &c.Relay.Secret,
		EnvWordPressURL:      &c.CMS.DefaultURL,
		EnvWordPressUsername: &c.CMS.DefaultUsername,
		EnvWordPressPassword: &c.CMS.DefaultAppPassword,
	}

	for name, target := range overrides {
		if value, ok := lookup(name); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	if value, ok := lookup(EnvDeliveryOrder); ok && value != "" {
		c.Delivery.Order = models.DeliveryOrder(strings.ToLower(strings.TrimSpace(value)))
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// RelayEnabled reports whether a relay webhook is configured.
func (c *Config) RelayEnabled() bool {
	return c.Relay.URL != ""
}

// Plan returns the delivery methods to try, in order.
func (c *Config) Plan() []models.DeliveryMethod {
	return c.Delivery.Order.Plan(c.RelayEnabled(), c.Delivery.Fallback)
}
