package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/manasvi0103/ai-blog-platform/pkg/cache"
	"github.com/manasvi0103/ai-blog-platform/pkg/config"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost/db":   "postgres",
		"postgresql://u:p@localhost/db": "postgresql",
		"file:///var/lib/blogpublisher":  "file",
		"./data":                         "file",
		"mongodb://localhost":            "file",
	}

	for url, want := range tests {
		assert.Equal(t, want, parsePersistenceProvider(url), url)
	}
}

func TestNewPersistence_File(t *testing.T) {
	store, err := NewPersistence(context.Background(), slog.Default(), "file://"+t.TempDir())
	require.NoError(t, err)

	assert.IsType(t, &file.Persistence{}, store)
	require.NoError(t, store.HealthCheck(context.Background()))
}

func TestNewCache(t *testing.T) {
	store, err := NewCache(context.Background(), slog.Default(), "")
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, store)

	_, err = NewCache(context.Background(), slog.Default(), "memcached://localhost")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus(slog.Default(), "gochannel", "")
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = NewEventBus(slog.Default(), "kafka", " , ")
	require.Error(t, err)

	_, err = NewEventBus(slog.Default(), "rabbitmq", "")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Relay.URL = "https://relay.example.com/hook"
	cfg.Delivery.Order = models.DeliveryOrderRelayFirst

	pipeline, err := NewPipeline(slog.Default(), nil, cfg, file.NewPersistence(t.TempDir()), cache.NewMemoryCache(), nil)
	require.NoError(t, err)

	assert.True(t, pipeline.Relay.Enabled())
	assert.Equal(t,
		[]models.DeliveryMethod{models.DeliveryMethodRelay, models.DeliveryMethodDirect},
		pipeline.Publishing.Plan(),
	)
}

func TestNewPipeline_DefaultCredentialsServeUnconfiguredTenants(t *testing.T) {
	cfg := config.Default()
	cfg.CMS.DefaultURL = "https://blog.example.com"
	cfg.CMS.DefaultUsername = "editor"
	cfg.CMS.DefaultAppPassword = "abcd efgh"

	pipeline, err := NewPipeline(slog.Default(), nil, cfg, file.NewPersistence(t.TempDir()), cache.NewMemoryCache(), nil)
	require.NoError(t, err)

	creds, err := pipeline.CMS.Resolver().Resolve(context.Background(), "company-1")
	require.NoError(t, err)
	assert.Equal(t, models.CredentialSourceDefault, creds.Source)
	assert.Equal(t, "https://blog.example.com", creds.BaseURL)

	cfg.CMS.TenantOnly = true

	pipeline, err = NewPipeline(slog.Default(), nil, cfg, file.NewPersistence(t.TempDir()), cache.NewMemoryCache(), nil)
	require.NoError(t, err)

	_, err = pipeline.CMS.Resolver().Resolve(context.Background(), "company-1")
	assert.True(t, models.IsKind(err, models.ErrorKindConfigMissing))
}
