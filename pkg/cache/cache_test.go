package cache

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type page struct {
	Titles []string `json:"titles"`
	Total  int      `json:"total"`
}

func exerciseCache(ctx context.Context, t *testing.T, c Cache) {
	t.Helper()

	var got page

	found, err := c.Get(ctx, "cms-drafts:acme:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "cms-drafts:acme", "cms-drafts:acme:1", page{Titles: []string{"a"}, Total: 1}, time.Minute))
	require.NoError(t, c.Set(ctx, "cms-drafts:acme", "cms-drafts:acme:2", page{Titles: []string{"b"}, Total: 1}, time.Minute))
	require.NoError(t, c.Set(ctx, "cms-drafts:acme-labs", "cms-drafts:acme-labs:1", page{Total: 9}, time.Minute))

	found, err = c.Get(ctx, "cms-drafts:acme:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, page{Titles: []string{"a"}, Total: 1}, got)

	require.NoError(t, c.Invalidate(ctx, "cms-drafts:acme"))

	found, err = c.Get(ctx, "cms-drafts:acme:1", &got)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = c.Get(ctx, "cms-drafts:acme:2", &got)
	require.NoError(t, err)
	assert.False(t, found)

	// A resource sharing a prefix is a different resource.
	found, err = c.Get(ctx, "cms-drafts:acme-labs:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 9, got.Total)

	assert.ErrorIs(t, c.Set(ctx, "r", "k", 1, 0), ErrInvalidTTL)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	defer func() { _ = c.Close() }()

	exerciseCache(context.Background(), t, c)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "res", "key", "value", time.Second))

	var got string

	found, err := c.Get(ctx, "key", &got)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(2 * time.Second)

	found, err = c.Get(ctx, "key", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, c.resources)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	original := page{Titles: []string{"a"}}
	require.NoError(t, c.Set(ctx, "res", "key", original, time.Minute))

	original.Titles[0] = "mutated"

	var got page

	_, err := c.Get(ctx, "key", &got)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Titles[0])
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	c, err := NewRedisCache(ctx, logger, endpoint)
	require.NoError(t, err)

	defer func() { _ = c.Close() }()

	exerciseCache(ctx, t, c)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), slog.Default(), "://bad")
	assert.Error(t, err)
}
