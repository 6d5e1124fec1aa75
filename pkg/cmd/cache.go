package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/manasvi0103/ai-blog-platform/pkg/cache"
)

// ErrUnsupportedProvider is returned for an unknown event bus or cache provider.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// NewCache creates the draft-list cache. An empty URL or "memory" keeps it in
// process; redis:// and rediss:// URLs select Redis.
func NewCache(ctx context.Context, logger *slog.Logger, cacheURL string) (cache.Cache, error) {
	switch {
	case cacheURL == "" || cacheURL == "memory":
		return cache.NewMemoryCache(), nil
	case strings.HasPrefix(cacheURL, "redis://"), strings.HasPrefix(cacheURL, "rediss://"):
		redisCache, err := cache.NewRedisCache(ctx, logger, cacheURL)
		if err != nil {
			return nil, err
		}

		return redisCache, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cacheURL)
	}
}
