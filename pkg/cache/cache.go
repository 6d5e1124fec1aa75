// Package cache provides a TTL cache with explicit invalidation by logical resource.
//
// Every entry is stored under a resource name (for example "cms-drafts:tenant:acme").
// Invalidate drops all entries of a resource at once; keys are never matched by
// substring.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidTTL is returned by Set for non-positive TTLs.
var ErrInvalidTTL = errors.New("cache ttl must be positive")

// Cache stores JSON-serializable values.
type Cache interface {
	// Get decodes the entry for key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key as part of resource for ttl.
	Set(ctx context.Context, resource, key string, value any, ttl time.Duration) error
	// Invalidate removes every entry stored under resource.
	Invalidate(ctx context.Context, resource string) error
	Close() error
}
