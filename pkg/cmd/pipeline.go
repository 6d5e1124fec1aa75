package cmd

import (
	"fmt"
	"log/slog"

	"github.com/manasvi0103/ai-blog-platform/pkg/cache"
	"github.com/manasvi0103/ai-blog-platform/pkg/cms"
	"github.com/manasvi0103/ai-blog-platform/pkg/config"
	"github.com/manasvi0103/ai-blog-platform/pkg/eventbus"
	"github.com/manasvi0103/ai-blog-platform/pkg/media"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	"github.com/manasvi0103/ai-blog-platform/pkg/rehost"
	"github.com/manasvi0103/ai-blog-platform/pkg/relay"
	"github.com/manasvi0103/ai-blog-platform/pkg/services"
	"github.com/manasvi0103/ai-blog-platform/pkg/wpapi"
	"go.opentelemetry.io/otel/trace"
)

// Pipeline holds the wired publish components.
type Pipeline struct {
	CMS        *cms.Client
	Relay      *relay.Client
	Publishing *services.Publishing
	Connection *services.Connection
}

// NewPipeline wires the publish components from cfg. store may be nil to
// disable draft-list caching and bus may be nil to disable events.
func NewPipeline(
	logger *slog.Logger,
	tracer trace.Tracer,
	cfg *config.Config,
	persistence persistence.Persistence,
	store cache.Cache,
	bus eventbus.EventBus,
) (*Pipeline, error) {
	api := wpapi.NewClient(logger, cfg.CMS.Timeout)

	resolver := cms.NewResolver(logger, persistence.TenantConfigs(), cms.Defaults{
		BaseURL:       cfg.CMS.DefaultURL,
		Username:      cfg.CMS.DefaultUsername,
		AppPassword:   cfg.CMS.DefaultAppPassword,
		TenantOnly:    cfg.CMS.TenantOnly,
	})

	uploader := media.NewRehoster(logger, api, media.Config{
		FetchTimeout: cfg.Media.FetchTimeout,
		MaxBytes:     cfg.Media.MaxBytes,
	})

	client := cms.NewClient(logger, api, resolver, uploader, store, cms.Config{DraftListTTL: cfg.CMS.DraftListTTL})

	relayClient, err := relay.NewClient(logger, relay.Config{
		URL:     cfg.Relay.URL,
		Secret:  cfg.Relay.Secret,
		Timeout: cfg.Relay.Timeout,
		Sites:   resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create relay client: %w", err)
	}

	rehoster := rehost.NewRehoster(logger, uploader, rehost.Config{
		Concurrency:   cfg.Media.Concurrency,
		HostedDomains: cfg.Media.HostedDomains,
	})

	var publisher eventbus.EventPublisher
	if bus != nil {
		publisher = bus
	}

	publishing := services.NewPublishing(logger, tracer, persistence, rehoster, resolver, client, relayClient, publisher,
		services.PublishingConfig{
			Order:                cfg.Delivery.Order,
			Fallback:             cfg.Delivery.Fallback,
			RecordFailedAttempts: cfg.Records.RecordFailedAttempts,
		},
	)

	return &Pipeline{
		CMS:        client,
		Relay:      relayClient,
		Publishing: publishing,
		Connection: services.NewConnection(logger, persistence, client, publisher),
	}, nil
}
