package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manasvi0103/ai-blog-platform/pkg/cache"
	"github.com/manasvi0103/ai-blog-platform/pkg/cmd"
	"github.com/manasvi0103/ai-blog-platform/pkg/config"
	"github.com/manasvi0103/ai-blog-platform/pkg/eventbus"
	"github.com/manasvi0103/ai-blog-platform/pkg/otelhelper"
	"github.com/manasvi0103/ai-blog-platform/pkg/persistence"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

// runtime holds the process-wide resources shared by every subcommand.
type runtime struct {
	logger      *slog.Logger
	config      *config.Config
	persistence persistence.Persistence
	cache       cache.Cache
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	pipeline    *cmd.Pipeline

	closers []func(context.Context) error
}

func newRuntime(ctx context.Context, logger *slog.Logger, command *cli.Command) (*runtime, error) {
	rt := &runtime{logger: logger, tracer: otelhelper.NoopTracer()}

	cfg, err := config.Load(command.String("config"))
	if err != nil {
		return nil, err
	}

	rt.config = cfg

	if cfg.Tracing.Enabled {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, cfg.Tracing.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}

		rt.tracer = tracer
		rt.closers = append(rt.closers, shutdown)
	}

	rt.persistence, err = cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		rt.close(ctx)

		return nil, fmt.Errorf("failed to open persistence: %w", err)
	}

	rt.closers = append(rt.closers, rt.persistence.Close)

	rt.cache, err = cmd.NewCache(ctx, logger, command.String("cache-url"))
	if err != nil {
		rt.close(ctx)

		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	rt.closers = append(rt.closers, func(context.Context) error { return rt.cache.Close() })

	rt.eventBus, err = cmd.NewEventBus(logger, command.String("event-bus"), command.String("kafka-brokers"))
	if err != nil {
		rt.close(ctx)

		return nil, err
	}

	rt.closers = append(rt.closers, func(context.Context) error { return rt.eventBus.Close() })

	rt.pipeline, err = cmd.NewPipeline(logger, rt.tracer, cfg, rt.persistence, rt.cache, rt.eventBus)
	if err != nil {
		rt.close(ctx)

		return nil, err
	}

	logger.InfoContext(ctx, "Publish pipeline ready",
		"delivery_order", cfg.Delivery.Order,
		"delivery_plan", rt.pipeline.Publishing.Plan(),
		"relay_enabled", cfg.RelayEnabled(),
	)

	return rt, nil
}

// close releases resources in reverse order of acquisition.
func (rt *runtime) close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](context.WithoutCancel(ctx)); err != nil {
			rt.logger.ErrorContext(ctx, "Failed to release resource", "error", err)
		}
	}

	rt.closers = nil
}
