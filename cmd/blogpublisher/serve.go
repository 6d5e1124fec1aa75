package main

import (
	"context"

	"github.com/manasvi0103/ai-blog-platform/pkg/events"
	"github.com/manasvi0103/ai-blog-platform/pkg/log"
	"github.com/manasvi0103/ai-blog-platform/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the publish API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.BoolFlag{
				Name:    "monitor",
				Usage:   "Also run the periodic CMS connection monitor",
				Sources: cli.EnvVars("PUBLISHER_MONITOR"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing blog publisher API")

			rt, err := newRuntime(ctx, logger, command)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if err := subscribeLifecycleLog(ctx, rt); err != nil {
				return err
			}

			if command.Bool("monitor") {
				monitor, err := scheduler.NewMonitor(logger, rt.config.Monitor.Schedule, rt.pipeline.Connection)
				if err != nil {
					return err
				}

				if err := monitor.Start(ctx); err != nil {
					return err
				}
			}

			return NewAPI(logger, rt.persistence, rt.pipeline).Start(ctx, command.Int("port"))
		},
	}
}

// subscribeLifecycleLog logs every publish lifecycle event delivered by the bus.
func subscribeLifecycleLog(ctx context.Context, rt *runtime) error {
	logger := log.WithModule("lifecycle")

	handlers := map[events.EventType]func(context.Context, any) error{
		events.DraftPublishedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.DraftPublished); ok {
				logger.InfoContext(ctx, "Draft published",
					"draft_id", e.DraftID,
					"tenant_id", e.TenantID,
					"cms_post_id", e.CMSPostID,
					"delivery_method", e.DeliveryMethod,
					"inconsistent", e.Inconsistent,
				)
			}

			return nil
		},
		events.DraftPublishFailedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.DraftPublishFailed); ok {
				logger.WarnContext(ctx, "Draft publish failed",
					"draft_id", e.DraftID,
					"tenant_id", e.TenantID,
					"error_kind", e.ErrorKind,
				)
			}

			return nil
		},
		events.ConnectionTestedEvent: func(ctx context.Context, event any) error {
			if e, ok := event.(*events.ConnectionTested); ok {
				logger.InfoContext(ctx, "CMS connection tested",
					"tenant_id", e.TenantID,
					"success", e.Success,
					"error_kind", e.ErrorKind,
				)
			}

			return nil
		},
	}

	for eventType, handler := range handlers {
		if err := rt.eventBus.Handle(eventType, handler); err != nil {
			return err
		}
	}

	return rt.eventBus.Subscribe(ctx)
}
