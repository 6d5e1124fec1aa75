package main

import (
	"context"

	"github.com/manasvi0103/ai-blog-platform/pkg/log"
	"github.com/manasvi0103/ai-blog-platform/pkg/scheduler"
	cli "github.com/urfave/cli/v3"
)

func MonitorCommand() *cli.Command {
	return &cli.Command{
		Name:  "monitor",
		Usage: "Periodically self-test the CMS connection of every active tenant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule overriding monitor.schedule from the config",
				Sources: cli.EnvVars("PUBLISHER_MONITOR_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single self-test and exit",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("monitor")

			rt, err := newRuntime(ctx, logger, command)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			schedule := rt.config.Monitor.Schedule
			if s := command.String("schedule"); s != "" {
				schedule = s
			}

			monitor, err := scheduler.NewMonitor(logger, schedule, rt.pipeline.Connection)
			if err != nil {
				return err
			}

			if command.Bool("once") {
				_, err := monitor.RunOnce(ctx)

				return err
			}

			if err := monitor.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()

			return monitor.Stop(context.WithoutCancel(ctx))
		},
	}
}
