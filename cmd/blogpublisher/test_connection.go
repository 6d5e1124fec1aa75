package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/manasvi0103/ai-blog-platform/pkg/log"
	"github.com/manasvi0103/ai-blog-platform/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func TestConnectionCommand() *cli.Command {
	return &cli.Command{
		Name:  "test-connection",
		Usage: "Check the WordPress credentials of a tenant, every active tenant, or the defaults",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "tenant",
				Usage: "Tenant to test; empty tests the default credentials",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Test every active tenant",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("test-connection")

			rt, err := newRuntime(ctx, logger, command)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			var results []*models.ConnectionResult

			if command.Bool("all") {
				results, err = rt.pipeline.Connection.TestAll(ctx)
				if err != nil {
					return err
				}
			} else {
				results = append(results, rt.pipeline.Connection.Test(ctx, command.String("tenant")))
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			if err := encoder.Encode(results); err != nil {
				return err
			}

			for _, result := range results {
				if !result.Success {
					return cli.Exit("one or more connections failed", 1)
				}
			}

			return nil
		},
	}
}
