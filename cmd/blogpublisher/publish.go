package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/manasvi0103/ai-blog-platform/pkg/log"
	"github.com/manasvi0103/ai-blog-platform/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var errDraftIDArg = errors.New("a draft id argument is required")

func PublishCommand() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "Publish a single draft to its tenant's WordPress site",
		ArgsUsage: "<draft-id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Create a new remote draft even if one already exists",
			},
			&cli.StringFlag{
				Name:  "tenant",
				Usage: "Publish with this tenant's CMS configuration instead of the draft's company",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			draftID := command.Args().First()
			if draftID == "" {
				return cli.Exit(errDraftIDArg, 2)
			}

			logger := log.WithModule("publish")

			rt, err := newRuntime(ctx, logger, command)
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			publishing := rt.pipeline.Publishing

			if !command.Bool("force") {
				if err := publishing.CheckPublishable(ctx, draftID); err != nil {
					return cli.Exit(err, 3)
				}
			}

			result := publishing.Publish(ctx, services.PublishRequest{
				DraftID:  draftID,
				TenantID: command.String("tenant"),
			})

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			if err := encoder.Encode(result); err != nil {
				return err
			}

			if !result.Success {
				return cli.Exit(fmt.Sprintf("publish failed: %s", result.ErrorKind), 1)
			}

			if result.Inconsistency != nil {
				logger.WarnContext(ctx, result.Inconsistency.Message, "cms_post_id", result.CMSPostID)
			}

			return nil
		},
	}
}
