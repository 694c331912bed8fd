package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretgate/cmd/app/commands"
	"github.com/allisson/secretgate/internal/app"
	"github.com/allisson/secretgate/internal/config"
)

func getSecretsCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "resolve-secret",
			Usage: "Resolve an allow-listed secret through the provider cascade",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Catalog name of the secret (e.g., db-password)",
				},
				&cli.StringFlag{
					Name:    "caller",
					Aliases: []string{"c"},
					Value:   "cli",
					Usage:   "Caller identity recorded in the audit trail",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				resolver, err := container.SecretResolver()
				if err != nil {
					return err
				}

				return commands.RunResolveSecret(
					ctx,
					resolver,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("caller"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "seal-value",
			Usage: "Encrypt a value with KMS_KEY_URI for use as an enc: environment variable",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "value",
					Aliases: []string{"v"},
					Usage:   "Plaintext to seal (omit to read from stdin)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keeper, err := container.Keeper()
				if err != nil {
					return err
				}
				if keeper == nil {
					return errors.New("KMS_KEY_URI must be configured to seal values")
				}

				return commands.RunSealValue(ctx, keeper, commands.DefaultIO(), cmd.String("value"))
			},
		},
	}
}
