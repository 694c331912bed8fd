package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretgate/cmd/app/commands"
	"github.com/allisson/secretgate/internal/app"
	"github.com/allisson/secretgate/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "validate-token",
			Usage: "Validate a bearer token against the configured key set and policy",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Compact JWS token to validate",
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

				validator, err := container.TokenValidator()
				if err != nil {
					return err
				}

				return commands.RunValidateToken(
					ctx,
					validator,
					commands.DefaultIO().Writer,
					cmd.String("token"),
					cmd.String("format"),
				)
			},
		},
	}
}
