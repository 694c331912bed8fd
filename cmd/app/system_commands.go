package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secretgate/cmd/app/commands"
	"github.com/allisson/secretgate/internal/app"
	"github.com/allisson/secretgate/internal/config"
	secretsUseCase "github.com/allisson/secretgate/internal/secrets/usecase"
)

// withAuditLog loads and validates the configuration, then hands the audit log use case
// to fn. The container is closed when fn returns.
func withAuditLog(
	ctx context.Context,
	fn func(auditLog secretsUseCase.AuditLogUseCase, container *app.Container) error,
) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	auditLog, err := container.AuditLogUseCase()
	if err != nil {
		return err
	}
	return fn(auditLog, container)
}

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the gateway API and, when enabled, the metrics server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Create or upgrade the audit_logs schema",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "clean-audit-logs",
			Usage: "Purge secret resolution audit entries past the retention period",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Retention period: entries older than this many days are purged",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Only count the entries that would be purged",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditLog(ctx, func(auditLog secretsUseCase.AuditLogUseCase, c *app.Container) error {
					return commands.RunCleanAuditLogs(
						ctx,
						auditLog,
						c.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("days")),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "verify-audit-logs",
			Usage: "Check the HMAC signature of every audit entry in a time range",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "start-date",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Inclusive start, YYYY-MM-DD or YYYY-MM-DD HH:MM:SS (UTC)",
				},
				&cli.StringFlag{
					Name:     "end-date",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "End, YYYY-MM-DD (whole day included) or YYYY-MM-DD HH:MM:SS (UTC)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withAuditLog(ctx, func(auditLog secretsUseCase.AuditLogUseCase, c *app.Container) error {
					return commands.RunVerifyAuditLogs(
						ctx,
						auditLog,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("start-date"),
						cmd.String("end-date"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
