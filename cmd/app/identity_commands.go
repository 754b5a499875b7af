package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/adminguard/adminguard/cmd/app/commands"
	"github.com/adminguard/adminguard/internal/app"
	"github.com/adminguard/adminguard/internal/config"
)

func getIdentityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-operator",
			Usage: "Create a new operator account bound to a role",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Operator email (stored lowercase, must be unique)",
				},
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable operator name",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Name of an existing role to assign",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Initial password (omit to generate a random one)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				operatorUseCase, err := container.OperatorUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateOperator(
					ctx,
					operatorUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("email"),
					cmd.String("name"),
					cmd.String("role"),
					cmd.String("password"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "create-role",
			Usage: "Create a new role definition with resource grants",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Role name (must be unique)",
				},
				&cli.IntFlag{
					Name:     "level",
					Aliases:  []string{"l"},
					Required: true,
					Usage:    "Privilege level (1 = super admin, higher = less privileged)",
				},
				&cli.BoolFlag{
					Name:  "can-create-subordinates",
					Usage: "Whether the role may create operators at less privileged levels",
				},
				&cli.BoolFlag{
					Name:  "bypass-ownership",
					Usage: "Whether the role skips resource-scoped ownership checks",
				},
				&cli.StringFlag{
					Name:    "grants",
					Aliases: []string{"g"},
					Usage:   "JSON array of grants (omit for interactive mode)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				roleUseCase, err := container.RoleUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateRole(
					ctx,
					roleUseCase,
					container.Logger(),
					cmd.String("name"),
					int(cmd.Int("level")),
					cmd.Bool("can-create-subordinates"),
					cmd.Bool("bypass-ownership"),
					cmd.String("grants"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "unlock-operator",
			Usage: "Clear the brute-force lockout state of an operator",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Operator ID (UUID)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				operatorUseCase, err := container.OperatorUseCase()
				if err != nil {
					return err
				}

				return commands.RunUnlockOperator(
					ctx,
					operatorUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
				)
			},
		},
	}
}
