// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/contactbook/internal/platform/config"
	"github.com/taibuivan/contactbook/internal/platform/migration"
	pgstore "github.com/taibuivan/contactbook/internal/platform/postgres"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

// # Dependencies

// accountAdmin is the slice of the auth service the CLI drives.
type accountAdmin interface {
	ChangeRole(context context.Context, email string, role sec.Role) error
	MarkConfirmed(context context.Context, email string) error
}

// environment resolves the process dependencies lazily so --help works without a database.
type environment struct {
	logger *slog.Logger

	// migrate applies steps migrations; zero means all pending, negative rolls back.
	migrate func(steps int) error

	// admin opens the account service and returns a release func.
	admin func(context context.Context) (accountAdmin, func(), error)
}

func newEnvironment(logger *slog.Logger) *environment {
	return &environment{
		logger: logger,
		migrate: func(steps int) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if steps < 0 {
				return migration.RunDown(cfg.DatabaseURL, cfg.MigrationPath, -steps, logger)
			}
			return migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger)
		},
		admin: func(context context.Context) (accountAdmin, func(), error) {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}
			pool, err := pgstore.NewPool(context, cfg.DatabaseURL, logger)
			if err != nil {
				return nil, nil, err
			}
			// Token issuing and mail are not used by administrative operations.
			service := auth.NewService(auth.NewPostgresIdentityStore(pool), sec.NewHasher(bcrypt.DefaultCost), nil, nil, nil)
			return service, pool.Close, nil
		},
	}
}

// # Commands

func newRootCommand(env *environment) *cobra.Command {
	root := &cobra.Command{
		Use:           "contactsctl",
		Short:         "Contactbook operator commands",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCommand(env), newUserCommand(env))
	return root
}

func newMigrateCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.migrate(0); err != nil {
				return fmt.Errorf("migrate up: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			if err := env.migrate(-steps); err != nil {
				return fmt.Errorf("migrate down: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func newUserCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Account administration",
	}

	setRole := &cobra.Command{
		Use:   "set-role <email> <role>",
		Short: "Change the role of an account (admin, moderator, user)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := sec.ParseRole(args[1])
			if err != nil {
				return err
			}
			return env.withAdmin(cmd, func(admin accountAdmin) error {
				if err := admin.ChangeRole(cmd.Context(), args[0], role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], role)
				return nil
			})
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm <email>",
		Short: "Mark an account's email as confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withAdmin(cmd, func(admin accountAdmin) error {
				if err := admin.MarkConfirmed(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s confirmed\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(setRole, confirm)
	return cmd
}

func (env *environment) withAdmin(cmd *cobra.Command, run func(accountAdmin) error) error {
	admin, release, err := env.admin(cmd.Context())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer release()

	if err := run(admin); err != nil {
		env.logger.Error("command_failed", slog.String("command", cmd.CommandPath()), slog.Any("error", err))
		return err
	}
	return nil
}
