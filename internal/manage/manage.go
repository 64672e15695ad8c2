// Package manage implements the administrative command line: waiting for
// the database, applying migrations and creating superusers.
package manage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/darkinowls/recipe-app-api/config"
	"github.com/darkinowls/recipe-app-api/internal/database"
	"github.com/darkinowls/recipe-app-api/internal/logging"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/service"
)

// Command returns the root "manage" command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "manage",
		Usage: "Recipe API management commands",
		Commands: []*cli.Command{
			waitForDBCmd(),
			migrateCmd(),
			createSuperuserCmd(),
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

func waitForDBCmd() *cli.Command {
	return &cli.Command{
		Name:  "wait-for-db",
		Usage: "Block until the database accepts connections",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Value: time.Second,
				Usage: "delay between attempts",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "give up after this long (0 waits forever)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if timeout := cmd.Duration("timeout"); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			if cfg.DBDriver != config.DriverPostgres {
				db, err := database.Open(cfg)
				if err != nil {
					return err
				}
				return database.Close(db)
			}
			return database.WaitForDB(ctx, cfg.PostgresDSN(), cmd.Duration("interval"))
		},
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database schema migrations",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDB(func(db *gorm.DB) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, "migrations applied")
				return nil
			})
		},
	}
}

func createSuperuserCmd() *cli.Command {
	return &cli.Command{
		Name:  "create-superuser",
		Usage: "Create a staff account with every permission",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("SUPERUSER_PASSWORD")},
			&cli.StringFlag{Name: "name"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withDB(func(db *gorm.DB) error {
				repo := repository.NewStore(db)
				auth := service.NewAuthService(repo, "", time.Hour)

				user, err := auth.CreateSuperuser(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
				var verr *service.ValidationError
				switch {
				case errors.Is(err, service.ErrEmailTaken):
					return fmt.Errorf("a user with email %q already exists", cmd.String("email"))
				case errors.As(err, &verr):
					return verr
				case err != nil:
					return fmt.Errorf("create superuser: %w", err)
				}

				fmt.Fprintf(cmd.Root().Writer, "superuser %s created (id %d)\n", user.Email, user.ID)
				return nil
			})
		},
	}
}

func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}
