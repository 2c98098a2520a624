package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shenikar/rapid_response_hub/internal/config"
	"github.com/shenikar/rapid_response_hub/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply or roll back database migrations",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: func(c *cli.Context) error {
				return withMigrator(func(m *migrate.Migrate) error { return m.Up() })
			},
		},
		{
			Name:  "down",
			Usage: "Roll back the last migration",
			Action: func(c *cli.Context) error {
				return withMigrator(func(m *migrate.Migrate) error { return m.Steps(-1) })
			},
		},
	},
}

func newMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(cfg.MigrationsPath, migrationURL)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

func withMigrator(run func(*migrate.Migrate) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	version, dirty, _ := m.Version()
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Migrations finished")
	return nil
}

func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}
