package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tourstats/internal/store"
	"tourstats/migrations"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the tour_dates schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.Dataset.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for migrate")
			}
			return runMigrate(cmd.Context(), cfg.Dataset.DatabaseURL, args[0])
		},
	}
}

func runMigrate(ctx context.Context, databaseURL, direction string) error {
	db, dialect, err := openDatabase(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if dialect != store.DialectPostgres {
		return fmt.Errorf("migrations are only provided for postgres, got %s", dialect)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	event := log.Info().Str("direction", direction)
	if verr == nil {
		event = event.Uint("version", version).Bool("dirty", dirty)
	}
	event.Msg("Migrations applied")
	return nil
}
