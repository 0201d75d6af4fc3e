package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"tourstats/internal/store"
)

func importCmd() *cobra.Command {
	var (
		csvPath string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a tour dates CSV into the database",
		Long: `Read a tour dates CSV and insert every row into the tour_dates table
of DATABASE_URL. The import runs in a single transaction: either every
row lands or none do.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if cfg.Dataset.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required for import")
			}
			return runImport(cmd.Context(), cfg.Dataset.DatabaseURL, csvPath, quiet)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to the tour dates CSV")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}

func runImport(ctx context.Context, databaseURL, csvPath string, quiet bool) error {
	ds, err := store.LoadCSVFile(csvPath)
	if err != nil {
		return err
	}

	db, dialect, err := openDatabase(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	var progress func()
	if !quiet {
		bar := progressbar.Default(int64(ds.Len()), "importing")
		progress = func() { _ = bar.Add(1) }
	}

	inserted, err := store.InsertTourDates(ctx, db, dialect, ds.Records(), progress)
	if err != nil {
		return fmt.Errorf("import %s: %w", csvPath, err)
	}

	log.Info().
		Str("csv", csvPath).
		Int("rows", inserted).
		Msg("Import complete")
	return nil
}
