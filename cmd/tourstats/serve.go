package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tourstats/internal/config"
	"tourstats/internal/logging"
	"tourstats/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Long: `Load the tour dataset and serve the dashboard API over HTTP.

Send SIGHUP to reload the dataset from its source without restarting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := datasetSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	dataStore := store.New(source)
	if err := dataStore.Reload(ctx); err != nil {
		logging.Fatal(err, "Failed to load dataset")
	}

	go reloadOnHangup(ctx, dataStore)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newHTTPHandler(cfg, dataStore),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// datasetSource picks the CSV file when configured, otherwise the database.
func datasetSource(ctx context.Context, cfg *config.Config) (store.Source, func(), error) {
	if cfg.Dataset.Path != "" {
		if cfg.Dataset.DatabaseURL != "" {
			logging.Warn("DATASET_PATH is set; ignoring DATABASE_URL")
		}
		log.Info().Str("path", cfg.Dataset.Path).Msg("Reading dataset from CSV")
		return store.CSVSource(cfg.Dataset.Path), func() {}, nil
	}

	db, _, err := openDatabase(ctx, cfg.Dataset.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("Reading dataset from database")
	return store.SQLSource(db), func() { _ = db.Close() }, nil
}

func reloadOnHangup(ctx context.Context, dataStore *store.Store) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := dataStore.Reload(ctx); err != nil {
				logging.Error(err, "Dataset reload failed; keeping previous dataset")
			}
		}
	}
}
