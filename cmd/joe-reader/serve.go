package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joestump/joe-reader/internal/config"
	"github.com/joestump/joe-reader/internal/db"
	"github.com/joestump/joe-reader/internal/feeds"
	"github.com/joestump/joe-reader/internal/handler"
	"github.com/joestump/joe-reader/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the feed refresher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := setupLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			version, err := db.Migrate(database, cfg.DB.Driver)
			if err != nil {
				return err
			}
			logger.Debug("schema ready", "version", version)

			sessionManager := handler.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, cfg.SecureCookies)
			feedStore := store.NewFeedStore(database)
			itemStore := store.NewItemStore(database)
			manager := feeds.NewManager(feedStore, itemStore, feeds.Options{
				Timeout:     cfg.Feeds.FetchTimeout,
				Concurrency: cfg.Feeds.Concurrency,
				Logger:      logger.With("component", "feeds"),
			})

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				FeedStore:      feedStore,
				ItemStore:      itemStore,
				Manager:        manager,
				Logger:         logger,
			})
			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				manager.Run(ctx, cfg.Feeds.RefreshInterval)
				return nil
			})
			g.Go(func() error {
				logger.Info("listening", "addr", cfg.HTTP.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
