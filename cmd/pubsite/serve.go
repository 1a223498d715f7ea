package main

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/pubsite"
)

const shutdownTimeout = 10 * time.Second

var (
	watch         bool
	watchDebounce time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API, feed and sitemap over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload content when files change")
	serveCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "delay before reloading after a change")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watch {
		w, err := startWatcher(ctx, app)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}

func startWatcher(ctx context.Context, app *pubsite.App) (*pubsite.Watcher, error) {
	dirs := []string{app.Config.ContentDir, filepath.Dir(app.Config.CatalogPath)}
	w, err := pubsite.NewWatcher(dirs, watchDebounce, func() {
		app.Cache.Invalidate()
		logger.Info("content changed, cache invalidated")
	}, logger.Named("watch"))
	if err != nil {
		return nil, err
	}
	w.Start(ctx)
	logger.Info("watching for changes", zap.Strings("dirs", dirs))
	return w, nil
}
