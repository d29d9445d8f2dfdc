package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

// Start creates the workspace, claims it, then starts the scheduler and the
// telegram connector.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.New("app is already started")
	}

	if err := os.MkdirAll(a.config.Workspace.Path, 0755); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	release, err := acquirePID(a.config.Workspace.Path)
	if err != nil {
		return err
	}
	a.releasePID = release

	if a.config.Heartbeat.Enabled {
		if err := a.scheduler.Start(ctx); err != nil {
			a.releasePID()
			return fmt.Errorf("failed to start heartbeat scheduler: %w", err)
		}
	} else {
		a.logger.Info("heartbeat scheduler disabled in config")
	}

	if err := a.telegram.Start(ctx); err != nil {
		a.scheduler.Stop()
		a.releasePID()
		return fmt.Errorf("failed to start telegram connector: %w", err)
	}

	if a.config.Metrics.Listen != "" {
		// event streams end when the base context is cancelled at shutdown
		baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		a.stopStreams = cancel
		a.server = &http.Server{
			Addr:        a.config.Metrics.Listen,
			Handler:     a.Handler(),
			BaseContext: func(net.Listener) context.Context { return baseCtx },
		}
	}

	a.started = true
	return nil
}

// Run starts the app and blocks until ctx is cancelled or the HTTP server
// fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.server != nil {
		srv := a.server
		g.Go(func() error {
			a.logger.Info("http server listening", logger.Field{Key: "addr", Value: srv.Addr})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.Shutdown()
	})

	a.logger.Info("nexcrew is running")
	return g.Wait()
}

// Shutdown stops every component. An in-flight heartbeat run is given
// ShutdownDrainTimeout to finish.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil
	}
	a.started = false

	a.logger.Info("shutting down")

	a.telegram.Stop()
	a.scheduler.Stop()

	drainCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownDrainTimeout)
	defer cancel()
	if err := a.scheduler.Wait(drainCtx); err != nil {
		a.logger.Warn("heartbeat run still in progress at shutdown",
			logger.Field{Key: "pending", Value: len(a.scheduler.Pending())})
	}

	var errs []error
	if a.server != nil {
		a.stopStreams()
		httpCtx, cancel := context.WithTimeout(context.Background(), constants.HTTPShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(httpCtx); err != nil {
			a.logger.Error("failed to stop http server", err)
			errs = append(errs, err)
		}
		a.server = nil
	}

	if a.releasePID != nil {
		a.releasePID()
		a.releasePID = nil
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
