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

	"github.com/urfave/cli/v2"

	"github.com/itchan-dev/aurum/internal/router"
	"github.com/itchan-dev/aurum/internal/setup"
	"github.com/itchan-dev/aurum/shared/config"
	"github.com/itchan-dev/aurum/shared/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the http server",
		Action: func(c *cli.Context) error {
			cfg := config.MustLoad(c.String("config"))
			logger.Initialize(cfg.Env.LogLevel, cfg.Public.LogJSON)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup dependencies: %w", err)
	}
	deps.Sessions.StartBackgroundCleanup(ctx, cfg.Public.SessionCleanupInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Env.Port,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		// WriteTimeout stays zero: websocket streams outlive any fixed deadline
	}

	log := logger.Component("http")
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
