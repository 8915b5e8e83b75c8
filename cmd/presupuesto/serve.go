package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"presupuesto/internal/cli"
	apphttp "presupuesto/internal/http"
	"presupuesto/internal/log"
)

type ServeCmd struct {
	Port    string `help:"Port to listen on (defaults to PORT)."`
	NoWatch bool   `help:"Do not reload the JSON documents when another session changes them."`
}

func (c *ServeCmd) Run(a *App) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	port := c.Port
	if port == "" {
		port = a.cfg.Port
	}
	watch := a.cfg.WatchFiles && !c.NoWatch

	srv := apphttp.NewServer(":"+port, s.Service, apphttp.Options{
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
		Logger:             a.logger,
		Ready:              s.Ready,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Starting presupuesto server", "port", port, log.FieldBackend, a.cfg.DataBackend, "events", s.events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if watch {
		g.Go(func() error {
			return cli.IgnoreCanceled(s.Watch(gctx))
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}
