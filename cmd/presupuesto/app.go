package main

import (
	"context"
	"io"

	"presupuesto/internal/amqp"
	"presupuesto/internal/cli"
	"presupuesto/internal/config"
	"presupuesto/internal/log"
)

// App is bound into every command's Run method.
type App struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
}

// session is an opened ledger plus the optional event client.
type session struct {
	*cli.Ledger
	events *amqp.Client
}

func (s *session) Close() {
	if s.events != nil {
		_ = s.events.Close()
	}
	_ = s.Ledger.Close()
}

// open loads the ledger. Changes are published when AMQP is configured; a
// broker that cannot be reached only disables events.
func (a *App) open(ctx context.Context) (*session, error) {
	events, err := cli.ConnectEvents(ctx, a.cfg, a.logger)
	if err != nil {
		a.logger.Warn("Ledger events disabled", log.FieldError, err)
		events = nil
	}
	l, err := cli.OpenLedger(ctx, a.cfg, cli.Publisher(events), a.logger)
	if err != nil {
		if events != nil {
			_ = events.Close()
		}
		return nil, err
	}
	return &session{Ledger: l, events: events}, nil
}
