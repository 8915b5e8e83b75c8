package cli

import (
	"context"
	"errors"
	"fmt"

	"presupuesto/internal/amqp"
	"presupuesto/internal/backend"
	"presupuesto/internal/config"
	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/services"
	"presupuesto/internal/storage"
)

// Ledger bundles the loaded stores, the service on top of them and the
// storage backend they persist to.
type Ledger struct {
	Service  *services.LedgerService
	Taxonomy core.Taxonomy
	backend  *backend.Result
	logger   *log.Logger
}

// OpenLedger loads the taxonomy, creates the configured backend and loads
// both stores. publisher may be nil.
func OpenLedger(ctx context.Context, cfg *config.Config, publisher services.EventPublisher, logger *log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = log.Discard()
	}
	tax, err := core.LoadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}

	records := storage.NewRecordStore(res.Records, tax, logger)
	budgets := storage.NewBudgetStore(res.Budgets, tax, logger)
	svc := services.NewLedgerService(records, budgets, tax, publisher, logger)
	if err := svc.Load(ctx); err != nil {
		// Stores already fell back to empty state; keep running.
		logger.WarnContext(ctx, "Ledger loaded with unreadable documents", log.FieldError, err)
	}

	return &Ledger{Service: svc, Taxonomy: tax, backend: res, logger: logger}, nil
}

// Ready checks the backend is reachable.
func (l *Ledger) Ready(ctx context.Context) error {
	if l.backend.Ping == nil {
		return nil
	}
	return l.backend.Ping(ctx)
}

// Watch reloads the stores whenever their documents change on disk, until
// ctx is cancelled. Backends without files return immediately.
func (l *Ledger) Watch(ctx context.Context) error {
	paths := l.backend.WatchPaths
	if len(paths) < 2 {
		return nil
	}
	w := storage.NewWatcher(l.logger)
	if err := w.Add(paths[0], l.Service.ReloadRecords); err != nil {
		return err
	}
	if err := w.Add(paths[1], l.Service.ReloadBudgets); err != nil {
		return err
	}
	return w.Run(ctx)
}

// Close releases the backend.
func (l *Ledger) Close() error {
	return l.backend.Close()
}

// ConnectEvents opens the AMQP client when events are enabled. It returns
// nil without error when AMQP_URL is unset.
func ConnectEvents(ctx context.Context, cfg *config.Config, logger *log.Logger) (*amqp.Client, error) {
	if !cfg.EventsEnabled() {
		return nil, nil
	}
	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	return client, nil
}

// Publisher adapts an optional client to services.EventPublisher, keeping a
// nil client a nil interface.
func Publisher(c *amqp.Client) services.EventPublisher {
	if c == nil {
		return nil
	}
	return c
}

// IgnoreCanceled drops context cancellation, which is how every long
// running component reports a normal shutdown.
func IgnoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
