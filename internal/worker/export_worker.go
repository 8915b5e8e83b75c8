package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"presupuesto/internal/amqp"
	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/report"
	"presupuesto/internal/sheets"
)

// ReportSource reloads the stores and builds reports from them.
// *services.LedgerService implements it.
type ReportSource interface {
	Reload(ctx context.Context) error
	Report(filter core.MonthFilter) report.Report
}

// Config holds configuration for the export worker
type Config struct {
	// SheetBase prefixes every summary sheet name (default: "Resumen")
	SheetBase string

	// ReconcileInterval is how often the current month and the overall
	// summary are exported without an event (default: 15m). Zero disables it.
	ReconcileInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		SheetBase:         "Resumen",
		ReconcileInterval: 15 * time.Minute,
	}
}

// ExportWorker writes month summaries to a spreadsheet whenever the ledger
// changes.
type ExportWorker struct {
	source ReportSource
	writer sheets.SummaryWriter
	config Config
	logger *log.Logger

	// Serializes exports between the consumer and the reconcile loop.
	exportMu sync.Mutex

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportWorker(source ReportSource, writer sheets.SummaryWriter, config Config, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if config.SheetBase == "" {
		config.SheetBase = DefaultConfig().SheetBase
	}
	return &ExportWorker{
		source: source,
		writer: writer,
		config: config,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single ledger event from AMQP: the stores are
// reloaded and the summary of every month named by the event is rewritten,
// followed by the overall summary.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEvent, ev.Type,
		"months", ev.Months,
		"timestamp", ev.Timestamp)

	filters := make([]core.MonthFilter, 0, len(ev.Months)+1)
	for _, m := range ev.Months {
		month, err := core.ParseMonthKey(m)
		if err != nil {
			w.logger.WarnContext(ctx, "Skipping invalid month in event", log.FieldMonth, m, log.FieldEvent, ev.Type)
			continue
		}
		filters = append(filters, core.MonthFilter(month))
	}
	filters = append(filters, core.MonthFilter(core.AllMonths))

	return w.export(ctx, filters)
}

// ExportNow rewrites the summary of the current month and the overall one.
func (w *ExportWorker) ExportNow(ctx context.Context) error {
	return w.export(ctx, []core.MonthFilter{
		core.MonthFilter(core.CurrentMonth()),
		core.MonthFilter(core.AllMonths),
	})
}

func (w *ExportWorker) export(ctx context.Context, filters []core.MonthFilter) error {
	w.exportMu.Lock()
	defer w.exportMu.Unlock()

	if err := w.source.Reload(ctx); err != nil {
		return fmt.Errorf("reload ledger: %w", err)
	}

	for _, f := range filters {
		summary := sheets.NewSummary(w.config.SheetBase, w.source.Report(f))
		ref, err := w.writer.WriteSummary(ctx, summary)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to export summary",
				log.FieldMonth, f, log.FieldError, err)
			return fmt.Errorf("export %s: %w", summary.Sheet, err)
		}
		w.logger.InfoContext(ctx, "Exported summary",
			log.FieldMonth, f,
			log.FieldSheetRange, ref)
	}
	return nil
}

// Start begins the reconcile loop. Returns an error if already running.
func (w *ExportWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("export worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(ctx)

	w.logger.InfoContext(ctx, "Export worker started",
		"reconcile_interval", w.config.ReconcileInterval)
	return nil
}

// Stop gracefully stops the loop and waits for completion.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.running = false
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Export worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Export worker stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the reconcile loop is running
func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	// Export immediately on startup to recover from missed events.
	if err := w.ExportNow(ctx); err != nil {
		w.logger.WarnContext(ctx, "Startup export failed", log.FieldError, err)
	}

	if w.config.ReconcileInterval <= 0 {
		select {
		case <-w.stopCh:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(w.config.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ExportNow(ctx); err != nil {
				w.logger.WarnContext(ctx, "Reconcile export failed", log.FieldError, err)
			}
		}
	}
}
