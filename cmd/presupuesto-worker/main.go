package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"presupuesto/internal/cli"
	"presupuesto/internal/config"
	"presupuesto/internal/log"
	"presupuesto/internal/sheets"
	gsheet "presupuesto/internal/sheets/google"
	"presupuesto/internal/sheets/memory"
	"presupuesto/internal/worker"
)

var args struct {
	EnvFile  []string      `help:"Env files to load before reading the environment." type:"existingfile" placeholder:"PATH"`
	DryRun   bool          `help:"Keep summaries in memory instead of writing to Google Sheets."`
	Interval time.Duration `help:"How often the current month is exported without an event; 0 disables it." default:"15m"`
}

func main() {
	ctx := kong.Parse(&args,
		kong.Name("presupuesto-worker"),
		kong.Description("Exports month summaries to Google Sheets when the ledger changes."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(run())
}

func run() error {
	cfg, err := cli.LoadConfig(args.EnvFile...)
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel)
	logger.Info("Starting presupuesto-worker", "dry_run", args.DryRun)

	if !args.DryRun {
		if err := cfg.ValidateExport(); err != nil {
			return err
		}
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	ledger, err := cli.OpenLedger(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer ledger.Close()

	writer, err := summaryWriter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	w := worker.NewExportWorker(ledger.Service, writer, worker.Config{
		SheetBase:         cfg.GoogleSheetName,
		ReconcileInterval: args.Interval,
	}, logger)

	// Without a broker a dry run exports once and reports what it wrote.
	if !cfg.EventsEnabled() {
		if err := w.ExportNow(ctx); err != nil {
			return err
		}
		if mem, ok := writer.(*memory.Store); ok {
			for _, name := range mem.Names() {
				fmt.Println(name)
			}
		}
		return nil
	}

	events, err := cli.ConnectEvents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	if err := w.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return cli.IgnoreCanceled(events.Consume(gctx, w.HandleEvent))
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		return w.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Worker shutdown complete")
	return nil
}

func summaryWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.SummaryWriter, error) {
	if args.DryRun {
		logger.Info("Dry run: summaries kept in memory")
		return memory.New(logger), nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
