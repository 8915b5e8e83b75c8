package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"presupuesto/internal/log"
	"presupuesto/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		return f.createJSONBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONBackend(config Config) (*Result, error) {
	records := storage.NewJSONRecordFile(config.RecordsFile)
	budgets := storage.NewJSONBudgetFile(config.BudgetsFile)

	f.logger.Info("Initialized JSON backend",
		"records_file", config.RecordsFile,
		"budgets_file", config.BudgetsFile)

	return &Result{
		Records:    records,
		Budgets:    budgets,
		WatchPaths: []string{config.RecordsFile, config.BudgetsFile},
		Ping: func(ctx context.Context) error {
			// Missing documents are fine; an unusable directory is not.
			for _, p := range []string{config.RecordsFile, config.BudgetsFile} {
				dir := filepath.Dir(p)
				info, err := os.Stat(dir)
				if err != nil {
					return fmt.Errorf("data directory %s: %w", dir, err)
				}
				if !info.IsDir() {
					return fmt.Errorf("data directory %s is not a directory", dir)
				}
			}
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Records: repo,
		Budgets: repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}
