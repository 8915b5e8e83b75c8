package backend

import (
	"context"

	"presupuesto/internal/storage"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result holds the persisters for both stores and what the caller needs to
// run them.
type Result struct {
	Records storage.RecordPersister
	Budgets storage.BudgetPersister

	// WatchPaths lists files that other sessions may rewrite; empty for
	// backends that are not file based.
	WatchPaths []string

	// Ping reports whether the backing storage is reachable.
	Ping func(ctx context.Context) error

	Cleanup CleanupFunc
}

// Close runs Cleanup when set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates persisters based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// JSON documents
	RecordsFile string
	BudgetsFile string

	// SQLite
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	JSONBackend   BackendType = "json"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case JSONBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
