// Package storage keeps the income/expense records and the monthly budgets.
//
// The stores hold the current state in memory and write it through to a
// persister on every mutation. Two persisters exist: one JSON document per
// collection (the default, compatible with documents written by earlier
// versions) and a SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"

	"presupuesto/internal/core"
)

// RecordPersister loads and saves the whole records document.
//
// LoadRecords returns empty collections and a nil error when nothing has been
// saved yet. Any other read failure returns empty collections together with
// an error wrapping core.ErrStorageUnavailable.
type RecordPersister interface {
	LoadRecords(ctx context.Context) (core.Records, error)
	SaveRecords(ctx context.Context, r core.Records) error
}

// BudgetPersister loads and saves the whole budgets document, with the same
// absence semantics as RecordPersister.
type BudgetPersister interface {
	LoadBudgets(ctx context.Context) (core.Budgets, error)
	SaveBudgets(ctx context.Context, b core.Budgets) error
}

func unavailable(op, target string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", core.ErrStorageUnavailable, op, target, err)
}

// errNoChange lets a mutation skip the write when nothing changed.
var errNoChange = errors.New("no change")
