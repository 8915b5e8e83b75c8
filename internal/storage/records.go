package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
)

// DeleteCounts reports how many records a bulk delete removed.
type DeleteCounts struct {
	Incomes  int `json:"incomes"`
	Expenses int `json:"expenses"`
}

func (c DeleteCounts) Total() int { return c.Incomes + c.Expenses }

// RecordStore holds the income and expense collections.
//
// Every mutation is applied to a copy, persisted, and only then becomes the
// current state: a failed write leaves the store untouched.
type RecordStore struct {
	mu        sync.RWMutex
	persister RecordPersister
	taxonomy  core.Taxonomy
	logger    *log.Logger
	data      core.Records
}

func NewRecordStore(p RecordPersister, taxonomy core.Taxonomy, logger *log.Logger) *RecordStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecordStore{
		persister: p,
		taxonomy:  taxonomy,
		logger:    logger.WithComponent(log.ComponentStorage),
		data:      core.EmptyRecords(),
	}
}

// Load replaces the in-memory state with the persisted document.
//
// On a read failure the store falls back to empty collections and returns
// the error so the caller can report it. Records stored without an id get
// one, and expenses without a payment method get the taxonomy default; both
// fixes are written back.
func (s *RecordStore) Load(ctx context.Context) error {
	return s.load(ctx, false)
}

// Reload re-reads the document after it changed on disk. A document that
// cannot be read (e.g. caught half-written) leaves the last good state in
// place, so the next mutation does not overwrite the file with less than it
// held.
func (s *RecordStore) Reload(ctx context.Context) error {
	return s.load(ctx, true)
}

func (s *RecordStore) load(ctx context.Context, keepOnError bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.persister.LoadRecords(ctx)
	if err != nil {
		if keepOnError {
			s.logger.WarnContext(ctx, "Records unreadable, keeping last loaded state",
				log.FieldOperation, log.OpReload, log.FieldError, err)
			return err
		}
		s.data = core.EmptyRecords()
		s.logger.WarnContext(ctx, "Records unavailable, starting empty",
			log.FieldOperation, log.OpReload, log.FieldError, err)
		return err
	}

	if s.upgradeLegacy(&recs) {
		if err := s.persister.SaveRecords(ctx, recs); err != nil {
			s.logger.WarnContext(ctx, "Could not write back upgraded records",
				log.FieldOperation, log.OpReload, log.FieldError, err)
		} else {
			s.logger.InfoContext(ctx, "Assigned identifiers to legacy records")
		}
	}
	s.data = recs
	s.logger.DebugContext(ctx, "Records loaded",
		"incomes", len(recs.Incomes), "expenses", len(recs.Expenses))
	return nil
}

func (s *RecordStore) upgradeLegacy(r *core.Records) bool {
	changed := false
	for i := range r.Incomes {
		if r.Incomes[i].ID == "" {
			r.Incomes[i].ID = core.NewID()
			changed = true
		}
	}
	for i := range r.Expenses {
		if r.Expenses[i].ID == "" {
			r.Expenses[i].ID = core.NewID()
			changed = true
		}
		if r.Expenses[i].PaymentMethod == "" {
			r.Expenses[i].PaymentMethod = s.taxonomy.DefaultPaymentMethod()
			changed = true
		}
	}
	return changed
}

// Snapshot returns a copy of the current collections.
func (s *RecordStore) Snapshot() core.Records {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *RecordStore) Income(id string) (core.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfIncome(s.data.Incomes, id)
	if i < 0 {
		return core.Income{}, fmt.Errorf("income %s: %w", id, core.ErrNotFound)
	}
	return s.data.Incomes[i], nil
}

func (s *RecordStore) Expense(id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOfExpense(s.data.Expenses, id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return s.data.Expenses[i], nil
}

// AppendIncome validates in, assigns it a fresh id and persists it.
func (s *RecordStore) AppendIncome(ctx context.Context, in core.Income) (core.Income, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	if err := core.CheckDescriptionLen(in.Description); err != nil {
		return core.Income{}, err
	}
	in.ID = core.NewID()

	err := s.mutate(ctx, func(r *core.Records) error {
		r.Incomes = append(r.Incomes, in)
		return nil
	})
	if err != nil {
		return core.Income{}, err
	}
	return in, nil
}

// AppendExpense validates e against the taxonomy, assigns it a fresh id and
// persists it.
func (s *RecordStore) AppendExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = e.Normalize()
	if err := e.Validate(s.taxonomy); err != nil {
		return core.Expense{}, err
	}
	if err := core.CheckDescriptionLen(e.Description); err != nil {
		return core.Expense{}, err
	}
	e.ID = core.NewID()

	err := s.mutate(ctx, func(r *core.Records) error {
		r.Expenses = append(r.Expenses, e)
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// UpdateIncome replaces the income with the given id, keeping its position.
func (s *RecordStore) UpdateIncome(ctx context.Context, id string, in core.Income) (core.Income, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}
	in.ID = id

	err := s.mutate(ctx, func(r *core.Records) error {
		i := indexOfIncome(r.Incomes, id)
		if i < 0 {
			return fmt.Errorf("income %s: %w", id, core.ErrNotFound)
		}
		if strings.TrimSpace(r.Incomes[i].Description) != in.Description {
			if err := core.CheckDescriptionLen(in.Description); err != nil {
				return err
			}
		}
		r.Incomes[i] = in
		return nil
	})
	if err != nil {
		return core.Income{}, err
	}
	return in, nil
}

// UpdateExpense replaces the expense with the given id, keeping its position.
// The new values are checked against the current taxonomy.
func (s *RecordStore) UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	e = e.Normalize()
	if err := e.Validate(s.taxonomy); err != nil {
		return core.Expense{}, err
	}
	e.ID = id

	err := s.mutate(ctx, func(r *core.Records) error {
		i := indexOfExpense(r.Expenses, id)
		if i < 0 {
			return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
		}
		if strings.TrimSpace(r.Expenses[i].Description) != e.Description {
			if err := core.CheckDescriptionLen(e.Description); err != nil {
				return err
			}
		}
		r.Expenses[i] = e
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// Delete removes the record with the given id from the kind's collection.
func (s *RecordStore) Delete(ctx context.Context, kind core.Kind, id string) error {
	return s.mutate(ctx, func(r *core.Records) error {
		switch kind {
		case core.KindIncome:
			i := indexOfIncome(r.Incomes, id)
			if i < 0 {
				return fmt.Errorf("income %s: %w", id, core.ErrNotFound)
			}
			r.Incomes = slices.Delete(r.Incomes, i, i+1)
		case core.KindExpense:
			i := indexOfExpense(r.Expenses, id)
			if i < 0 {
				return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
			}
			r.Expenses = slices.Delete(r.Expenses, i, i+1)
		default:
			return core.ErrUnknownKind
		}
		return nil
	})
}

// DeleteMonth removes every record of the given kinds dated in month. No
// kinds means both. Nothing is written when no record matches.
func (s *RecordStore) DeleteMonth(ctx context.Context, month core.MonthKey, kinds ...core.Kind) (DeleteCounts, error) {
	if len(kinds) == 0 {
		kinds = []core.Kind{core.KindIncome, core.KindExpense}
	}
	var counts DeleteCounts
	err := s.mutate(ctx, func(r *core.Records) error {
		for _, k := range kinds {
			switch k {
			case core.KindIncome:
				before := len(r.Incomes)
				r.Incomes = slices.DeleteFunc(r.Incomes, func(in core.Income) bool {
					return in.Date.MonthKey() == month
				})
				counts.Incomes = before - len(r.Incomes)
			case core.KindExpense:
				before := len(r.Expenses)
				r.Expenses = slices.DeleteFunc(r.Expenses, func(e core.Expense) bool {
					return e.Date.MonthKey() == month
				})
				counts.Expenses = before - len(r.Expenses)
			default:
				return core.ErrUnknownKind
			}
		}
		if counts.Total() == 0 {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return DeleteCounts{}, err
	}
	return counts, nil
}

// Reset empties both collections and persists immediately.
func (s *RecordStore) Reset(ctx context.Context) error {
	return s.mutate(ctx, func(r *core.Records) error {
		*r = core.EmptyRecords()
		return nil
	})
}

// mutate applies fn to a copy of the state, persists the copy and commits it.
// fn may return errNoChange to skip the write.
func (s *RecordStore) mutate(ctx context.Context, fn func(*core.Records) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	if err := fn(&next); err != nil {
		if err == errNoChange {
			return nil
		}
		return err
	}
	if err := s.persister.SaveRecords(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save records", log.FieldError, err)
		return fmt.Errorf("save records: %w", err)
	}
	s.data = next
	return nil
}

func indexOfIncome(list []core.Income, id string) int {
	return slices.IndexFunc(list, func(in core.Income) bool { return in.ID == id })
}

func indexOfExpense(list []core.Expense, id string) int {
	return slices.IndexFunc(list, func(e core.Expense) bool { return e.ID == id })
}
