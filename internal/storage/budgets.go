package storage

import (
	"context"
	"fmt"
	"sync"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
)

// BudgetStore holds the per-month category budgets.
type BudgetStore struct {
	mu        sync.RWMutex
	persister BudgetPersister
	taxonomy  core.Taxonomy
	logger    *log.Logger
	data      core.Budgets
}

func NewBudgetStore(p BudgetPersister, taxonomy core.Taxonomy, logger *log.Logger) *BudgetStore {
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetStore{
		persister: p,
		taxonomy:  taxonomy,
		logger:    logger.WithComponent(log.ComponentStorage),
		data:      core.Budgets{},
	}
}

// Load replaces the in-memory budgets with the persisted document, falling
// back to an empty map (and returning the error) when it cannot be read.
func (s *BudgetStore) Load(ctx context.Context) error {
	return s.load(ctx, false)
}

// Reload is Load for a document that changed on disk: a read failure keeps
// the budgets already in memory.
func (s *BudgetStore) Reload(ctx context.Context) error {
	return s.load(ctx, true)
}

func (s *BudgetStore) load(ctx context.Context, keepOnError bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.persister.LoadBudgets(ctx)
	if err != nil {
		if keepOnError {
			s.logger.WarnContext(ctx, "Budgets unreadable, keeping last loaded state",
				log.FieldOperation, log.OpReload, log.FieldError, err)
			return err
		}
		s.data = core.Budgets{}
		s.logger.WarnContext(ctx, "Budgets unavailable, starting empty",
			log.FieldOperation, log.OpReload, log.FieldError, err)
		return err
	}
	s.data = b
	return nil
}

// Snapshot returns a copy of every month's budget.
func (s *BudgetStore) Snapshot() core.Budgets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Month returns month's budget with every taxonomy category present. It does
// not create the month.
func (s *BudgetStore) Month(month core.MonthKey) map[string]core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Month(month, s.taxonomy)
}

// EnsureMonth creates month with every taxonomy category at zero and fills
// categories missing from an existing month. Calling it again is a no-op.
func (s *BudgetStore) EnsureMonth(ctx context.Context, month core.MonthKey) (map[string]core.Money, error) {
	if _, err := core.ParseMonthKey(string(month)); err != nil {
		return nil, err
	}
	var view map[string]core.Money
	err := s.mutate(ctx, func(b core.Budgets) error {
		if !fillMonth(b, month, s.taxonomy) {
			view = b.Month(month, s.taxonomy)
			return errNoChange
		}
		view = b.Month(month, s.taxonomy)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SetCategoryBudget sets the budget of category for month. The month is
// created first when absent. amount may be zero but not negative.
func (s *BudgetStore) SetCategoryBudget(ctx context.Context, month core.MonthKey, category string, amount core.Money) error {
	if _, err := core.ParseMonthKey(string(month)); err != nil {
		return err
	}
	if amount.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if !s.taxonomy.HasCategory(category) {
		return fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
	}
	return s.mutate(ctx, func(b core.Budgets) error {
		fillMonth(b, month, s.taxonomy)
		b[month][category] = amount
		return nil
	})
}

// Reset removes every budget and persists immediately.
func (s *BudgetStore) Reset(ctx context.Context) error {
	return s.mutate(ctx, func(b core.Budgets) error {
		for month := range b {
			delete(b, month)
		}
		return nil
	})
}

func (s *BudgetStore) mutate(ctx context.Context, fn func(core.Budgets) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.Clone()
	if err := fn(next); err != nil {
		if err == errNoChange {
			return nil
		}
		return err
	}
	if err := s.persister.SaveBudgets(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save budgets", log.FieldError, err)
		return fmt.Errorf("save budgets: %w", err)
	}
	s.data = next
	return nil
}

// fillMonth adds month and any missing category at zero. It reports whether
// b changed.
func fillMonth(b core.Budgets, month core.MonthKey, t core.Taxonomy) bool {
	changed := false
	cats, ok := b[month]
	if !ok {
		cats = make(map[string]core.Money, len(t.Categories))
		b[month] = cats
		changed = true
	}
	for _, c := range t.Categories {
		if _, ok := cats[c.Name]; !ok {
			cats[c.Name] = core.Money{}
			changed = true
		}
	}
	return changed
}
