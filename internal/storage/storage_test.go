package storage

import (
	"context"
	"errors"
	"sync"

	"presupuesto/internal/core"
)

// memPersister keeps documents in memory and can be told to fail.
type memPersister struct {
	mu       sync.Mutex
	records  core.Records
	budgets  core.Budgets
	saves    int
	failSave bool
	failLoad bool
}

var errDiskFull = errors.New("disk full")

func (m *memPersister) LoadRecords(ctx context.Context) (core.Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return core.EmptyRecords(), unavailable("read", "mem", errDiskFull)
	}
	if m.records.Incomes == nil && m.records.Expenses == nil {
		return core.EmptyRecords(), nil
	}
	return m.records.Clone(), nil
}

func (m *memPersister) SaveRecords(ctx context.Context, r core.Records) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return unavailable("write", "mem", errDiskFull)
	}
	m.saves++
	m.records = r.Clone()
	return nil
}

func (m *memPersister) LoadBudgets(ctx context.Context) (core.Budgets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return core.Budgets{}, unavailable("read", "mem", errDiskFull)
	}
	if m.budgets == nil {
		return core.Budgets{}, nil
	}
	return m.budgets.Clone(), nil
}

func (m *memPersister) SaveBudgets(ctx context.Context, b core.Budgets) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return unavailable("write", "mem", errDiskFull)
	}
	m.saves++
	m.budgets = b.Clone()
	return nil
}

func salary() core.Income {
	return core.Income{Amount: core.Money{Cents: 100000}, Description: "Salario", Date: core.NewDate(2025, 3, 1)}
}

func rent() core.Expense {
	return core.Expense{
		Amount:        core.Money{Cents: 120000},
		Description:   "Renta",
		Category:      "Vivienda",
		Subcategory:   "Hipoteca/Alquiler",
		PaymentMethod: "Transferencia",
		Date:          core.NewDate(2025, 3, 5),
	}
}
