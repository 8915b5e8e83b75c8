package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"presupuesto/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists records and budgets in a SQLite database. Saves
// replace the whole collection inside one transaction, so the database always
// mirrors the in-memory document.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the stores.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) LoadRecords(ctx context.Context) (core.Records, error) {
	out := core.EmptyRecords()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, description, date FROM incomes ORDER BY position`)
	if err != nil {
		return core.EmptyRecords(), unavailable("query incomes in", r.path, err)
	}
	if out.Incomes, err = scanIncomes(rows); err != nil {
		return core.EmptyRecords(), unavailable("read incomes in", r.path, err)
	}

	rows, err = r.db.QueryContext(ctx,
		`SELECT id, amount_cents, description, category, subcategory, payment_method, date
		   FROM expenses ORDER BY position`)
	if err != nil {
		return core.EmptyRecords(), unavailable("query expenses in", r.path, err)
	}
	if out.Expenses, err = scanExpenses(rows); err != nil {
		return core.EmptyRecords(), unavailable("read expenses in", r.path, err)
	}
	return out, nil
}

// rowIterator is the part of *sql.Rows the scanners use.
type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// scanIncomes drains and closes rows.
func scanIncomes(rows rowIterator) ([]core.Income, error) {
	defer rows.Close()
	out := []core.Income{}
	for rows.Next() {
		var (
			in   core.Income
			date string
			err  error
		)
		if err := rows.Scan(&in.ID, &in.Amount.Cents, &in.Description, &date); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if in.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("income %s date %q: %w", in.ID, date, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanExpenses drains and closes rows.
func scanExpenses(rows rowIterator) ([]core.Expense, error) {
	defer rows.Close()
	out := []core.Expense{}
	for rows.Next() {
		var (
			e    core.Expense
			date string
			err  error
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &e.Description, &e.Category, &e.Subcategory, &e.PaymentMethod, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s date %q: %w", e.ID, date, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) SaveRecords(ctx context.Context, recs core.Records) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM incomes`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
			return err
		}

		insIncome, err := tx.PrepareContext(ctx,
			`INSERT INTO incomes (id, position, amount_cents, description, date) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insIncome.Close()
		for i, in := range recs.Incomes {
			if _, err := insIncome.ExecContext(ctx, in.ID, i, in.Amount.Cents, in.Description, in.Date.String()); err != nil {
				return fmt.Errorf("insert income %s: %w", in.ID, err)
			}
		}

		insExpense, err := tx.PrepareContext(ctx,
			`INSERT INTO expenses (id, position, amount_cents, description, category, subcategory, payment_method, date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer insExpense.Close()
		for i, e := range recs.Expenses {
			if _, err := insExpense.ExecContext(ctx, e.ID, i, e.Amount.Cents, e.Description,
				e.Category, e.Subcategory, e.PaymentMethod, e.Date.String()); err != nil {
				return fmt.Errorf("insert expense %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) LoadBudgets(ctx context.Context) (core.Budgets, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT month, category, amount_cents FROM budgets`)
	if err != nil {
		return core.Budgets{}, unavailable("query budgets in", r.path, err)
	}
	defer rows.Close()

	out := core.Budgets{}
	for rows.Next() {
		var (
			month, category string
			cents           int64
		)
		if err := rows.Scan(&month, &category, &cents); err != nil {
			return core.Budgets{}, unavailable("scan budget in", r.path, err)
		}
		key := core.MonthKey(month)
		if out[key] == nil {
			out[key] = map[string]core.Money{}
		}
		out[key][category] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return core.Budgets{}, unavailable("read budgets in", r.path, err)
	}
	return out, nil
}

// SaveBudgets replaces every budget row. Months without categories are not
// representable in the table and come back absent on load.
func (r *SQLiteRepository) SaveBudgets(ctx context.Context, b core.Budgets) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM budgets`); err != nil {
			return err
		}
		ins, err := tx.PrepareContext(ctx,
			`INSERT INTO budgets (month, category, amount_cents) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer ins.Close()
		for month, cats := range b {
			for cat, amount := range cats {
				if _, err := ins.ExecContext(ctx, string(month), cat, amount.Cents); err != nil {
					return fmt.Errorf("insert budget %s/%s: %w", month, cat, err)
				}
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction on", r.path, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return unavailable("write", r.path, err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("commit", r.path, err)
	}
	return nil
}
