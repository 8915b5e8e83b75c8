package services

import (
	"context"
	"fmt"
	"strings"

	"presupuesto/internal/amqp"
	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/report"
	"presupuesto/internal/storage"
)

// ResetConfirmation must be typed exactly to wipe every record and budget.
const ResetConfirmation = "ELIMINAR TODO"

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// Outcome is the one-shot message describing a completed change, shown once
// by whichever surface triggered it.
type Outcome struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// DeleteScope selects which collections a month deletion touches.
type DeleteScope string

const (
	ScopeAll      DeleteScope = "all"
	ScopeIncomes  DeleteScope = "incomes"
	ScopeExpenses DeleteScope = "expenses"
)

// ParseDeleteScope accepts the scope names and their Spanish labels; empty
// means all.
func ParseDeleteScope(s string) (DeleteScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return ScopeAll, nil
	case "incomes", "ingresos", "solo ingresos":
		return ScopeIncomes, nil
	case "expenses", "gastos", "solo gastos":
		return ScopeExpenses, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownKind, s)
}

func (s DeleteScope) kinds() []core.Kind {
	switch s {
	case ScopeIncomes:
		return []core.Kind{core.KindIncome}
	case ScopeExpenses:
		return []core.Kind{core.KindExpense}
	default:
		return []core.Kind{core.KindIncome, core.KindExpense}
	}
}

// LedgerService orchestrates the record and budget stores, builds reports
// from their current snapshots and publishes change events.
type LedgerService struct {
	records   *storage.RecordStore
	budgets   *storage.BudgetStore
	taxonomy  core.Taxonomy
	publisher EventPublisher
	logger    *log.Logger
}

// NewLedgerService wires the stores together. publisher may be nil.
func NewLedgerService(records *storage.RecordStore, budgets *storage.BudgetStore, taxonomy core.Taxonomy, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		records:   records,
		budgets:   budgets,
		taxonomy:  taxonomy,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

func (s *LedgerService) Taxonomy() core.Taxonomy { return s.taxonomy }

// Load reads both documents. Read failures leave the affected store empty
// and are returned joined; the service stays usable.
func (s *LedgerService) Load(ctx context.Context) error {
	var errs []string
	if err := s.records.Load(ctx); err != nil {
		errs = append(errs, err.Error())
	}
	if err := s.budgets.Load(ctx); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", core.ErrStorageUnavailable, strings.Join(errs, "; "))
	}
	return nil
}

// Reload re-reads both documents. Unlike Load, a store whose document cannot
// be read keeps what it already holds.
func (s *LedgerService) Reload(ctx context.Context) error {
	var errs []string
	if err := s.records.Reload(ctx); err != nil {
		errs = append(errs, err.Error())
	}
	if err := s.budgets.Reload(ctx); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", core.ErrStorageUnavailable, strings.Join(errs, "; "))
	}
	return nil
}

func (s *LedgerService) ReloadRecords(ctx context.Context) error { return s.records.Reload(ctx) }
func (s *LedgerService) ReloadBudgets(ctx context.Context) error { return s.budgets.Reload(ctx) }

// Months lists every month with at least one record.
func (s *LedgerService) Months() []core.MonthKey {
	snap := s.records.Snapshot()
	return report.MonthsPresent(snap.Incomes, snap.Expenses)
}

// Report recomputes the full report for filter from the current state.
func (s *LedgerService) Report(filter core.MonthFilter) report.Report {
	return report.Build(s.taxonomy, s.records.Snapshot(), s.budgets.Snapshot(), filter)
}

func (s *LedgerService) Incomes(filter core.MonthFilter) []core.Income {
	return report.FilterIncomes(s.records.Snapshot().Incomes, filter)
}

func (s *LedgerService) Expenses(filter core.MonthFilter) []core.Expense {
	return report.FilterExpenses(s.records.Snapshot().Expenses, filter)
}

func (s *LedgerService) Income(id string) (core.Income, error)   { return s.records.Income(id) }
func (s *LedgerService) Expense(id string) (core.Expense, error) { return s.records.Expense(id) }

func (s *LedgerService) AddIncome(ctx context.Context, in core.Income) (core.Income, Outcome, error) {
	saved, err := s.records.AppendIncome(ctx, in)
	if err != nil {
		return core.Income{}, Outcome{}, s.fail(ctx, log.OpCreate, err)
	}
	s.logRecord(ctx, log.OpCreate, core.KindIncome, saved.ID, saved.Amount)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventRecordCreated, string(saved.Date.MonthKey())).ForRecord(string(core.KindIncome), saved.ID))
	return saved, Outcome{
		Action:  "income_created",
		Message: fmt.Sprintf("Ingreso registrado: %s - %s", saved.Amount.Display(), saved.Description),
	}, nil
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, Outcome, error) {
	saved, err := s.records.AppendExpense(ctx, e)
	if err != nil {
		return core.Expense{}, Outcome{}, s.fail(ctx, log.OpCreate, err)
	}
	s.logRecord(ctx, log.OpCreate, core.KindExpense, saved.ID, saved.Amount)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventRecordCreated, string(saved.Date.MonthKey())).ForRecord(string(core.KindExpense), saved.ID))
	return saved, Outcome{
		Action:  "expense_created",
		Message: fmt.Sprintf("Gasto registrado: %s - %s (%s)", saved.Amount.Display(), saved.Description, saved.Category),
	}, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, id string, in core.Income) (core.Income, Outcome, error) {
	before, err := s.records.Income(id)
	if err != nil {
		return core.Income{}, Outcome{}, s.fail(ctx, log.OpUpdate, err)
	}
	saved, err := s.records.UpdateIncome(ctx, id, in)
	if err != nil {
		return core.Income{}, Outcome{}, s.fail(ctx, log.OpUpdate, err)
	}
	s.logRecord(ctx, log.OpUpdate, core.KindIncome, id, saved.Amount)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventRecordUpdated,
		string(before.Date.MonthKey()), string(saved.Date.MonthKey())).ForRecord(string(core.KindIncome), id))
	return saved, Outcome{
		Action:  "income_updated",
		Message: fmt.Sprintf("Ingreso actualizado: %s - %s", saved.Amount.Display(), saved.Description),
	}, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, Outcome, error) {
	before, err := s.records.Expense(id)
	if err != nil {
		return core.Expense{}, Outcome{}, s.fail(ctx, log.OpUpdate, err)
	}
	saved, err := s.records.UpdateExpense(ctx, id, e)
	if err != nil {
		return core.Expense{}, Outcome{}, s.fail(ctx, log.OpUpdate, err)
	}
	s.logRecord(ctx, log.OpUpdate, core.KindExpense, id, saved.Amount)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventRecordUpdated,
		string(before.Date.MonthKey()), string(saved.Date.MonthKey())).ForRecord(string(core.KindExpense), id))
	return saved, Outcome{
		Action:  "expense_updated",
		Message: fmt.Sprintf("Gasto actualizado: %s - %s (%s)", saved.Amount.Display(), saved.Description, saved.Category),
	}, nil
}

// DeleteRecord removes one income or expense by id.
func (s *LedgerService) DeleteRecord(ctx context.Context, kind core.Kind, id string) (Outcome, error) {
	var (
		desc  string
		month core.MonthKey
	)
	switch kind {
	case core.KindIncome:
		in, err := s.records.Income(id)
		if err != nil {
			return Outcome{}, s.fail(ctx, log.OpDelete, err)
		}
		desc, month = in.Description, in.Date.MonthKey()
	case core.KindExpense:
		e, err := s.records.Expense(id)
		if err != nil {
			return Outcome{}, s.fail(ctx, log.OpDelete, err)
		}
		desc, month = e.Description, e.Date.MonthKey()
	default:
		return Outcome{}, s.fail(ctx, log.OpDelete, core.ErrUnknownKind)
	}

	if err := s.records.Delete(ctx, kind, id); err != nil {
		return Outcome{}, s.fail(ctx, log.OpDelete, err)
	}
	s.logger.InfoContext(ctx, "Record deleted", log.FieldKind, kind, log.FieldRecordID, id)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventRecordDeleted, string(month)).ForRecord(string(kind), id))

	label := "Ingreso"
	if kind == core.KindExpense {
		label = "Gasto"
	}
	return Outcome{
		Action:  string(kind) + "_deleted",
		Message: fmt.Sprintf("%s eliminado: %s", label, desc),
	}, nil
}

// DeleteMonth removes the records of scope dated in month. confirmed must be
// true; the caller is expected to have shown what will be deleted.
func (s *LedgerService) DeleteMonth(ctx context.Context, month core.MonthKey, scope DeleteScope, confirmed bool) (storage.DeleteCounts, Outcome, error) {
	if _, err := core.ParseMonthKey(string(month)); err != nil {
		return storage.DeleteCounts{}, Outcome{}, s.fail(ctx, log.OpDeleteMonth, err)
	}
	if !confirmed {
		return storage.DeleteCounts{}, Outcome{}, s.fail(ctx, log.OpDeleteMonth, core.ErrConfirmationRequired)
	}

	counts, err := s.records.DeleteMonth(ctx, month, scope.kinds()...)
	if err != nil {
		return storage.DeleteCounts{}, Outcome{}, s.fail(ctx, log.OpDeleteMonth, err)
	}
	s.logger.InfoContext(ctx, "Month deleted",
		log.FieldMonth, month, "incomes", counts.Incomes, "expenses", counts.Expenses)
	if counts.Total() > 0 {
		s.publish(ctx, amqp.NewLedgerEvent(amqp.EventMonthDeleted, string(month)))
	}

	msg := fmt.Sprintf("Eliminación completada para %s:", month)
	if counts.Incomes > 0 {
		msg += fmt.Sprintf(" %d ingresos eliminados.", counts.Incomes)
	}
	if counts.Expenses > 0 {
		msg += fmt.Sprintf(" %d gastos eliminados.", counts.Expenses)
	}
	if counts.Total() == 0 {
		msg = fmt.Sprintf("No hay registros en %s para eliminar.", month)
	}
	return counts, Outcome{Action: "month_deleted", Message: msg}, nil
}

// Reset wipes every record and every budget. confirmation must equal
// ResetConfirmation exactly.
func (s *LedgerService) Reset(ctx context.Context, confirmation string) (Outcome, error) {
	if confirmation != ResetConfirmation {
		return Outcome{}, s.fail(ctx, log.OpReset, core.ErrConfirmationMismatch)
	}
	if err := s.records.Reset(ctx); err != nil {
		return Outcome{}, s.fail(ctx, log.OpReset, err)
	}
	if err := s.budgets.Reset(ctx); err != nil {
		return Outcome{}, s.fail(ctx, log.OpReset, err)
	}
	s.logger.WarnContext(ctx, "Ledger reset", log.FieldOperation, log.OpReset)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventLedgerReset))
	return Outcome{
		Action:  "reset",
		Message: "Todos los registros fueron eliminados completamente del sistema.",
	}, nil
}

// Budget returns month's budget with every category present, without
// creating the month.
func (s *LedgerService) Budget(month core.MonthKey) (map[string]core.Money, error) {
	if _, err := core.ParseMonthKey(string(month)); err != nil {
		return nil, err
	}
	return s.budgets.Month(month), nil
}

// EnsureBudgetMonth creates month's budget with every category at zero.
func (s *LedgerService) EnsureBudgetMonth(ctx context.Context, month core.MonthKey) (map[string]core.Money, error) {
	view, err := s.budgets.EnsureMonth(ctx, month)
	if err != nil {
		return nil, s.fail(ctx, log.OpSetBudget, err)
	}
	return view, nil
}

func (s *LedgerService) SetBudget(ctx context.Context, month core.MonthKey, category string, amount core.Money) (Outcome, error) {
	if err := s.budgets.SetCategoryBudget(ctx, month, category, amount); err != nil {
		return Outcome{}, s.fail(ctx, log.OpSetBudget, err)
	}
	s.logger.InfoContext(ctx, "Budget set",
		log.FieldMonth, month, log.FieldCategory, category, log.FieldAmountCents, amount.Cents)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventBudgetChanged, string(month)))
	return Outcome{
		Action:  "budget_set",
		Message: fmt.Sprintf("Presupuesto guardado para %s: %s %s", month, category, amount.Display()),
	}, nil
}

// publish sends ev when a publisher is configured. Failures are logged only:
// the change is already persisted.
func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEvent, ev.Type, log.FieldError, err)
	}
}

func (s *LedgerService) fail(ctx context.Context, op string, err error) error {
	fields := log.NewFields().WithOperation(op).WithError(err)
	switch {
	case core.IsValidation(err):
		s.logger.DebugContext(ctx, "Rejected input", fields.WithErrorType(log.ErrorTypeValidation).ToSlice()...)
	case core.IsNotFound(err):
		s.logger.DebugContext(ctx, "Record not found", fields.WithErrorType(log.ErrorTypeNotFound).ToSlice()...)
	default:
		s.logger.ErrorContext(ctx, "Ledger operation failed", fields.WithErrorType(log.ErrorTypeStorage).ToSlice()...)
	}
	return err
}

func (s *LedgerService) logRecord(ctx context.Context, op string, kind core.Kind, id string, amount core.Money) {
	s.logger.InfoContext(ctx, "Record saved",
		log.NewFields().WithOperation(op).WithRecord(string(kind), id, amount.Cents).ToSlice()...)
}
