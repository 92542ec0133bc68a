// Package ledger owns one user's budget settings and expense records. It
// validates every mutation, derives the balance and category aggregates, and
// writes the full state to a store.Store after each change.
//
// A Ledger is not safe for concurrent use; callers run one operation at a
// time (see package session).
package ledger

import (
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
	"budgetapp/internal/models"
	"budgetapp/internal/store"
)

// ExpenseInput carries the caller-editable fields of an expense. Category must
// already be resolved (see models.ResolveCategory).
type ExpenseInput struct {
	Title     string
	Amount    models.Money
	Category  string
	Note      string
	Recurring models.Recurrence
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used to stamp new expenses.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger overrides the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Ledger) { l.log = log }
}

// Ledger is the aggregate root for one user's budget.
type Ledger struct {
	store  store.Store
	userID string
	state  models.LedgerState
	now    func() time.Time
	log    *zap.SugaredLogger
}

// New creates an empty ledger bound to no user. Call LoadFor before mutating.
func New(st store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Named("ledger")
	}
	return l
}

// Open creates a ledger and loads userID's persisted state.
func Open(st store.Store, userID string, opts ...Option) (*Ledger, error) {
	l := New(st, opts...)
	if err := l.LoadFor(userID); err != nil {
		return nil, err
	}
	return l, nil
}

// UserID returns the user the ledger is loaded for.
func (l *Ledger) UserID() string {
	return l.userID
}

// LoadFor replaces the in-memory state with userID's stored record. A missing
// record, or missing fields within it, load as zero values.
func (l *Ledger) LoadFor(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "user id is required")
	}

	raw, ok, err := l.store.Get(store.LedgerKey(userID))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var state models.LedgerState
	if ok {
		state, err = decodeState(raw)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	l.userID = userID
	l.state = l.sanitize(state)
	l.log.Debugw("ledger loaded", "user", userID, "expenses", len(l.state.Expenses), "found", ok)
	return nil
}

// Persist writes the current state under the ledger's user key.
func (l *Ledger) Persist() error {
	return l.write(l.state)
}

// SetBudget replaces the budget and daily income. A negative budget is
// rejected; a daily income outside [0, MaxMoney] is treated as zero.
func (l *Ledger) SetBudget(budget, dailyIncome models.Money) error {
	if budget < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget must be a non-negative number")
	}
	if budget > models.MaxMoney {
		return errTooLarge("budget")
	}
	if dailyIncome < 0 || dailyIncome > models.MaxMoney {
		dailyIncome = 0
	}

	next := l.snapshot()
	next.Budget = budget
	next.DailyIncome = dailyIncome
	return l.commit(next)
}

// SetSavingsGoal replaces the savings goal. A negative goal is rejected.
func (l *Ledger) SetSavingsGoal(goal models.Money) error {
	if goal < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "savings goal must be a non-negative number")
	}
	if goal > models.MaxMoney {
		return errTooLarge("savings goal")
	}

	next := l.snapshot()
	next.SavingsGoal = goal
	return l.commit(next)
}

// AddExpense validates in, appends a new expense dated now and returns its id.
func (l *Ledger) AddExpense(in ExpenseInput) (int64, error) {
	in, err := normalize(in)
	if err != nil {
		return 0, err
	}
	if in.Amount > models.MaxMoney-l.TotalExpenses() {
		return 0, errTooLarge("total expenses")
	}

	now := l.now()
	next := l.snapshot()
	expense := models.Expense{
		ID:        nextID(next.Expenses, now),
		Title:     in.Title,
		Amount:    in.Amount,
		Category:  in.Category,
		Note:      in.Note,
		Recurring: in.Recurring,
		Date:      now,
	}
	next.Expenses = append(next.Expenses, expense)

	if err := l.commit(next); err != nil {
		return 0, err
	}
	return expense.ID, nil
}

// UpdateExpense overwrites every editable field of expense id. The id and
// original date are kept.
func (l *Ledger) UpdateExpense(id int64, in ExpenseInput) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return apperrors.ErrExpenseNotFound
	}
	in, err := normalize(in)
	if err != nil {
		return err
	}
	current := l.state.Expenses[idx]
	if in.Amount > models.MaxMoney-(l.TotalExpenses()-current.Amount) {
		return errTooLarge("total expenses")
	}

	next := l.snapshot()
	next.Expenses[idx] = models.Expense{
		ID:        current.ID,
		Title:     in.Title,
		Amount:    in.Amount,
		Category:  in.Category,
		Note:      in.Note,
		Recurring: in.Recurring,
		Date:      current.Date,
	}
	return l.commit(next)
}

// DeleteExpense removes expense id.
func (l *Ledger) DeleteExpense(id int64) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return apperrors.ErrExpenseNotFound
	}

	next := l.snapshot()
	next.Expenses = slices.Delete(next.Expenses, idx, idx+1)
	return l.commit(next)
}

// ClearAllExpenses removes every expense. Clearing an empty ledger succeeds.
func (l *Ledger) ClearAllExpenses() error {
	next := l.snapshot()
	next.Expenses = []models.Expense{}
	return l.commit(next)
}

// snapshot returns a copy of the current state that can be mutated freely.
func (l *Ledger) snapshot() models.LedgerState {
	next := l.state
	next.Expenses = slices.Clone(l.state.Expenses)
	if next.Expenses == nil {
		next.Expenses = []models.Expense{}
	}
	return next
}

// commit persists next and makes it current. On failure the current state is
// left untouched.
func (l *Ledger) commit(next models.LedgerState) error {
	if err := l.write(next); err != nil {
		return err
	}
	l.state = next
	return nil
}

func (l *Ledger) write(state models.LedgerState) error {
	if l.userID == "" {
		return apperrors.WithMessage(apperrors.ErrUnauthorized, "ledger is not loaded for a user")
	}
	raw, err := encodeState(state)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := l.store.Set(store.LedgerKey(l.userID), raw); err != nil {
		l.log.Errorw("failed to persist ledger", "user", l.userID, "error", err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (l *Ledger) indexOf(id int64) int {
	return slices.IndexFunc(l.state.Expenses, func(e models.Expense) bool { return e.ID == id })
}

func normalize(in ExpenseInput) (ExpenseInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Note = strings.TrimSpace(in.Note)

	if in.Title == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if in.Amount <= 0 {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.Amount > models.MaxMoney {
		return in, errTooLarge("amount")
	}
	if in.Category == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if in.Recurring == "" {
		in.Recurring = models.RecurrenceNone
	}
	if !in.Recurring.Valid() {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "recurring must be one of none, daily, weekly, monthly")
	}
	return in, nil
}

func errTooLarge(field string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must not exceed "+models.MaxMoney.Decimal())
}

// nextID returns the creation time in Unix milliseconds, bumped past the
// largest existing id so that ids stay unique for rapid inserts.
func nextID(expenses []models.Expense, now time.Time) int64 {
	id := now.UnixMilli()
	for _, e := range expenses {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	return id
}
