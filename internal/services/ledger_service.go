package services

import (
	"go.uber.org/zap"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/ledger"
	"budgetapp/internal/logger"
	"budgetapp/internal/metrics"
	"budgetapp/internal/models"
	"budgetapp/internal/session"
)

// ledgerService routes ledger operations to the caller's session.
type ledgerService struct {
	sessions *session.Manager
	log      *zap.SugaredLogger
}

// NewLedgerService creates a new LedgerServicer. Sessions are acquired on
// demand, so a user holding a valid token keeps working after a restart.
func NewLedgerService(sessions *session.Manager) LedgerServicer {
	return &ledgerService{
		sessions: sessions,
		log:      logger.Named("ledger_service"),
	}
}

// run executes fn inside the user's session and records the outcome.
func (s *ledgerService) run(operation, username string, fn func(l *ledger.Ledger) error) (err error) {
	defer func() {
		metrics.ObserveLedger(operation, err)
		if err != nil && apperrors.CodeOf(err) == apperrors.ErrInternalServer.Code {
			s.log.Errorw("ledger operation failed", "operation", operation, "username", username, "error", err)
		}
	}()

	sess, err := s.sessions.Acquire(username)
	if err != nil {
		return err
	}
	return sess.Do(fn)
}

// Summary returns the settings and derived aggregates.
func (s *ledgerService) Summary(username string) (ledger.Summary, error) {
	var out ledger.Summary
	err := s.run("summary", username, func(l *ledger.Ledger) error {
		out = l.Summary()
		return nil
	})
	return out, err
}

// SetBudget replaces the budget and daily income.
func (s *ledgerService) SetBudget(username string, budget, dailyIncome models.Money) (ledger.Summary, error) {
	var out ledger.Summary
	err := s.run("set_budget", username, func(l *ledger.Ledger) error {
		if err := l.SetBudget(budget, dailyIncome); err != nil {
			return err
		}
		out = l.Summary()
		return nil
	})
	if err == nil {
		s.log.Infow("budget updated", "username", username, "budget", budget.String(), "daily_income", out.DailyIncome.String())
	}
	return out, err
}

// SetSavingsGoal replaces the savings goal.
func (s *ledgerService) SetSavingsGoal(username string, goal models.Money) (ledger.Summary, error) {
	var out ledger.Summary
	err := s.run("set_savings_goal", username, func(l *ledger.Ledger) error {
		if err := l.SetSavingsGoal(goal); err != nil {
			return err
		}
		out = l.Summary()
		return nil
	})
	if err == nil {
		s.log.Infow("savings goal updated", "username", username, "goal", goal.String())
	}
	return out, err
}

// AddExpense records a new expense and returns it.
func (s *ledgerService) AddExpense(username string, in ledger.ExpenseInput) (models.Expense, error) {
	var out models.Expense
	err := s.run("add_expense", username, func(l *ledger.Ledger) error {
		id, err := l.AddExpense(in)
		if err != nil {
			return err
		}
		out, err = l.Expense(id)
		return err
	})
	if err == nil {
		s.log.Infow("expense added", "username", username, "id", out.ID, "category", out.Category)
	}
	return out, err
}

// GetExpense returns a single expense.
func (s *ledgerService) GetExpense(username string, id int64) (models.Expense, error) {
	var out models.Expense
	err := s.run("get_expense", username, func(l *ledger.Ledger) error {
		var err error
		out, err = l.Expense(id)
		return err
	})
	return out, err
}

// UpdateExpense overwrites an expense and returns the stored result.
func (s *ledgerService) UpdateExpense(username string, id int64, in ledger.ExpenseInput) (models.Expense, error) {
	var out models.Expense
	err := s.run("update_expense", username, func(l *ledger.Ledger) error {
		if err := l.UpdateExpense(id, in); err != nil {
			return err
		}
		var err error
		out, err = l.Expense(id)
		return err
	})
	if err == nil {
		s.log.Infow("expense updated", "username", username, "id", id)
	}
	return out, err
}

// DeleteExpense removes an expense.
func (s *ledgerService) DeleteExpense(username string, id int64) error {
	err := s.run("delete_expense", username, func(l *ledger.Ledger) error {
		return l.DeleteExpense(id)
	})
	if err == nil {
		s.log.Infow("expense deleted", "username", username, "id", id)
	}
	return err
}

// ClearExpenses removes every expense.
func (s *ledgerService) ClearExpenses(username string) error {
	err := s.run("clear_expenses", username, func(l *ledger.Ledger) error {
		return l.ClearAllExpenses()
	})
	if err == nil {
		s.log.Infow("expenses cleared", "username", username)
	}
	return err
}

// ListExpenses returns the expenses newest first.
func (s *ledgerService) ListExpenses(username string) ([]models.Expense, error) {
	var out []models.Expense
	err := s.run("list_expenses", username, func(l *ledger.Ledger) error {
		out = l.ListExpensesSortedByDateDescending()
		return nil
	})
	return out, err
}

// CategoryTotals returns the per-category breakdown.
func (s *ledgerService) CategoryTotals(username string) ([]models.CategoryAmount, error) {
	var out []models.CategoryAmount
	err := s.run("category_totals", username, func(l *ledger.Ledger) error {
		out = l.CategoryBreakdown()
		return nil
	})
	return out, err
}

// ExportExpenses returns the expenses in insertion order, or NOTHING_TO_EXPORT
// when there are none.
func (s *ledgerService) ExportExpenses(username string) ([]models.Expense, error) {
	var out []models.Expense
	err := s.run("export_expenses", username, func(l *ledger.Ledger) error {
		if l.Len() == 0 {
			return apperrors.ErrNothingToExport
		}
		out = l.Expenses()
		return nil
	})
	return out, err
}
