package ledger

import (
	"slices"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
)

// Summary is the dashboard view of a ledger.
type Summary struct {
	Budget        models.Money         `json:"budget"`
	DailyIncome   models.Money         `json:"daily_income"`
	SavingsGoal   models.Money         `json:"savings_goal"`
	TotalExpenses models.Money         `json:"total_expenses"`
	Balance       models.Money         `json:"balance"`
	Status        models.BalanceStatus `json:"status"`
	ExpenseCount  int                  `json:"expense_count"`
}

// Settings returns the current budget settings.
func (l *Ledger) Settings() models.BudgetSettings {
	return l.state.BudgetSettings
}

// TotalExpenses returns the sum of every expense amount.
func (l *Ledger) TotalExpenses() models.Money {
	var total models.Money
	for _, e := range l.state.Expenses {
		total += e.Amount
	}
	return total
}

// Balance returns budget + daily income - total expenses.
func (l *Ledger) Balance() models.Money {
	return l.state.Budget + l.state.DailyIncome - l.TotalExpenses()
}

// Status classifies the balance against the savings goal.
func (l *Ledger) Status() models.BalanceStatus {
	return models.ClassifyBalance(l.Balance(), l.state.SavingsGoal)
}

// CategoryTotals returns the amount spent per category.
func (l *Ledger) CategoryTotals() map[string]models.Money {
	totals := make(map[string]models.Money)
	for _, e := range l.state.Expenses {
		totals[e.Category] += e.Amount
	}
	return totals
}

// CategoryBreakdown returns the per-category totals ordered by the first
// appearance of each category in the ledger.
func (l *Ledger) CategoryBreakdown() []models.CategoryAmount {
	breakdown := []models.CategoryAmount{}
	index := make(map[string]int)
	for _, e := range l.state.Expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(breakdown)
			index[e.Category] = i
			breakdown = append(breakdown, models.CategoryAmount{Name: e.Category})
		}
		breakdown[i].Amount += e.Amount
	}
	return breakdown
}

// Summary returns the settings together with every derived aggregate.
func (l *Ledger) Summary() Summary {
	total := l.TotalExpenses()
	balance := l.state.Budget + l.state.DailyIncome - total
	return Summary{
		Budget:        l.state.Budget,
		DailyIncome:   l.state.DailyIncome,
		SavingsGoal:   l.state.SavingsGoal,
		TotalExpenses: total,
		Balance:       balance,
		Status:        models.ClassifyBalance(balance, l.state.SavingsGoal),
		ExpenseCount:  len(l.state.Expenses),
	}
}

// Len returns the number of expenses.
func (l *Ledger) Len() int {
	return len(l.state.Expenses)
}

// Expense returns a copy of expense id.
func (l *Ledger) Expense(id int64) (models.Expense, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return models.Expense{}, apperrors.ErrExpenseNotFound
	}
	return l.state.Expenses[idx], nil
}

// Expenses returns a copy of the expenses in insertion order.
func (l *Ledger) Expenses() []models.Expense {
	out := slices.Clone(l.state.Expenses)
	if out == nil {
		out = []models.Expense{}
	}
	return out
}

// ListExpensesSortedByDateDescending returns the expenses newest first.
// Expenses with equal dates keep their insertion order. The ledger itself is
// not reordered.
func (l *Ledger) ListExpensesSortedByDateDescending() []models.Expense {
	sorted := l.Expenses()
	slices.SortStableFunc(sorted, func(a, b models.Expense) int {
		return b.Date.Compare(a.Date)
	})
	return sorted
}
