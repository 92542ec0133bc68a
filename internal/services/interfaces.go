package services

import (
	"budgetapp/internal/ledger"
	"budgetapp/internal/models"
)

// AuthServicer defines the contract for sign-up, login and session handling.
type AuthServicer interface {
	SignUp(username, password, confirm string) error
	Login(username, password string) (string, error)
	Logout(username string) error
	Resume() (string, error)
	CurrentUser() (string, error)
}

// LedgerServicer defines the contract for a user's budget and expenses.
// Every method runs against the user's open session.
type LedgerServicer interface {
	Summary(username string) (ledger.Summary, error)
	SetBudget(username string, budget, dailyIncome models.Money) (ledger.Summary, error)
	SetSavingsGoal(username string, goal models.Money) (ledger.Summary, error)
	AddExpense(username string, in ledger.ExpenseInput) (models.Expense, error)
	GetExpense(username string, id int64) (models.Expense, error)
	UpdateExpense(username string, id int64, in ledger.ExpenseInput) (models.Expense, error)
	DeleteExpense(username string, id int64) error
	ClearExpenses(username string) error
	ListExpenses(username string) ([]models.Expense, error)
	CategoryTotals(username string) ([]models.CategoryAmount, error)
	ExportExpenses(username string) ([]models.Expense, error)
}

// ThemeServicer defines the contract for the shared theme preference.
type ThemeServicer interface {
	Theme() (models.Theme, error)
	SetTheme(name string) (models.Theme, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(username, action, resourceType string, resourceID int64, ipAddress string, changes map[string]any)
}
