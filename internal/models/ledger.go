package models

// BudgetSettings holds the scalar settings of a ledger. All values are
// non-negative.
type BudgetSettings struct {
	Budget      Money `json:"budget"`
	DailyIncome Money `json:"dailyIncome"`
	SavingsGoal Money `json:"savingsGoal"`
}

// LedgerState is the persisted form of one user's ledger.
type LedgerState struct {
	BudgetSettings
	Expenses []Expense `json:"expenses"`
}

// BalanceStatus classifies a balance against the savings goal.
type BalanceStatus string

const (
	BalanceNegative         BalanceStatus = "negative"
	BalanceBelowSavingsGoal BalanceStatus = "below_savings_goal"
	BalanceHealthy          BalanceStatus = "healthy"
)

// ClassifyBalance returns BalanceNegative for a balance below zero, otherwise
// BalanceBelowSavingsGoal when a positive goal is not yet reached, otherwise
// BalanceHealthy.
func ClassifyBalance(balance, savingsGoal Money) BalanceStatus {
	switch {
	case balance < 0:
		return BalanceNegative
	case savingsGoal > 0 && balance < savingsGoal:
		return BalanceBelowSavingsGoal
	default:
		return BalanceHealthy
	}
}
