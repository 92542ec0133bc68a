package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"budgetapp/internal/models"
)

// storedExpense mirrors models.Expense with lenient field types so records
// written by older clients decode even when a field is missing or malformed.
type storedExpense struct {
	ID        json.Number         `json:"id"`
	Title     string              `json:"title"`
	Amount    models.LenientMoney `json:"amount"`
	Category  string              `json:"category"`
	Note      string              `json:"note"`
	Recurring string              `json:"recurring"`
	Date      string              `json:"date"`
}

type storedState struct {
	Budget      models.LenientMoney `json:"budget"`
	DailyIncome models.LenientMoney `json:"dailyIncome"`
	SavingsGoal models.LenientMoney `json:"savingsGoal"`
	Expenses    []storedExpense     `json:"expenses"`
}

func decodeState(raw string) (models.LedgerState, error) {
	var stored storedState
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return models.LedgerState{}, fmt.Errorf("decode ledger: %w", err)
	}

	state := models.LedgerState{
		BudgetSettings: models.BudgetSettings{
			Budget:      models.Money(stored.Budget),
			DailyIncome: models.Money(stored.DailyIncome),
			SavingsGoal: models.Money(stored.SavingsGoal),
		},
		Expenses: make([]models.Expense, 0, len(stored.Expenses)),
	}
	for _, se := range stored.Expenses {
		state.Expenses = append(state.Expenses, models.Expense{
			ID:        parseID(se.ID),
			Title:     se.Title,
			Amount:    models.Money(se.Amount),
			Category:  se.Category,
			Note:      se.Note,
			Recurring: models.Recurrence(strings.ToLower(strings.TrimSpace(se.Recurring))),
			Date:      parseDate(se.Date),
		})
	}
	return state, nil
}

func encodeState(state models.LedgerState) (string, error) {
	if state.Expenses == nil {
		state.Expenses = []models.Expense{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode ledger: %w", err)
	}
	return string(data), nil
}

// parseID returns 0 for ids that are absent or not integral; sanitize
// assigns fresh ids to those.
func parseID(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if id, err := n.Int64(); err == nil {
		return id
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		return int64(f)
	}
	return 0
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sanitize enforces the ledger invariants on loaded data. Settings are
// clamped to [0, MaxMoney]. Expenses with an empty title or category, a
// non-positive amount, or an amount that would push the total past MaxMoney
// are dropped. Unknown recurrences become none, and missing or duplicate ids
// are replaced.
func (l *Ledger) sanitize(state models.LedgerState) models.LedgerState {
	state.Budget = min(max(state.Budget, 0), models.MaxMoney)
	state.DailyIncome = min(max(state.DailyIncome, 0), models.MaxMoney)
	state.SavingsGoal = min(max(state.SavingsGoal, 0), models.MaxMoney)

	kept := make([]models.Expense, 0, len(state.Expenses))
	seen := make(map[int64]bool, len(state.Expenses))
	var reassign []int
	var total models.Money
	for _, e := range state.Expenses {
		e.Title = strings.TrimSpace(e.Title)
		e.Category = strings.TrimSpace(e.Category)
		if e.Title == "" || e.Category == "" || e.Amount <= 0 || e.Amount > models.MaxMoney-total {
			l.log.Warnw("dropping invalid stored expense", "user", l.userID, "id", e.ID)
			continue
		}
		total += e.Amount
		if !e.Recurring.Valid() {
			e.Recurring = models.RecurrenceNone
		}
		if e.ID <= 0 || seen[e.ID] {
			reassign = append(reassign, len(kept))
		} else {
			seen[e.ID] = true
		}
		kept = append(kept, e)
	}

	if len(reassign) > 0 {
		var maxID int64
		for id := range seen {
			maxID = max(maxID, id)
		}
		for _, idx := range reassign {
			maxID++
			l.log.Warnw("reassigning stored expense id", "old_id", kept[idx].ID, "new_id", maxID)
			kept[idx].ID = maxID
		}
	}

	state.Expenses = kept
	return state
}
