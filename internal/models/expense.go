package models

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence labels how often an expense repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Recurrences lists every accepted recurrence in display order.
var Recurrences = []Recurrence{RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}

// Valid reports whether r is one of the known recurrences.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// ParseRecurrence normalizes user input. Empty input means RecurrenceNone.
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RecurrenceNone, nil
	}
	r := Recurrence(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown recurrence %q", s)
	}
	return r, nil
}

// Expense is a single recorded spending entry.
type Expense struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Amount    Money      `json:"amount"`
	Category  string     `json:"category"`
	Note      string     `json:"note"`
	Recurring Recurrence `json:"recurring"`
	Date      time.Time  `json:"date"`
}

// IsRecurring reports whether the expense carries a repeat label.
func (e Expense) IsRecurring() bool {
	return e.Recurring != "" && e.Recurring != RecurrenceNone
}
