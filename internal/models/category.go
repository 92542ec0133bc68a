package models

import "strings"

// Built-in expense categories. CategoryOthers is a selection sentinel meaning
// "use the custom category text"; it is never stored as a category by itself.
const (
	CategoryFood          = "Food"
	CategoryTravel        = "Travel"
	CategoryBills         = "Bills"
	CategoryEntertainment = "Entertainment"
	CategoryOthers        = "Others"
)

// DefaultCategories are the categories offered before the custom sentinel.
var DefaultCategories = []string{CategoryFood, CategoryTravel, CategoryBills, CategoryEntertainment}

// IsDefaultCategory reports whether name is one of the built-in categories.
func IsDefaultCategory(name string) bool {
	for _, c := range DefaultCategories {
		if c == name {
			return true
		}
	}
	return false
}

// ResolveCategory turns a category selection into the category to store.
// Selecting CategoryOthers yields the trimmed custom text, which may be empty;
// any other selection is returned trimmed.
func ResolveCategory(selected, custom string) string {
	selected = strings.TrimSpace(selected)
	if selected == CategoryOthers {
		return strings.TrimSpace(custom)
	}
	return selected
}

// CategoryAmount is the total spent in one category.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}
