package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Title     string `validate:"notblank"`
	Recurring string `validate:"recurrence"`
	Amount    string `validate:"omitempty,money"`
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	valid := []sample{
		{Title: "Lunch", Recurring: ""},
		{Title: "Rent", Recurring: "Monthly", Amount: "12,50"},
	}
	for _, s := range valid {
		if err := v.Struct(s); err != nil {
			t.Errorf("expected %+v to be valid: %v", s, err)
		}
	}

	invalid := map[string]sample{
		"blank_title": {Title: "  "},
		"recurrence":  {Title: "x", Recurring: "yearly"},
		"amount":      {Title: "x", Amount: "ten"},
	}
	for name, s := range invalid {
		t.Run(name, func(t *testing.T) {
			if err := v.Struct(s); err == nil {
				t.Errorf("expected %+v to be invalid", s)
			}
		})
	}
}
