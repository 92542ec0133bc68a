// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetapp/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("recurrence", validateRecurrence)
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("notblank", validateNotBlank)
}

// validateRecurrence accepts an empty value (meaning none) or a known recurrence.
func validateRecurrence(fl validator.FieldLevel) bool {
	_, err := models.ParseRecurrence(fl.Field().String())
	return err == nil
}

// validateMoney accepts decimal text such as "12.50" or "12,5".
func validateMoney(fl validator.FieldLevel) bool {
	_, err := models.ParseMoney(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
