package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetapp/internal/models"
	"budgetapp/internal/services"
)

// LedgerHandler handles budget settings and the balance summary
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, auditService: auditService}
}

// SetBudgetRequest represents the request body for replacing the budget.
// A daily income that is missing or not a number counts as zero.
type SetBudgetRequest struct {
	Budget      *models.Money       `json:"budget" binding:"required"`
	DailyIncome models.LenientMoney `json:"daily_income" swaggertype:"number"`
}

// SetSavingsGoalRequest represents the request body for replacing the savings goal
type SetSavingsGoalRequest struct {
	SavingsGoal *models.Money `json:"savings_goal" binding:"required"`
}

// GetSummary returns the budget settings with the derived balance
// @Summary     Get ledger summary
// @Description Get the budget, income, savings goal, total expenses, balance and balance status
// @Tags        ledger
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]ledger.Summary "Ledger summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger [get]
func (h *LedgerHandler) GetSummary(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.ledgerService.Summary(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledger": summary})
}

// SetBudget replaces the budget and daily income
// @Summary     Set budget
// @Description Replace the budget and daily income. A negative or non-numeric income is treated as zero.
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Budget data"
// @Success     200 {object} map[string]ledger.Summary "Updated ledger summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger/budget [put]
func (h *LedgerHandler) SetBudget(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.ledgerService.SetBudget(username, *req.Budget, models.Money(req.DailyIncome))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "SET_BUDGET", "ledger", 0, c.ClientIP(), map[string]any{
		"budget":       summary.Budget,
		"daily_income": summary.DailyIncome,
	})

	c.JSON(http.StatusOK, gin.H{"ledger": summary})
}

// SetSavingsGoal replaces the savings goal
// @Summary     Set savings goal
// @Description Replace the savings goal the balance is compared against
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetSavingsGoalRequest true "Savings goal"
// @Success     200 {object} map[string]ledger.Summary "Updated ledger summary"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger/savings-goal [put]
func (h *LedgerHandler) SetSavingsGoal(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetSavingsGoalRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.ledgerService.SetSavingsGoal(username, *req.SavingsGoal)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "SET_SAVINGS_GOAL", "ledger", 0, c.ClientIP(), map[string]any{
		"savings_goal": summary.SavingsGoal,
	})

	c.JSON(http.StatusOK, gin.H{"ledger": summary})
}
