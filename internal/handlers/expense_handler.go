package handlers

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/export"
	"budgetapp/internal/ledger"
	"budgetapp/internal/models"
	"budgetapp/internal/pagination"
	"budgetapp/internal/services"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
	loc           *time.Location
}

// NewExpenseHandler creates a new ExpenseHandler. Export dates are rendered
// in loc.
func NewExpenseHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer, loc *time.Location) *ExpenseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseHandler{ledgerService: ledgerService, auditService: auditService, loc: loc}
}

// ExpenseRequest represents the request body for creating or replacing an expense.
// Selecting the "Others" category stores custom_category instead.
type ExpenseRequest struct {
	Title          string        `json:"title" binding:"required,notblank,max=200"`
	Amount         *models.Money `json:"amount" binding:"required"`
	Category       string        `json:"category" binding:"required,notblank,max=100"`
	CustomCategory string        `json:"custom_category" binding:"max=100"`
	Note           string        `json:"note" binding:"max=500"`
	Recurring      string        `json:"recurring" binding:"recurrence"`
}

func (r ExpenseRequest) input() (ledger.ExpenseInput, error) {
	recurring, err := models.ParseRecurrence(r.Recurring)
	if err != nil {
		return ledger.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	category := models.ResolveCategory(r.Category, r.CustomCategory)
	if category == "" {
		return ledger.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "custom_category is required when category is Others")
	}
	return ledger.ExpenseInput{
		Title:     r.Title,
		Amount:    *r.Amount,
		Category:  category,
		Note:      r.Note,
		Recurring: recurring,
	}, nil
}

// CreateExpense handles expense creation
// @Summary     Create expense
// @Description Record a new expense dated now
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense data"
// @Success     201 {object} map[string]models.Expense "Created expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.ledgerService.AddExpense(username, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(), map[string]any{
		"title":    expense.Title,
		"amount":   expense.Amount,
		"category": expense.Category,
	})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetExpenses lists expenses newest first
// @Summary     List expenses
// @Description Get a page of the user's expenses sorted by date, newest first
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expenses, err := h.ledgerService.ListExpenses(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(expenses, page))
}

// GetExpense returns a single expense
// @Summary     Get expense
// @Description Get an expense by id
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} map[string]models.Expense "Expense"
// @Failure     400 {object} ErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.ledgerService.GetExpense(username, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense replaces every editable field of an expense
// @Summary     Update expense
// @Description Replace an expense's title, amount, category, note and recurrence. The id and date are kept.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Expense ID"
// @Param       request body ExpenseRequest true "Expense data"
// @Success     200 {object} map[string]models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.ledgerService.UpdateExpense(username, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "UPDATE_EXPENSE", "expense", expense.ID, c.ClientIP(), map[string]any{
		"title":    expense.Title,
		"amount":   expense.Amount,
		"category": expense.Category,
	})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense removes an expense
// @Summary     Delete expense
// @Description Delete an expense by id
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteExpense(username, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "DELETE_EXPENSE", "expense", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// ClearExpenses removes every expense
// @Summary     Clear expenses
// @Description Delete every expense of the user. Budget settings are kept.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Expenses cleared"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [delete]
func (h *ExpenseHandler) ClearExpenses(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.ClearExpenses(username); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(username, "CLEAR_EXPENSES", "expense", 0, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "All expenses cleared"})
}

// GetCategoryTotals returns the amount spent per category
// @Summary     Category totals
// @Description Get the total spent per category, in order of first use
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Category totals and grand total"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/categories [get]
func (h *ExpenseHandler) GetCategoryTotals(c *gin.Context) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.ledgerService.CategoryTotals(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var total models.Money
	for _, t := range totals {
		total += t.Amount
	}

	c.JSON(http.StatusOK, gin.H{"categories": totals, "total": total})
}

// ExportCSV downloads every expense as CSV
// @Summary     Export expenses as CSV
// @Description Download the user's expenses as a CSV file
// @Tags        expenses
// @Produce     text/csv
// @Security    BearerAuth
// @Success     200 {file} file "CSV file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No expenses to export"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export.csv [get]
func (h *ExpenseHandler) ExportCSV(c *gin.Context) {
	h.export(c, export.CSVContentType, export.CSVFileName, export.WriteCSV)
}

// ExportXLSX downloads every expense as an Excel workbook
// @Summary     Export expenses as XLSX
// @Description Download the user's expenses as an Excel workbook
// @Tags        expenses
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Success     200 {file} file "XLSX file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No expenses to export"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/export.xlsx [get]
func (h *ExpenseHandler) ExportXLSX(c *gin.Context) {
	h.export(c, export.XLSXContentType, export.XLSXFileName, export.WriteXLSX)
}

type exportWriter func(w io.Writer, expenses []models.Expense, loc *time.Location) error

func (h *ExpenseHandler) export(c *gin.Context, contentType, fileName string, write exportWriter) {
	username, err := getUsername(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.ledgerService.ExportExpenses(username)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, expenses, h.loc); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
