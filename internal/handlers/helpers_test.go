package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetapp/internal/ledger"
	"budgetapp/internal/logger"
	"budgetapp/internal/middleware"
	"budgetapp/internal/models"
	"budgetapp/internal/services"
	"budgetapp/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	signUpFn      func(username, password, confirm string) error
	loginFn       func(username, password string) (string, error)
	logoutFn      func(username string) error
	resumeFn      func() (string, error)
	currentUserFn func() (string, error)
}

func (m *mockAuthService) SignUp(username, password, confirm string) error {
	if m.signUpFn != nil {
		return m.signUpFn(username, password, confirm)
	}
	return nil
}

func (m *mockAuthService) Login(username, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(username, password)
	}
	return username, nil
}

func (m *mockAuthService) Logout(username string) error {
	if m.logoutFn != nil {
		return m.logoutFn(username)
	}
	return nil
}

func (m *mockAuthService) Resume() (string, error) {
	if m.resumeFn != nil {
		return m.resumeFn()
	}
	return "", nil
}

func (m *mockAuthService) CurrentUser() (string, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn()
	}
	return "", nil
}

var _ services.AuthServicer = (*mockAuthService)(nil)

type mockLedgerService struct {
	summaryFn        func(username string) (ledger.Summary, error)
	setBudgetFn      func(username string, budget, dailyIncome models.Money) (ledger.Summary, error)
	setSavingsGoalFn func(username string, goal models.Money) (ledger.Summary, error)
	addExpenseFn     func(username string, in ledger.ExpenseInput) (models.Expense, error)
	getExpenseFn     func(username string, id int64) (models.Expense, error)
	updateExpenseFn  func(username string, id int64, in ledger.ExpenseInput) (models.Expense, error)
	deleteExpenseFn  func(username string, id int64) error
	clearExpensesFn  func(username string) error
	listExpensesFn   func(username string) ([]models.Expense, error)
	categoryTotalsFn func(username string) ([]models.CategoryAmount, error)
	exportExpensesFn func(username string) ([]models.Expense, error)
}

func (m *mockLedgerService) Summary(username string) (ledger.Summary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(username)
	}
	return ledger.Summary{}, nil
}

func (m *mockLedgerService) SetBudget(username string, budget, dailyIncome models.Money) (ledger.Summary, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(username, budget, dailyIncome)
	}
	return ledger.Summary{Budget: budget, DailyIncome: dailyIncome}, nil
}

func (m *mockLedgerService) SetSavingsGoal(username string, goal models.Money) (ledger.Summary, error) {
	if m.setSavingsGoalFn != nil {
		return m.setSavingsGoalFn(username, goal)
	}
	return ledger.Summary{SavingsGoal: goal}, nil
}

func (m *mockLedgerService) AddExpense(username string, in ledger.ExpenseInput) (models.Expense, error) {
	if m.addExpenseFn != nil {
		return m.addExpenseFn(username, in)
	}
	return models.Expense{}, nil
}

func (m *mockLedgerService) GetExpense(username string, id int64) (models.Expense, error) {
	if m.getExpenseFn != nil {
		return m.getExpenseFn(username, id)
	}
	return models.Expense{ID: id}, nil
}

func (m *mockLedgerService) UpdateExpense(username string, id int64, in ledger.ExpenseInput) (models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(username, id, in)
	}
	return models.Expense{ID: id}, nil
}

func (m *mockLedgerService) DeleteExpense(username string, id int64) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(username, id)
	}
	return nil
}

func (m *mockLedgerService) ClearExpenses(username string) error {
	if m.clearExpensesFn != nil {
		return m.clearExpensesFn(username)
	}
	return nil
}

func (m *mockLedgerService) ListExpenses(username string) ([]models.Expense, error) {
	if m.listExpensesFn != nil {
		return m.listExpensesFn(username)
	}
	return []models.Expense{}, nil
}

func (m *mockLedgerService) CategoryTotals(username string) ([]models.CategoryAmount, error) {
	if m.categoryTotalsFn != nil {
		return m.categoryTotalsFn(username)
	}
	return []models.CategoryAmount{}, nil
}

func (m *mockLedgerService) ExportExpenses(username string) ([]models.Expense, error) {
	if m.exportExpensesFn != nil {
		return m.exportExpensesFn(username)
	}
	return []models.Expense{}, nil
}

var _ services.LedgerServicer = (*mockLedgerService)(nil)

type mockThemeService struct {
	themeFn    func() (models.Theme, error)
	setThemeFn func(name string) (models.Theme, error)
}

func (m *mockThemeService) Theme() (models.Theme, error) {
	if m.themeFn != nil {
		return m.themeFn()
	}
	return models.DefaultTheme, nil
}

func (m *mockThemeService) SetTheme(name string) (models.Theme, error) {
	if m.setThemeFn != nil {
		return m.setThemeFn(name)
	}
	return models.Theme(name), nil
}

var _ services.ThemeServicer = (*mockThemeService)(nil)

type auditEvent struct {
	username   string
	action     string
	resourceID int64
}

type mockAuditService struct {
	events []auditEvent
}

func (m *mockAuditService) Log(username, action, _ string, resourceID int64, _ string, _ map[string]any) {
	m.events = append(m.events, auditEvent{username: username, action: action, resourceID: resourceID})
}

var _ services.AuditServicer = (*mockAuditService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func injectUsername(username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UsernameKey, username)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}

func assertAudited(t *testing.T, audit *mockAuditService, action string) {
	t.Helper()
	for _, e := range audit.events {
		if e.action == action {
			return
		}
	}
	t.Errorf("expected audit action %s, got %+v", action, audit.events)
}
