package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"budgetapp/internal/ledger"
	"budgetapp/internal/logger"
	"budgetapp/internal/middleware"
	"budgetapp/internal/models"
	"budgetapp/internal/services"
	"budgetapp/internal/session"
	"budgetapp/internal/store"
	"budgetapp/internal/testutil"
	"budgetapp/internal/validator"
)

// testApp holds the full application stack for flow tests.
type testApp struct {
	DB     *gorm.DB
	Store  store.Store
	Clock  *testutil.Clock
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates the full stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T, metricsKey string) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	st := store.NewSQL(db)
	clock := testutil.NewClock()
	sessions := session.NewManager(st, ledger.WithClock(clock.Now))

	router := New(Deps{
		Auth:          services.NewAuthService(st, sessions, services.AuthConfig{PasswordStorage: services.PasswordStorageBcrypt, BcryptCost: 4}),
		Ledger:        services.NewLedgerService(sessions),
		Theme:         services.NewThemeService(st),
		Audit:         services.NewAuditService(db),
		Tokens:        middleware.NewAuthenticator("flow-secret", time.Hour),
		Location:      time.UTC,
		MetricsAPIKey: metricsKey,
	})
	return &testApp{DB: db, Store: st, Clock: clock, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return errObj["code"].(string)
}

// signUpAndLogin registers a user and returns an access token.
func (app *testApp) signUpAndLogin(t *testing.T, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q,"confirm_password":%q}`, username, password, password)
	if rec := app.request("POST", "/api/v1/auth/signup", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}
	body = fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

func (app *testApp) addExpense(t *testing.T, token, body string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/expenses", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add expense failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(float64)
}

func (app *testApp) summary(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/ledger", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["ledger"].(map[string]interface{})
}

func TestLedgerFlow(t *testing.T) {
	app := setupApp(t, "")
	token := app.signUpAndLogin(t, "alice", "secret1")

	rec := app.request("PUT", "/api/v1/ledger/budget", `{"budget":1000,"daily_income":200}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("set budget failed: %d %s", rec.Code, rec.Body.String())
	}

	lunch := app.addExpense(t, token, `{"title":"Lunch","amount":100,"category":"Food"}`)
	app.Clock.Advance(time.Hour)
	app.addExpense(t, token, `{"title":"Train","amount":200,"category":"Travel","recurring":"monthly"}`)

	summary := app.summary(t, token)
	if summary["total_expenses"].(float64) != 300 || summary["balance"].(float64) != 900 {
		t.Fatalf("unexpected summary %v", summary)
	}
	if summary["status"] != string(models.BalanceHealthy) {
		t.Errorf("expected healthy, got %v", summary["status"])
	}

	// Newest first.
	rec = app.request("GET", "/api/v1/expenses", "", token)
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 2 || data[0].(map[string]interface{})["title"] != "Train" {
		t.Fatalf("unexpected listing %v", data)
	}

	// A savings goal above the balance flips the status.
	rec = app.request("PUT", "/api/v1/ledger/savings-goal", `{"savings_goal":950}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("set savings goal failed: %d", rec.Code)
	}
	if app.summary(t, token)["status"] != string(models.BalanceBelowSavingsGoal) {
		t.Error("expected below_savings_goal")
	}

	// Update keeps the date.
	path := fmt.Sprintf("/api/v1/expenses/%.0f", lunch)
	before := parseJSON(t, app.request("GET", path, "", token))["expense"].(map[string]interface{})
	app.Clock.Advance(time.Hour)
	rec = app.request("PUT", path, `{"title":"Team lunch","amount":150,"category":"Others","custom_category":"Work"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	after := parseJSON(t, rec)["expense"].(map[string]interface{})
	if after["date"] != before["date"] || after["category"] != "Work" {
		t.Errorf("unexpected update result %v (before %v)", after, before)
	}

	rec = app.request("GET", "/api/v1/expenses/categories", "", token)
	result := parseJSON(t, rec)
	if result["total"].(float64) != 350 {
		t.Errorf("expected category total 350, got %v", result["total"])
	}

	rec = app.request("GET", "/api/v1/expenses/export.csv", "", token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Team lunch",150,"Work"`) {
		t.Errorf("unexpected export: %d %s", rec.Code, rec.Body.String())
	}

	// Delete twice.
	if rec := app.request("DELETE", path, "", token); rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", rec.Code)
	}
	rec = app.request("DELETE", path, "", token)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "EXPENSE_NOT_FOUND" {
		t.Errorf("expected EXPENSE_NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
	}

	// Clear, then nothing to export.
	if rec := app.request("DELETE", "/api/v1/expenses", "", token); rec.Code != http.StatusOK {
		t.Fatalf("clear failed: %d", rec.Code)
	}
	rec = app.request("GET", "/api/v1/expenses/export.xlsx", "", token)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOTHING_TO_EXPORT" {
		t.Errorf("expected NOTHING_TO_EXPORT, got %d %s", rec.Code, rec.Body.String())
	}
	if app.summary(t, token)["balance"].(float64) != 1200 {
		t.Error("expected balance to equal budget plus income after clear")
	}

	// The ledger is stored under the browser key layout.
	raw, ok, err := app.Store.Get(store.LedgerKey("alice"))
	if err != nil || !ok {
		t.Fatalf("expected stored ledger, got ok=%v err=%v", ok, err)
	}
	if !strings.Contains(raw, `"dailyIncome":200`) {
		t.Errorf("unexpected stored ledger %s", raw)
	}
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t, "")

	t.Run("protected routes require a token", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/ledger", "", "")
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
			t.Errorf("expected 401 UNAUTHORIZED, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("signup validation", func(t *testing.T) {
		tests := []struct {
			body string
			code string
		}{
			{`{"username":"bob","password":"secret1","confirm_password":"secret2"}`, "PASSWORD_MISMATCH"},
			{`{"username":"bob","password":"abc","confirm_password":"abc"}`, "PASSWORD_TOO_SHORT"},
		}
		for _, tc := range tests {
			rec := app.request("POST", "/api/v1/auth/signup", tc.body, "")
			if got := errorCode(t, rec); got != tc.code {
				t.Errorf("expected %s, got %s", tc.code, got)
			}
		}
	})

	t.Run("duplicate signup and bad logins", func(t *testing.T) {
		app.signUpAndLogin(t, "carol", "secret1")

		rec := app.request("POST", "/api/v1/auth/signup", `{"username":"carol","password":"secret1","confirm_password":"secret1"}`, "")
		if rec.Code != http.StatusConflict || errorCode(t, rec) != "DUPLICATE_USER" {
			t.Errorf("expected DUPLICATE_USER, got %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("POST", "/api/v1/auth/login", `{"username":"carol","password":"wrong12"}`, "")
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %d %s", rec.Code, rec.Body.String())
		}

		rec = app.request("POST", "/api/v1/auth/login", `{"username":"nobody","password":"secret1"}`, "")
		if rec.Code != http.StatusNotFound || errorCode(t, rec) != "USER_NOT_FOUND" {
			t.Errorf("expected USER_NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		token := app.signUpAndLogin(t, "dave", "secret1")
		if rec := app.request("POST", "/api/v1/auth/logout", "", token); rec.Code != http.StatusOK {
			t.Fatalf("logout failed: %d %s", rec.Code, rec.Body.String())
		}
		if rec := app.request("GET", "/api/v1/ledger", "", token); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected revoked token to be rejected, got %d", rec.Code)
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		erin := app.signUpAndLogin(t, "erin", "secret1")
		frank := app.signUpAndLogin(t, "frank", "secret1")

		id := app.addExpense(t, erin, `{"title":"Books","amount":40,"category":"Bills"}`)

		if app.summary(t, frank)["expense_count"].(float64) != 0 {
			t.Error("frank must not see erin's expenses")
		}
		rec := app.request("DELETE", fmt.Sprintf("/api/v1/expenses/%.0f", id), "", frank)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 deleting another user's expense, got %d", rec.Code)
		}
	})
}

func TestAuditTrail(t *testing.T) {
	app := setupApp(t, "")
	token := app.signUpAndLogin(t, "alice", "secret1")
	app.addExpense(t, token, `{"title":"Lunch","amount":12.5,"category":"Food"}`)

	var actions []string
	if err := app.DB.Model(&models.AuditLog{}).Where("username = ?", "alice").Order("created_at").Pluck("action", &actions).Error; err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"SIGNUP": false, "LOGIN": false, "CREATE_EXPENSE": false}
	for _, a := range actions {
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for action, seen := range want {
		if !seen {
			t.Errorf("expected audit action %s in %v", action, actions)
		}
	}
}

func TestThemeFlow(t *testing.T) {
	app := setupApp(t, "")

	rec := app.request("GET", "/api/v1/theme", "", "")
	if parseJSON(t, rec)["theme"] != string(models.DefaultTheme) {
		t.Errorf("expected default theme, got %s", rec.Body.String())
	}

	rec = app.request("PUT", "/api/v1/theme", `{"theme":"Sunset"}`, "")
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
		t.Errorf("expected anonymous theme change to be rejected, got %d %s", rec.Code, rec.Body.String())
	}
	if raw, ok, _ := app.Store.Get(store.ThemeKey); ok {
		t.Errorf("expected theme to stay unset, got %q", raw)
	}

	token := app.signUpAndLogin(t, "alice", "secret1")
	if rec := app.request("PUT", "/api/v1/theme", `{"theme":"Sunset"}`, token); rec.Code != http.StatusOK {
		t.Fatalf("set theme failed: %d %s", rec.Code, rec.Body.String())
	}
	if raw, _, _ := app.Store.Get(store.ThemeKey); raw != "sunset" {
		t.Errorf("expected stored sunset, got %q", raw)
	}

	rec = app.request("PUT", "/api/v1/theme", `{"theme":"neon"}`, token)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "INVALID_THEME" {
		t.Errorf("expected INVALID_THEME, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestOperationalRoutes(t *testing.T) {
	app := setupApp(t, "metrics-key")

	rec := app.request("GET", "/api/health", "", "")
	if rec.Code != http.StatusOK || parseJSON(t, rec)["status"] != "ok" {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/metrics", "", "")
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "INVALID_API_KEY" {
		t.Errorf("expected metrics to require the key, got %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.Header.Set("X-API-Key", "metrics-key")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "budget_http_request_duration_seconds") {
		t.Errorf("unexpected metrics response %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/nope", "", "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND envelope, got %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("PATCH", "/api/v1/theme", "", "")
	if rec.Code != http.StatusMethodNotAllowed || errorCode(t, rec) != "METHOD_NOT_ALLOWED" {
		t.Errorf("expected METHOD_NOT_ALLOWED envelope, got %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("OPTIONS", "/api/v1/expenses", "", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected CORS preflight 204, got %d", rec.Code)
	}
}
