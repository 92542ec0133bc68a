package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"budgetapp/internal/app"
	"budgetapp/internal/config"
	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/export"
	"budgetapp/internal/logger"
	"budgetapp/internal/services"
	"budgetapp/internal/store"
	"budgetapp/internal/testutil"
)

func init() {
	logger.Init("test")
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := &config.Config{
		StoreBackend:    config.BackendMemory,
		PasswordStorage: services.PasswordStoragePlaintext,
		CurrencySymbol:  "$",
		Location:        time.UTC,
	}
	return app.NewWithStore(cfg, store.NewMemory(), services.NewNopAuditService())
}

func run(t *testing.T, a *app.App, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Options{App: a, Out: &out, Err: &errOut})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, a *app.App, args ...string) string {
	t.Helper()
	out, err := run(t, a, args...)
	if err != nil {
		t.Fatalf("budget %s: %v\noutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

func login(t *testing.T, a *app.App, username string) {
	t.Helper()
	mustRun(t, a, "signup", username, "-p", "secret1", "--confirm", "secret1")
	mustRun(t, a, "login", username, "-p", "secret1")
}

var idPattern = regexp.MustCompile(`\(id (\d+)\)`)

func addExpense(t *testing.T, a *app.App, args ...string) string {
	t.Helper()
	out := mustRun(t, a, append([]string{"expense", "add"}, args...)...)
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in output %q", out)
	}
	return m[1]
}

func TestAuthCommands(t *testing.T) {
	a := newTestApp(t)

	if _, err := run(t, a, "whoami"); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("expected UNAUTHORIZED before login, got %v", err)
	}

	_, err := run(t, a, "signup", "alice", "-p", "secret1", "--confirm", "secret2")
	testutil.AssertAppError(t, err, "PASSWORD_MISMATCH")

	out := mustRun(t, a, "signup", "alice", "-p", "secret1", "--confirm", "secret1")
	if !strings.Contains(out, "Signup successful") {
		t.Errorf("unexpected output %q", out)
	}

	_, err = run(t, a, "login", "alice", "-p", "nope123")
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

	out = mustRun(t, a, "login", "alice", "-p", "secret1")
	if !strings.Contains(out, "Welcome, alice!") {
		t.Errorf("unexpected output %q", out)
	}
	if out := mustRun(t, a, "whoami"); strings.TrimSpace(out) != "alice" {
		t.Errorf("expected alice, got %q", out)
	}

	mustRun(t, a, "logout")
	_, err = run(t, a, "summary")
	testutil.AssertAppError(t, err, "UNAUTHORIZED")
	if !strings.Contains(Message(err), "budget login") {
		t.Errorf("expected a login hint, got %q", Message(err))
	}
}

func TestLedgerCommands(t *testing.T) {
	a := newTestApp(t)
	login(t, a, "alice")

	out := mustRun(t, a, "budget", "set", "1000", "--income", "200")
	if !strings.Contains(out, "Budget set to $1000.00 with daily income $200.00.") {
		t.Errorf("unexpected output %q", out)
	}

	addExpense(t, a, "-t", "Lunch", "-a", "100", "-c", "Food")
	train := addExpense(t, a, "-t", "Train", "-a", "200", "-c", "Travel", "-r", "Monthly")

	out = mustRun(t, a, "summary")
	for _, want := range []string{"Total expenses:", "$300.00", "Balance:", "$900.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, a, "savings", "set", "950")
	if !strings.Contains(out, "below the savings goal") {
		t.Errorf("expected savings warning, got %q", out)
	}

	out = mustRun(t, a, "categories")
	for _, want := range []string{"Food", "$100.00", "Travel", "$200.00", "Total", "$300.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("categories missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, a, "expense", "list")
	if !strings.Contains(out, "Train") || !strings.Contains(out, "monthly") {
		t.Errorf("unexpected list:\n%s", out)
	}

	// Edit keeps unset fields.
	mustRun(t, a, "expense", "edit", train, "-a", "250.5")
	expense, err := a.Ledger.GetExpense("alice", mustParseID(t, train))
	if err != nil {
		t.Fatal(err)
	}
	if expense.Title != "Train" || expense.Amount != 25050 || expense.Category != "Travel" || expense.Recurring != "monthly" {
		t.Errorf("unexpected edited expense %+v", expense)
	}

	mustRun(t, a, "expense", "edit", train, "-c", "Others", "--custom-category", "Commute")
	expense, _ = a.Ledger.GetExpense("alice", mustParseID(t, train))
	if expense.Category != "Commute" {
		t.Errorf("expected Commute, got %q", expense.Category)
	}

	out = mustRun(t, a, "expense", "rm", train)
	if !strings.Contains(out, "Balance: $1100.00") {
		t.Errorf("unexpected output %q", out)
	}
	_, err = run(t, a, "expense", "rm", train)
	testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

	if _, err := run(t, a, "expense", "clear"); err == nil {
		t.Error("expected clear without --yes to fail")
	}
	mustRun(t, a, "expense", "clear", "--yes")
	if out := mustRun(t, a, "expense", "list"); !strings.Contains(out, "No expenses yet.") {
		t.Errorf("unexpected list after clear %q", out)
	}
}

func TestBudgetSetTreatsInvalidIncomeAsZero(t *testing.T) {
	a := newTestApp(t)
	login(t, a, "alice")

	for _, income := range []string{"abc", "-20"} {
		out := mustRun(t, a, "budget", "set", "100", "--income="+income)
		if !strings.Contains(out, "Budget set to $100.00 with daily income $0.00.") {
			t.Errorf("income %q: unexpected output %q", income, out)
		}
	}

	summary, err := a.Ledger.Summary("alice")
	if err != nil {
		t.Fatal(err)
	}
	if summary.DailyIncome != 0 || summary.Balance != 10000 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestExpenseValidation(t *testing.T) {
	a := newTestApp(t)
	login(t, a, "alice")

	tests := map[string][]string{
		"blank title":       {"-t", " ", "-a", "5", "-c", "Food"},
		"text amount":       {"-t", "Tea", "-a", "ten", "-c", "Food"},
		"zero amount":       {"-t", "Tea", "-a", "0", "-c", "Food"},
		"unknown recurring": {"-t", "Tea", "-a", "5", "-c", "Food", "-r", "yearly"},
		"others no custom":  {"-t", "Tea", "-a", "5", "-c", "Others"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, a, append([]string{"expense", "add"}, args...)...)
			testutil.AssertAppError(t, err, "INVALID_INPUT")
		})
	}

	if _, err := run(t, a, "expense", "rm", "abc"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT for a bad id, got %v", err)
	}
	if _, err := run(t, a, "budget", "set", "--", "-5"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT for a negative budget, got %v", err)
	}
}

func TestExportCommands(t *testing.T) {
	a := newTestApp(t)
	login(t, a, "alice")

	_, err := run(t, a, "export", "csv", "-o", "-")
	testutil.AssertAppError(t, err, "NOTHING_TO_EXPORT")

	addExpense(t, a, "-t", `The "big" trip`, "-a", "300", "-c", "Travel", "-n", "flights")

	out := mustRun(t, a, "export", "csv", "-o", "-")
	if !strings.HasPrefix(out, "Title,Amount,Category,Note,Recurring,Date\n") || !strings.Contains(out, `"The ""big"" trip",300,"Travel","flights","none"`) {
		t.Errorf("unexpected csv:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	out = mustRun(t, a, "export", "xlsx", "-o", path)
	if !strings.Contains(out, "Exported 1 expenses") {
		t.Errorf("unexpected output %q", out)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != `The "big" trip` {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestThemeCommands(t *testing.T) {
	a := newTestApp(t)

	if out := mustRun(t, a, "theme"); strings.TrimSpace(out) != "cyber" {
		t.Errorf("expected default theme, got %q", out)
	}
	mustRun(t, a, "theme", "set", "Ocean")
	if out := mustRun(t, a, "theme", "get"); strings.TrimSpace(out) != "ocean" {
		t.Errorf("expected ocean, got %q", out)
	}
	_, err := run(t, a, "theme", "set", "neon")
	testutil.AssertAppError(t, err, "INVALID_THEME")
}

func TestMigrateCommands(t *testing.T) {
	cfg := &config.Config{
		StoreBackend: config.BackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "budget.db"),
	}
	runMigrate := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := NewRootCommand(Options{Config: cfg, Out: &out, Err: &out})
		cmd.SetArgs(append([]string{"migrate"}, args...))
		if err := cmd.Execute(); err != nil {
			t.Fatalf("migrate %v: %v", args, err)
		}
		return out.String()
	}

	if out := runMigrate("version"); !strings.Contains(out, "Version: none") {
		t.Errorf("unexpected version output %q", out)
	}
	runMigrate("up")
	if out := runMigrate("version"); !strings.Contains(out, "Version: 2, Dirty: false") {
		t.Errorf("unexpected version output %q", out)
	}
	runMigrate("down", "2")
	if out := runMigrate("version"); !strings.Contains(out, "Version: none") {
		t.Errorf("unexpected version output %q", out)
	}

	if _, err := os.Stat(cfg.SQLitePath); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestExecute(t *testing.T) {
	a := newTestApp(t)
	var out, errOut bytes.Buffer

	code := Execute(Options{App: a, Out: &out, Err: &errOut}, []string{"summary"})
	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(errOut.String(), "Error: Not logged in.") {
		t.Errorf("unexpected stderr %q", errOut.String())
	}

	errOut.Reset()
	code = Execute(Options{App: a, Out: &out, Err: &errOut}, []string{"theme"})
	if code != 0 || errOut.Len() != 0 {
		t.Errorf("expected success, got %d %q", code, errOut.String())
	}
}

func mustParseID(t *testing.T, s string) int64 {
	t.Helper()
	id, err := parseID(s)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
