// Package cli implements the budget command line. Every command resumes the
// session of the user recorded by the last login, so a login in one process
// carries over to the next.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"budgetapp/internal/app"
	"budgetapp/internal/config"
	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/models"
	appvalidator "budgetapp/internal/validator"
)

// Options configure the root command.
type Options struct {
	// Config is used to open the App and by the migrate command.
	Config *config.Config
	// App, when set, is used instead of opening one from Config.
	App *app.App
	Out io.Writer
	Err io.Writer
}

// CLI carries the state shared by every command of one invocation.
type CLI struct {
	cfg      *config.Config
	app      *app.App
	ownsApp  bool
	out      io.Writer
	errOut   io.Writer
	validate *validator.Validate
}

// New creates a CLI from opts.
func New(opts Options) *CLI {
	c := &CLI{
		cfg:      opts.Config,
		app:      opts.App,
		out:      opts.Out,
		errOut:   opts.Err,
		validate: validator.New(),
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	if c.errOut == nil {
		c.errOut = os.Stderr
	}
	if c.cfg == nil && c.app != nil {
		c.cfg = c.app.Config
	}
	appvalidator.RegisterOn(c.validate)
	c.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
	return c
}

// NewRootCommand builds the budget command tree.
func NewRootCommand(opts Options) *cobra.Command {
	return New(opts).Command()
}

// Command builds the budget command tree.
func (c *CLI) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "budget",
		Short: "Track a budget, income and expenses against a savings goal",
		Long: `budget keeps a per-user ledger of a budget, daily income and expenses,
and reports the remaining balance against a savings goal.
Log in once; later commands act on the logged-in user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.AddCommand(
		c.signupCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.budgetCommand(),
		c.savingsCommand(),
		c.summaryCommand(),
		c.categoriesCommand(),
		c.expenseCommand(),
		c.exportCommand(),
		c.themeCommand(),
		c.serveCommand(),
		NewMigrateCommand(c.cfg),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(opts Options, args []string) int {
	c := New(opts)
	defer func() {
		if err := c.Close(); err != nil {
			fmt.Fprintln(c.errOut, "Warning:", err)
		}
	}()

	root := c.Command()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(c.errOut, "Error:", Message(err))
		return 1
	}
	return 0
}

// Message returns the user-facing text of err.
func Message(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// open returns the App, opening it from the configuration on first use.
func (c *CLI) open() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	if c.cfg == nil {
		return nil, errors.New("no configuration loaded")
	}
	a, err := app.New(c.cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	c.ownsApp = true
	return a, nil
}

// Close releases the App if this CLI opened it.
func (c *CLI) Close() error {
	if !c.ownsApp || c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	c.ownsApp = false
	return err
}

// session resumes the logged-in user's session.
func (c *CLI) session() (*app.App, string, error) {
	a, err := c.open()
	if err != nil {
		return nil, "", err
	}
	username, err := a.Auth.Resume()
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, "", apperrors.WithMessage(apperrors.ErrUnauthorized, "Not logged in. Run 'budget login <username>' first.")
		}
		return nil, "", err
	}
	return a, username, nil
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) money(m models.Money) string {
	symbol := ""
	if c.cfg != nil {
		symbol = c.cfg.CurrencySymbol
	}
	if m < 0 {
		return "-" + symbol + (-m).String()
	}
	return symbol + m.String()
}

func (c *CLI) location() *time.Location {
	if c.cfg != nil && c.cfg.Location != nil {
		return c.cfg.Location
	}
	return time.Local
}

// parseMoney validates an amount argument or flag.
func parseMoney(name, value string) (models.Money, error) {
	m, err := models.ParseMoney(value)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("%s must be a number, got %q", name, value))
	}
	return m, nil
}

// checkStruct runs the struct validators and reports the first failure as
// INVALID_INPUT.
func (c *CLI) checkStruct(v any) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid --%s: failed %q check", fe.Field(), fe.Tag()))
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}
