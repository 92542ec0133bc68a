package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetapp/internal/app"
	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/export"
	"budgetapp/internal/ledger"
	"budgetapp/internal/models"
)

// expenseFlags are the editable expense fields as typed on the command line.
type expenseFlags struct {
	Title          string `flag:"title" validate:"notblank,max=200"`
	Amount         string `flag:"amount" validate:"money"`
	Category       string `flag:"category" validate:"notblank,max=100"`
	CustomCategory string `flag:"custom-category" validate:"max=100"`
	Note           string `flag:"note" validate:"max=500"`
	Recurring      string `flag:"recurring" validate:"recurrence"`
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Title, "title", "t", "", "What the money was spent on")
	cmd.Flags().StringVarP(&f.Amount, "amount", "a", "", "Amount spent")
	cmd.Flags().StringVarP(&f.Category, "category", "c", "", "One of "+strings.Join(models.DefaultCategories, ", ")+" or "+models.CategoryOthers)
	cmd.Flags().StringVar(&f.CustomCategory, "custom-category", "", "Category name used when --category is "+models.CategoryOthers)
	cmd.Flags().StringVarP(&f.Note, "note", "n", "", "Optional note")
	cmd.Flags().StringVarP(&f.Recurring, "recurring", "r", "", "none, daily, weekly or monthly")
}

// from fills every flag the user did not set from e.
func (f *expenseFlags) from(cmd *cobra.Command, e models.Expense) {
	keep := func(name string, dst *string, v string) {
		if !cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	keep("title", &f.Title, e.Title)
	keep("amount", &f.Amount, e.Amount.Decimal())
	keep("note", &f.Note, e.Note)
	keep("recurring", &f.Recurring, string(e.Recurring))
	if !cmd.Flags().Changed("category") && !cmd.Flags().Changed("custom-category") {
		f.Category = e.Category
		f.CustomCategory = ""
	}
}

func (c *CLI) expenseInput(f expenseFlags) (ledger.ExpenseInput, error) {
	if err := c.checkStruct(f); err != nil {
		return ledger.ExpenseInput{}, err
	}
	amount, err := parseMoney("amount", f.Amount)
	if err != nil {
		return ledger.ExpenseInput{}, err
	}
	recurring, err := models.ParseRecurrence(f.Recurring)
	if err != nil {
		return ledger.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	category := models.ResolveCategory(f.Category, f.CustomCategory)
	if category == "" {
		return ledger.ExpenseInput{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "--custom-category is required when --category is "+models.CategoryOthers)
	}
	return ledger.ExpenseInput{
		Title:     f.Title,
		Amount:    amount,
		Category:  category,
		Note:      f.Note,
		Recurring: recurring,
	}, nil
}

func (c *CLI) expenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "Add, edit, remove and list expenses",
	}
	cmd.AddCommand(
		c.expenseAddCommand(),
		c.expenseEditCommand(),
		c.expenseRemoveCommand(),
		c.expenseListCommand(),
		c.expenseClearCommand(),
	)
	return cmd
}

func (c *CLI) expenseAddCommand() *cobra.Command {
	var flags expenseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense dated now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := c.expenseInput(flags)
			if err != nil {
				return err
			}
			a, username, err := c.session()
			if err != nil {
				return err
			}
			expense, err := a.Ledger.AddExpense(username, in)
			if err != nil {
				return err
			}
			c.printf("Expense added successfully! (id %d)\n", expense.ID)
			return c.printBalance(a, username)
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (c *CLI) expenseEditCommand() *cobra.Command {
	var flags expenseFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an expense; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, username, err := c.session()
			if err != nil {
				return err
			}
			current, err := a.Ledger.GetExpense(username, id)
			if err != nil {
				return err
			}
			flags.from(cmd, current)
			in, err := c.expenseInput(flags)
			if err != nil {
				return err
			}
			if _, err := a.Ledger.UpdateExpense(username, id, in); err != nil {
				return err
			}
			c.printf("Expense updated successfully!\n")
			return c.printBalance(a, username)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) expenseRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, username, err := c.session()
			if err != nil {
				return err
			}
			if err := a.Ledger.DeleteExpense(username, id); err != nil {
				return err
			}
			c.printf("Expense deleted.\n")
			return c.printBalance(a, username)
		},
	}
}

func (c *CLI) expenseListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, username, err := c.session()
			if err != nil {
				return err
			}
			expenses, err := a.Ledger.ListExpenses(username)
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				c.printf("No expenses yet.\n")
				return nil
			}

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			c.printRow(tw, "ID", "DATE", "TITLE", "AMOUNT", "CATEGORY", "RECURRING", "NOTE")
			for _, e := range expenses {
				recurring := ""
				if e.IsRecurring() {
					recurring = string(e.Recurring)
				}
				c.printRow(tw,
					strconv.FormatInt(e.ID, 10),
					export.FormatDate(e.Date, c.location()),
					e.Title,
					c.money(e.Amount),
					e.Category,
					recurring,
					e.Note,
				)
			}
			return tw.Flush()
		},
	}
}

func (c *CLI) expenseClearCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense",
		Long:  `Delete every expense of the current user. Budget settings are kept.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete every expense without --yes")
			}
			a, username, err := c.session()
			if err != nil {
				return err
			}
			if err := a.Ledger.ClearExpenses(username); err != nil {
				return err
			}
			c.printf("All expenses cleared.\n")
			return c.printBalance(a, username)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting every expense")
	return cmd
}

func (c *CLI) printBalance(a *app.App, username string) error {
	summary, err := a.Ledger.Summary(username)
	if err != nil {
		return err
	}
	c.printf("Balance: %s\n", c.money(summary.Balance))
	c.printStatus(summary.Status)
	return nil
}

func (c *CLI) printRow(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t")+"\t")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid expense id %q", s))
	}
	return id, nil
}
