package cli

import (
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budgetapp/internal/ledger"
	"budgetapp/internal/models"
)

func (c *CLI) budgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage the budget and daily income",
	}

	var income string
	set := &cobra.Command{
		Use:   "set AMOUNT",
		Short: "Replace the budget and daily income",
		Long:  `Replace the budget and daily income. A negative or non-numeric income is treated as zero.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			budget, err := parseMoney("budget", args[0])
			if err != nil {
				return err
			}
			dailyIncome := models.ParseMoneyOrZero(income)
			a, username, err := c.session()
			if err != nil {
				return err
			}
			summary, err := a.Ledger.SetBudget(username, budget, dailyIncome)
			if err != nil {
				return err
			}
			c.printf("Budget set to %s with daily income %s.\n", c.money(summary.Budget), c.money(summary.DailyIncome))
			c.printSummary(summary)
			return nil
		},
	}
	set.Flags().StringVarP(&income, "income", "i", "0", "Daily income")
	cmd.AddCommand(set)
	return cmd
}

func (c *CLI) savingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Manage the savings goal",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set AMOUNT",
		Short: "Replace the savings goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := parseMoney("savings goal", args[0])
			if err != nil {
				return err
			}
			a, username, err := c.session()
			if err != nil {
				return err
			}
			summary, err := a.Ledger.SetSavingsGoal(username, goal)
			if err != nil {
				return err
			}
			c.printf("Savings goal set to %s.\n", c.money(summary.SavingsGoal))
			c.printSummary(summary)
			return nil
		},
	})
	return cmd
}

func (c *CLI) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the budget, total expenses and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, username, err := c.session()
			if err != nil {
				return err
			}
			summary, err := a.Ledger.Summary(username)
			if err != nil {
				return err
			}
			c.printSummary(summary)
			return nil
		},
	}
}

func (c *CLI) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the amount spent per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, username, err := c.session()
			if err != nil {
				return err
			}
			totals, err := a.Ledger.CategoryTotals(username)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				c.printf("No expenses yet.\n")
				return nil
			}

			var total models.Money
			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', tabwriter.AlignRight)
			for _, t := range totals {
				total += t.Amount
				c.printRow(tw, t.Name, c.money(t.Amount))
			}
			c.printRow(tw, "Total", c.money(total))
			return tw.Flush()
		},
	}
}

func (c *CLI) printSummary(s ledger.Summary) {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	c.printRow(tw, "Budget:", c.money(s.Budget))
	c.printRow(tw, "Daily income:", c.money(s.DailyIncome))
	c.printRow(tw, "Savings goal:", c.money(s.SavingsGoal))
	c.printRow(tw, "Total expenses:", c.money(s.TotalExpenses))
	c.printRow(tw, "Balance:", c.money(s.Balance))
	_ = tw.Flush()
	c.printStatus(s.Status)
}

func (c *CLI) printStatus(status models.BalanceStatus) {
	switch status {
	case models.BalanceNegative:
		c.printf("Warning: your balance is negative.\n")
	case models.BalanceBelowSavingsGoal:
		c.printf("Warning: your balance is below the savings goal.\n")
	}
}
