package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"budgetapp/internal/export"
	"budgetapp/internal/models"
)

type writeFunc func(w io.Writer, expenses []models.Expense, loc *time.Location) error

func (c *CLI) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every expense to a file",
	}
	cmd.AddCommand(
		c.exportFormatCommand("csv", export.CSVFileName, export.WriteCSV),
		c.exportFormatCommand("xlsx", export.XLSXFileName, export.WriteXLSX),
	)
	return cmd
}

func (c *CLI) exportFormatCommand(format, defaultName string, write writeFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   format,
		Short: "Export expenses as " + format,
		Long:  fmt.Sprintf("Export expenses as %s. Use --output - to write to standard output.", format),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, username, err := c.session()
			if err != nil {
				return err
			}
			expenses, err := a.Ledger.ExportExpenses(username)
			if err != nil {
				return err
			}

			if output == "-" {
				return write(c.out, expenses, c.location())
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := write(f, expenses, c.location()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			c.printf("Exported %d expenses to %s\n", len(expenses), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", defaultName, "Destination file")
	return cmd
}
