// Package export renders expenses as CSV or XLSX documents.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"budgetapp/internal/models"
)

// Header is the column row shared by both formats.
var Header = []string{"Title", "Amount", "Category", "Note", "Recurring", "Date"}

// SheetName is the worksheet that holds the rows of an XLSX export.
const SheetName = "Expenses"

// Content types and file names served by the HTTP presenter.
const (
	CSVContentType  = "text/csv; charset=utf-8"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVFileName     = "expenses.csv"
	XLSXFileName    = "expenses.xlsx"
)

// dateLayout is the en-US short date, e.g. 3/9/2024.
const dateLayout = "1/2/2006"

// FormatDate renders t as an en-US short date in loc. A nil loc means UTC.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// WriteCSV writes one row per expense in the given order. Text columns are
// always double-quoted; the amount is an unquoted decimal.
func WriteCSV(w io.Writer, expenses []models.Expense, loc *time.Location) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		row := strings.Join([]string{
			quote(e.Title),
			e.Amount.Decimal(),
			quote(e.Category),
			quote(e.Note),
			quote(string(e.Recurring)),
			quote(FormatDate(e.Date, loc)),
		}, ",")
		if _, err := bw.WriteString(row + "\n"); err != nil {
			return fmt.Errorf("write csv row %d: %w", e.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX writes the expenses to a workbook with a single Expenses sheet.
// Amounts are numeric cells.
func WriteXLSX(w io.Writer, expenses []models.Expense, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Title, e.Amount.Float64(), e.Category, e.Note, string(e.Recurring), FormatDate(e.Date, loc)}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", e.ID, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 30)
	_ = f.SetColWidth(SheetName, "B", "B", 12)
	_ = f.SetColWidth(SheetName, "C", "C", 16)
	_ = f.SetColWidth(SheetName, "D", "D", 30)
	_ = f.SetColWidth(SheetName, "E", "F", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
