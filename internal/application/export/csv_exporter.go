package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/backend/internal/domain/expense"
)

// expenseHeader is the column layout of the expense export
var expenseHeader = []string{
	"id",
	"expense_date",
	"subject",
	"category",
	"amount",
	"reimbursable",
	"employee",
	"description",
	"has_invoice",
	"created_at",
}

// exportPageSize bounds memory while streaming large exports
const exportPageSize = 500

// CSVExporter streams a user's expenses as CSV
type CSVExporter struct {
	expenses   expense.ExpenseRepository
	categories expense.CategoryRepository
}

// NewCSVExporter creates a new CSVExporter
func NewCSVExporter(expenses expense.ExpenseRepository, categories expense.CategoryRepository) *CSVExporter {
	return &CSVExporter{expenses: expenses, categories: categories}
}

// ExportFilter narrows the exported rows
type ExportFilter struct {
	CategoryID   *uuid.UUID `form:"category_id"`
	Reimbursable *bool      `form:"reimbursable"`
	FromDate     *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// ExportExpenses writes the user's expenses matching the filter to w as CSV,
// oldest first. Category IDs are resolved to names once up front.
func (e *CSVExporter) ExportExpenses(ctx context.Context, w io.Writer, userID uuid.UUID, filter ExportFilter) error {
	categoryNames, err := e.categoryNames(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(expenseHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	domainFilter := expense.Filter{
		CategoryID:   filter.CategoryID,
		Reimbursable: filter.Reimbursable,
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		PageSize:     exportPageSize,
		OrderBy:      "expense_date",
		OrderDir:     "asc",
	}

	for page := 1; ; page++ {
		domainFilter.Page = page
		expenses, total, err := e.expenses.FindAll(ctx, userID, domainFilter)
		if err != nil {
			return err
		}

		for i := range expenses {
			if err := cw.Write(expenseRow(&expenses[i], categoryNames)); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}

		if int64(page*exportPageSize) >= total || len(expenses) == 0 {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}

func (e *CSVExporter) categoryNames(ctx context.Context) (map[uuid.UUID]string, error) {
	categories, _, err := e.categories.FindAll(ctx, expense.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(categories))
	for i := range categories {
		names[categories[i].ID] = categories[i].Name
	}
	return names, nil
}

func expenseRow(exp *expense.Expense, categoryNames map[uuid.UUID]string) []string {
	return []string{
		exp.ID.String(),
		exp.ExpenseDate.Format("2006-01-02"),
		exp.Subject,
		categoryNames[exp.CategoryID],
		exp.Amount.StringFixed(2),
		fmt.Sprintf("%t", exp.Reimbursable),
		exp.Employee,
		exp.Description,
		fmt.Sprintf("%t", exp.HasInvoice()),
		exp.CreatedAt.UTC().Format(time.RFC3339),
	}
}
