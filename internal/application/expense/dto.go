package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/backend/internal/domain/expense"
)

// CreateCategoryRequest carries the input for category creation
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateCategoryRequest carries the input for a partial category update.
// Nil pointers mean "leave unchanged".
type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// CategoryListFilter contains query options for listing categories
type CategoryListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	SortBy   string `form:"sort_by"`
	SortDesc bool   `form:"sort_desc"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain category to its API representation
func ToCategoryResponse(c *expense.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateExpenseRequest carries the input for expense creation
type CreateExpenseRequest struct {
	CategoryID   uuid.UUID       `json:"category_id" binding:"required"`
	Subject      string          `json:"subject" binding:"required"`
	ExpenseDate  time.Time       `json:"expense_date" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Reimbursable bool            `json:"reimbursable"`
	Description  string          `json:"description"`
	Employee     string          `json:"employee"`
}

// UpdateExpenseRequest carries the input for a partial expense update.
// Nil pointers mean "leave unchanged".
type UpdateExpenseRequest struct {
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	Subject      *string          `json:"subject,omitempty"`
	ExpenseDate  *time.Time       `json:"expense_date,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Reimbursable *bool            `json:"reimbursable,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Employee     *string          `json:"employee,omitempty"`
}

// ExpenseListFilter contains query options for listing expenses
type ExpenseListFilter struct {
	Search       string     `form:"search"`
	CategoryID   *uuid.UUID `form:"category_id"`
	Reimbursable *bool      `form:"reimbursable"`
	FromDate     *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate       *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	SortBy       string     `form:"sort_by"`
	SortDesc     bool       `form:"sort_desc"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Subject      string          `json:"subject"`
	ExpenseDate  time.Time       `json:"expense_date"`
	Amount       decimal.Decimal `json:"amount"`
	Reimbursable bool            `json:"reimbursable"`
	Description  string          `json:"description,omitempty"`
	Employee     string          `json:"employee,omitempty"`
	HasInvoice   bool            `json:"has_invoice"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToExpenseResponse converts a domain expense to its API representation
func ToExpenseResponse(e *expense.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:           e.ID,
		CategoryID:   e.CategoryID,
		Subject:      e.Subject,
		ExpenseDate:  e.ExpenseDate,
		Amount:       e.Amount,
		Reimbursable: e.Reimbursable,
		Description:  e.Description,
		Employee:     e.Employee,
		HasInvoice:   e.HasInvoice(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ListMeta carries pagination metadata for list responses
type ListMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
