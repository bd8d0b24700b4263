package expense

import (
	"strings"
	"time"

	"github.com/fintrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single financial record owned by a user
type Expense struct {
	shared.BaseEntity
	UserID       uuid.UUID
	CategoryID   uuid.UUID
	Subject      string
	ExpenseDate  time.Time
	Amount       decimal.Decimal
	Reimbursable bool
	Description  string
	InvoiceKey   string // storage key of the uploaded invoice image, empty when none
	Employee     string
}

// NewExpense creates a new expense record
func NewExpense(
	userID, categoryID uuid.UUID,
	subject string,
	expenseDate time.Time,
	amount decimal.Decimal,
) (*Expense, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	subject = strings.TrimSpace(subject)
	if err := validateSubject(subject); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if expenseDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}

	return &Expense{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		CategoryID:  categoryID,
		Subject:     subject,
		ExpenseDate: expenseDate,
		Amount:      amount,
	}, nil
}

func validateSubject(subject string) error {
	if subject == "" {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 200 {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 200 characters")
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	return nil
}

// ExpenseUpdate carries the optional fields of a partial update.
// Nil pointers mean "leave unchanged".
type ExpenseUpdate struct {
	CategoryID   *uuid.UUID
	Subject      *string
	ExpenseDate  *time.Time
	Amount       *decimal.Decimal
	Reimbursable *bool
	Description  *string
	Employee     *string
}

// Apply applies a partial update, validating each changed field
func (e *Expense) Apply(update ExpenseUpdate) error {
	if update.CategoryID != nil {
		if *update.CategoryID == uuid.Nil {
			return shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
		}
		e.CategoryID = *update.CategoryID
	}
	if update.Subject != nil {
		subject := strings.TrimSpace(*update.Subject)
		if err := validateSubject(subject); err != nil {
			return err
		}
		e.Subject = subject
	}
	if update.ExpenseDate != nil {
		if update.ExpenseDate.IsZero() {
			return shared.NewDomainError("INVALID_DATE", "Expense date is required")
		}
		e.ExpenseDate = *update.ExpenseDate
	}
	if update.Amount != nil {
		if err := validateAmount(*update.Amount); err != nil {
			return err
		}
		e.Amount = *update.Amount
	}
	if update.Reimbursable != nil {
		e.Reimbursable = *update.Reimbursable
	}
	if update.Description != nil {
		e.Description = *update.Description
	}
	if update.Employee != nil {
		e.Employee = *update.Employee
	}
	e.Touch()
	return nil
}

// AttachInvoice records the storage key of an uploaded invoice image
func (e *Expense) AttachInvoice(storageKey string) error {
	if storageKey == "" {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice storage key cannot be empty")
	}
	e.InvoiceKey = storageKey
	e.Touch()
	return nil
}

// DetachInvoice clears the invoice reference
func (e *Expense) DetachInvoice() {
	e.InvoiceKey = ""
	e.Touch()
}

// HasInvoice returns true when an invoice image is attached
func (e *Expense) HasInvoice() bool {
	return e.InvoiceKey != ""
}
