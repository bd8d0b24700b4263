package expense

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
	"github.com/fintrack/backend/internal/infrastructure/storage"
)

// Service errors
var (
	ErrCategoryNotFound = shared.NewDomainError("INVALID_CATEGORY", "Category does not exist")
	ErrCategoryInactive = shared.NewDomainError("INVALID_CATEGORY", "Category is deactivated")
	ErrNoInvoice        = shared.NewDomainError("NO_INVOICE", "Expense has no invoice attached")
)

// ExpenseService handles expense business operations. All reads and writes
// are scoped to the owning user.
type ExpenseService struct {
	expenses   expense.ExpenseRepository
	categories expense.CategoryRepository
	invoices   storage.InvoiceStorage
	logger     *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenses expense.ExpenseRepository,
	categories expense.CategoryRepository,
	invoices storage.InvoiceStorage,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		expenses:   expenses,
		categories: categories,
		invoices:   invoices,
		logger:     logger,
	}
}

// Create creates a new expense for the user
func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if err := s.requireActiveCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	exp, err := expense.NewExpense(userID, req.CategoryID, req.Subject, req.ExpenseDate, req.Amount)
	if err != nil {
		return nil, err
	}
	exp.Reimbursable = req.Reimbursable
	exp.Description = req.Description
	exp.Employee = req.Employee

	if err := s.expenses.Create(ctx, exp); err != nil {
		return nil, err
	}
	return ToExpenseResponse(exp), nil
}

// GetByID retrieves one of the user's expenses
func (s *ExpenseService) GetByID(ctx context.Context, userID, id uuid.UUID) (*ExpenseResponse, error) {
	exp, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return ToExpenseResponse(exp), nil
}

// List retrieves the user's expenses matching the filter
func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, filter ExpenseListFilter) ([]ExpenseResponse, *ListMeta, error) {
	domainFilter := expense.Filter{
		Search:       filter.Search,
		CategoryID:   filter.CategoryID,
		Reimbursable: filter.Reimbursable,
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		Page:         filter.Page,
		PageSize:     filter.PageSize,
		OrderBy:      filter.SortBy,
	}
	if filter.SortDesc {
		domainFilter.OrderDir = "desc"
	} else {
		domainFilter.OrderDir = "asc"
	}

	expenses, total, err := s.expenses.FindAll(ctx, userID, domainFilter)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = *ToExpenseResponse(&expenses[i])
	}

	return responses, &ListMeta{
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Update applies a partial update to one of the user's expenses
func (s *ExpenseService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	exp, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil && *req.CategoryID != exp.CategoryID {
		if err := s.requireActiveCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	if err := exp.Apply(expense.ExpenseUpdate{
		CategoryID:   req.CategoryID,
		Subject:      req.Subject,
		ExpenseDate:  req.ExpenseDate,
		Amount:       req.Amount,
		Reimbursable: req.Reimbursable,
		Description:  req.Description,
		Employee:     req.Employee,
	}); err != nil {
		return nil, err
	}

	if err := s.expenses.Update(ctx, exp); err != nil {
		return nil, err
	}
	return ToExpenseResponse(exp), nil
}

// Delete removes one of the user's expenses along with its stored invoice
func (s *ExpenseService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	exp, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.expenses.Delete(ctx, userID, id); err != nil {
		return err
	}

	if exp.HasInvoice() {
		// The record is gone; a stale object is only wasted space
		if err := s.invoices.Delete(ctx, exp.InvoiceKey); err != nil {
			s.logger.Warn("Failed to delete orphaned invoice object",
				zap.String("key", exp.InvoiceKey),
				zap.Error(err))
		}
	}
	return nil
}

// AttachInvoice stores an invoice image and links it to the expense.
// A previously attached invoice is replaced.
func (s *ExpenseService) AttachInvoice(ctx context.Context, userID, id uuid.UUID, contentType string, r io.Reader) (*ExpenseResponse, error) {
	if err := storage.ValidateContentType(contentType); err != nil {
		return nil, shared.NewDomainError("UNSUPPORTED_MEDIA", err.Error())
	}

	exp, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key, err := storage.NewInvoiceKey(exp.ID, contentType)
	if err != nil {
		return nil, shared.NewDomainError("UNSUPPORTED_MEDIA", err.Error())
	}

	if err := s.invoices.Save(ctx, key, contentType, r); err != nil {
		return nil, err
	}

	previousKey := exp.InvoiceKey
	if err := exp.AttachInvoice(key); err != nil {
		return nil, err
	}

	if err := s.expenses.Update(ctx, exp); err != nil {
		// Roll back the upload so the store doesn't accumulate orphans
		if cleanupErr := s.invoices.Delete(ctx, key); cleanupErr != nil {
			s.logger.Warn("Failed to clean up invoice after update failure",
				zap.String("key", key),
				zap.Error(cleanupErr))
		}
		return nil, err
	}

	if previousKey != "" && previousKey != key {
		if err := s.invoices.Delete(ctx, previousKey); err != nil {
			s.logger.Warn("Failed to delete replaced invoice object",
				zap.String("key", previousKey),
				zap.Error(err))
		}
	}
	return ToExpenseResponse(exp), nil
}

// OpenInvoice returns a reader for the expense's invoice image and its
// content type. The caller closes the reader.
func (s *ExpenseService) OpenInvoice(ctx context.Context, userID, id uuid.UUID) (io.ReadCloser, string, error) {
	exp, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if !exp.HasInvoice() {
		return nil, "", ErrNoInvoice
	}

	r, contentType, err := s.invoices.Open(ctx, exp.InvoiceKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", ErrNoInvoice
		}
		return nil, "", err
	}
	return r, contentType, nil
}

// DetachInvoice removes the expense's invoice image
func (s *ExpenseService) DetachInvoice(ctx context.Context, userID, id uuid.UUID) (*ExpenseResponse, error) {
	exp, err := s.expenses.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !exp.HasInvoice() {
		return nil, ErrNoInvoice
	}

	key := exp.InvoiceKey
	exp.DetachInvoice()

	if err := s.expenses.Update(ctx, exp); err != nil {
		return nil, err
	}

	if err := s.invoices.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete detached invoice object",
			zap.String("key", key),
			zap.Error(err))
	}
	return ToExpenseResponse(exp), nil
}

func (s *ExpenseService) requireActiveCategory(ctx context.Context, categoryID uuid.UUID) error {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	if !category.IsActive {
		return ErrCategoryInactive
	}
	return nil
}
