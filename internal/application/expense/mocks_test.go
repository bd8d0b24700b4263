package expense

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fintrack/backend/internal/domain/expense"
)

// MockCategoryRepository is a mock implementation of expense.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *expense.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *expense.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByName(ctx context.Context, name string) (*expense.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter expense.CategoryFilter) ([]expense.Category, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]expense.Category), args.Get(1).(int64), args.Error(2)
}

func (m *MockCategoryRepository) FindActive(ctx context.Context) ([]expense.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockExpenseRepository is a mock implementation of expense.ExpenseRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, exp *expense.Expense) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockExpenseRepository) Update(ctx context.Context, exp *expense.Expense) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAll(ctx context.Context, userID uuid.UUID, filter expense.Filter) ([]expense.Expense, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]expense.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) Summarize(ctx context.Context, userID uuid.UUID, query expense.SummaryQuery) ([]expense.SummaryBucket, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.SummaryBucket), args.Error(1)
}

// MockInvoiceStorage is a mock implementation of storage.InvoiceStorage
type MockInvoiceStorage struct {
	mock.Mock
}

func (m *MockInvoiceStorage) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	args := m.Called(ctx, key, contentType, r)
	return args.Error(0)
}

func (m *MockInvoiceStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.Error(2)
}

func (m *MockInvoiceStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockInvoiceStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
