package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/backend/internal/domain/expense"
)

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

func TestSummaryService(t *testing.T) {
	userID := uuid.New()

	t.Run("aggregates monthly buckets with grand total", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := NewSummaryService(repo)

		repo.On("Summarize", mock.Anything, userID, mock.MatchedBy(func(q expense.SummaryQuery) bool {
			return q.Interval == expense.BucketMonth
		})).Return([]expense.SummaryBucket{
			{Bucket: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(100), Count: 3},
			{Bucket: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Total: decimal.NewFromInt(250), Count: 5},
		}, nil)

		resp, err := svc.Summarize(context.Background(), userID, SummaryRequest{Interval: "month"})
		require.NoError(t, err)
		assert.Equal(t, "month", resp.Interval)
		require.Len(t, resp.Buckets, 2)
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(350)))
		assert.Equal(t, int64(3), resp.Buckets[0].Count)
	})

	t.Run("empty interval defaults to month", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := NewSummaryService(repo)

		repo.On("Summarize", mock.Anything, userID, mock.MatchedBy(func(q expense.SummaryQuery) bool {
			return q.Interval == expense.BucketMonth
		})).Return([]expense.SummaryBucket{}, nil)

		resp, err := svc.Summarize(context.Background(), userID, SummaryRequest{})
		require.NoError(t, err)
		assert.Equal(t, "month", resp.Interval)
		assert.Empty(t, resp.Buckets)
		assert.True(t, resp.GrandTotal.IsZero())
	})

	t.Run("rejects unknown interval", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := NewSummaryService(repo)

		_, err := svc.Summarize(context.Background(), userID, SummaryRequest{Interval: "week"})
		assert.ErrorIs(t, err, ErrInvalidInterval)
		repo.AssertNotCalled(t, "Summarize")
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := NewSummaryService(repo)

		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := svc.Summarize(context.Background(), userID, SummaryRequest{
			Interval: "day",
			FromDate: &from,
			ToDate:   &to,
		})
		assert.Error(t, err)
	})

	t.Run("category filter is forwarded", func(t *testing.T) {
		repo := new(MockExpenseRepository)
		svc := NewSummaryService(repo)

		categoryID := uuid.New()
		repo.On("Summarize", mock.Anything, userID, mock.MatchedBy(func(q expense.SummaryQuery) bool {
			return q.CategoryID != nil && *q.CategoryID == categoryID && q.Interval == expense.BucketYear
		})).Return([]expense.SummaryBucket{}, nil)

		_, err := svc.Summarize(context.Background(), userID, SummaryRequest{
			Interval:   "year",
			CategoryID: &categoryID,
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
