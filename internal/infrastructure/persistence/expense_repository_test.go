package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
)

func TestGormExpenseRepository_FindByID(t *testing.T) {
	t.Run("scopes lookup to the owning user", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		expenseID := uuid.New()
		userID := uuid.New()
		categoryID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "user_id", "category_id", "subject", "expense_date", "amount", "reimbursable"}).
			AddRow(expenseID, userID, categoryID, "Team lunch", time.Now(), decimal.NewFromFloat(42.50), false)

		mock.ExpectQuery(`SELECT \* FROM "expenses" WHERE id = \$1 AND user_id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(expenseID, userID, 1).
			WillReturnRows(rows)

		e, err := repo.FindByID(context.Background(), userID, expenseID)

		require.NoError(t, err)
		assert.Equal(t, "Team lunch", e.Subject)
		assert.Equal(t, userID, e.UserID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormExpenseRepository_Delete(t *testing.T) {
	t.Run("deletes an owned expense", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		expenseID := uuid.New()
		userID := uuid.New()

		mock.ExpectExec(`DELETE FROM "expenses" WHERE id = \$1 AND user_id = \$2`).
			WithArgs(expenseID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), userID, expenseID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's expense is not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		mock.ExpectExec(`DELETE FROM "expenses" WHERE id = \$1 AND user_id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormExpenseRepository_FindAll(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormExpenseRepository(gormDB)

	userID := uuid.New()
	categoryID := uuid.New()
	reimbursable := true

	mock.ExpectQuery(`SELECT count\(\*\) FROM "expenses" WHERE user_id = \$1 AND category_id = \$2 AND reimbursable = \$3`).
		WithArgs(userID, categoryID, reimbursable).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "user_id", "category_id", "subject", "expense_date", "amount", "reimbursable"}).
		AddRow(uuid.New(), userID, categoryID, "Taxi", time.Now(), decimal.NewFromInt(15), true)
	mock.ExpectQuery(`SELECT \* FROM "expenses" WHERE user_id = \$1 AND category_id = \$2 AND reimbursable = \$3 ORDER BY expense_date DESC LIMIT .*`).
		WillReturnRows(rows)

	expenses, total, err := repo.FindAll(context.Background(), userID, expense.Filter{
		CategoryID:   &categoryID,
		Reimbursable: &reimbursable,
		Page:         1,
		PageSize:     20,
	})

	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, expenses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormExpenseRepository_Summarize(t *testing.T) {
	t.Run("rejects unknown interval", func(t *testing.T) {
		gormDB, _, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		_, err := repo.Summarize(context.Background(), uuid.New(), expense.SummaryQuery{
			Interval: expense.BucketInterval("week"),
		})
		assert.Error(t, err)
	})

	t.Run("groups by month", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(gormDB)

		userID := uuid.New()
		march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"bucket", "total", "count"}).
			AddRow(march, decimal.NewFromFloat(120.50), 3)

		mock.ExpectQuery(`SELECT date_trunc\('month', expense_date\) AS bucket, SUM\(amount\) AS total, COUNT\(\*\) AS count FROM "expenses" WHERE user_id = \$1 GROUP BY "bucket" ORDER BY bucket ASC`).
			WithArgs(userID).
			WillReturnRows(rows)

		buckets, err := repo.Summarize(context.Background(), userID, expense.SummaryQuery{
			Interval: expense.BucketMonth,
		})

		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, march, buckets[0].Bucket)
		assert.True(t, buckets[0].Total.Equal(decimal.NewFromFloat(120.50)))
		assert.EqualValues(t, 3, buckets[0].Count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
