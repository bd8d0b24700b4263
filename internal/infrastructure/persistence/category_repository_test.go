package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
)

func TestGormCategoryRepository_Create(t *testing.T) {
	t.Run("maps duplicate name to ErrAlreadyExists", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCategoryRepository(gormDB)

		mock.ExpectExec(`INSERT INTO "category"`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_category_name"})

		category, err := expense.NewCategory("Travel")
		require.NoError(t, err)

		err = repo.Create(context.Background(), category)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormCategoryRepository_FindByID(t *testing.T) {
	t.Run("finds existing category", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCategoryRepository(gormDB)

		categoryID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "is_active"}).
			AddRow(categoryID, "Travel", true)

		mock.ExpectQuery(`SELECT \* FROM "category" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(categoryID, 1).
			WillReturnRows(rows)

		category, err := repo.FindByID(context.Background(), categoryID)

		require.NoError(t, err)
		assert.Equal(t, "Travel", category.Name)
		assert.True(t, category.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing category to ErrNotFound", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCategoryRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "category"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCategoryRepository_FindAll(t *testing.T) {
	t.Run("counts then pages results", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCategoryRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "category" WHERE is_active = \$1`).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{"id", "name", "is_active"}).
			AddRow(uuid.New(), "Office", true).
			AddRow(uuid.New(), "Travel", true)
		mock.ExpectQuery(`SELECT \* FROM "category" WHERE is_active = \$1 ORDER BY name ASC LIMIT .*`).
			WillReturnRows(rows)

		active := true
		categories, total, err := repo.FindAll(context.Background(), expense.CategoryFilter{
			IsActive: &active,
			Page:     1,
			PageSize: 20,
			OrderBy:  "name",
			OrderDir: "asc",
		})

		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, categories, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown sort field falls back to name", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormCategoryRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "category"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "category" ORDER BY name DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "is_active"}))

		_, _, err := repo.FindAll(context.Background(), expense.CategoryFilter{
			OrderBy: "name; DROP TABLE category",
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCategoryRepository_FindActive(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormCategoryRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "name", "is_active"}).
		AddRow(uuid.New(), "Office", true)
	mock.ExpectQuery(`SELECT \* FROM "category" WHERE is_active = \$1 ORDER BY name ASC`).
		WithArgs(true).
		WillReturnRows(rows)

	categories, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
