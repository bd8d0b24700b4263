package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDatabaseTransaction(t *testing.T) {
	t.Run("commits in normal mode", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		db := NewDatabaseWithGorm(gormDB, false)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec(`UPDATE "users" SET is_active = false`).Error
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back in forced-rollback mode", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		db := NewDatabaseWithGorm(gormDB, true)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec(`UPDATE "users" SET is_active = false`).Error
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabasePing(t *testing.T) {
	gormDB, _, mockDB := newMockGorm(t)
	defer mockDB.Close()
	db := NewDatabaseWithGorm(gormDB, false)

	assert.NoError(t, db.Ping())
}

func TestDatabaseStats(t *testing.T) {
	gormDB, _, mockDB := newMockGorm(t)
	defer mockDB.Close()
	db := NewDatabaseWithGorm(gormDB, false)

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}
