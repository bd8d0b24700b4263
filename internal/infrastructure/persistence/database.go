package persistence

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fintrack/backend/internal/infrastructure/config"
	"github.com/fintrack/backend/internal/infrastructure/logger"
)

// Database holds the database connection and provides pool management.
// When forceRollback is set every Transaction call is rolled back after the
// callback returns, which keeps test runs from leaving data behind.
type Database struct {
	DB            *gorm.DB
	forceRollback bool
}

// NewDatabase opens a connection using the given configuration.
// The first Ping may race the database container starting up, so the dial is
// retried with doubling backoff up to cfg.ConnectAttempts times.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger) (*Database, error) {
	gl := logger.NewGormLogger(zapLogger, logger.EchoLogLevel(cfg.EchoLog))

	var db *gorm.DB
	var err error
	backoff := cfg.ConnectBackoff
	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = open(cfg, gl)
		if err == nil {
			break
		}
		if attempt == attempts {
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
		}
		zapLogger.Warn("database not ready, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		time.Sleep(backoff)
		backoff *= 2
	}

	return &Database{DB: db, forceRollback: cfg.ForceRollback}, nil
}

// open dials once and configures the connection pool
func open(cfg *config.DatabaseConfig, gl gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		// Map driver errors (unique violations etc.) to gorm sentinels so
		// repositories can errors.Is on gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns())
	sqlDB.SetMaxIdleConns(cfg.PoolSize)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// NewDatabaseWithGorm wraps an existing GORM connection (used by tests)
func NewDatabaseWithGorm(db *gorm.DB, forceRollback bool) *Database {
	return &Database{DB: db, forceRollback: forceRollback}
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
}

// errForcedRollback aborts a forced-rollback transaction without surfacing
// an error to the caller
var errForcedRollback = fmt.Errorf("forced rollback")

// Transaction executes a function within a database transaction.
// In forced-rollback mode the transaction is always rolled back after the
// callback succeeds.
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	if !d.forceRollback {
		return d.DB.Transaction(fn)
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errForcedRollback
	})
	if err == errForcedRollback {
		return nil
	}
	return err
}
