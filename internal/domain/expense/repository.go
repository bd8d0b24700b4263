package expense

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindAll(ctx context.Context, filter CategoryFilter) ([]Category, int64, error)
	FindActive(ctx context.Context) ([]Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// CategoryFilter contains filter options for querying categories
type CategoryFilter struct {
	Search   string
	IsActive *bool
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	Update(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Expense, error)
	FindAll(ctx context.Context, userID uuid.UUID, filter Filter) ([]Expense, int64, error)
	Summarize(ctx context.Context, userID uuid.UUID, query SummaryQuery) ([]SummaryBucket, error)
}

// Filter contains filter options for querying expenses
type Filter struct {
	Search       string
	CategoryID   *uuid.UUID
	Reimbursable *bool
	FromDate     *time.Time
	ToDate       *time.Time
	Page         int
	PageSize     int
	OrderBy      string
	OrderDir     string
}

// BucketInterval selects the time bucket width for aggregation
type BucketInterval string

const (
	BucketDay   BucketInterval = "day"
	BucketMonth BucketInterval = "month"
	BucketYear  BucketInterval = "year"
)

// IsValid checks if the interval is supported
func (b BucketInterval) IsValid() bool {
	switch b {
	case BucketDay, BucketMonth, BucketYear:
		return true
	}
	return false
}

// DateFormat returns the Postgres date_trunc unit for the interval
func (b BucketInterval) DateFormat() string {
	return string(b)
}

// SummaryQuery describes a time-bucketed aggregation request
type SummaryQuery struct {
	Interval   BucketInterval
	CategoryID *uuid.UUID
	FromDate   *time.Time
	ToDate     *time.Time
}

// SummaryBucket is one aggregated time bucket
type SummaryBucket struct {
	Bucket     time.Time       `json:"bucket"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`
}
