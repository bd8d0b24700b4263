package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
)

// ErrInvalidInterval is returned for unsupported bucket intervals
var ErrInvalidInterval = shared.NewDomainError("INVALID_INTERVAL", "Interval must be one of: day, month, year")

// SummaryService aggregates a user's expenses into time buckets
type SummaryService struct {
	expenses expense.ExpenseRepository
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(expenses expense.ExpenseRepository) *SummaryService {
	return &SummaryService{expenses: expenses}
}

// SummaryRequest describes an aggregation query
type SummaryRequest struct {
	Interval   string     `form:"interval"`
	CategoryID *uuid.UUID `form:"category_id"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
}

// SummaryBucketResponse is one aggregated time bucket in API responses
type SummaryBucketResponse struct {
	Bucket time.Time       `json:"bucket"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
}

// SummaryResponse is the full aggregation result
type SummaryResponse struct {
	Interval   string                  `json:"interval"`
	Buckets    []SummaryBucketResponse `json:"buckets"`
	GrandTotal decimal.Decimal         `json:"grand_total"`
}

// Summarize aggregates the user's expenses by the requested interval.
// An empty interval defaults to monthly buckets.
func (s *SummaryService) Summarize(ctx context.Context, userID uuid.UUID, req SummaryRequest) (*SummaryResponse, error) {
	interval := expense.BucketInterval(req.Interval)
	if req.Interval == "" {
		interval = expense.BucketMonth
	}
	if !interval.IsValid() {
		return nil, ErrInvalidInterval
	}
	if req.FromDate != nil && req.ToDate != nil && req.ToDate.Before(*req.FromDate) {
		return nil, shared.NewDomainError("INVALID_DATE_RANGE", "to_date must not precede from_date")
	}

	buckets, err := s.expenses.Summarize(ctx, userID, expense.SummaryQuery{
		Interval:   interval,
		CategoryID: req.CategoryID,
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
	})
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{
		Interval:   string(interval),
		Buckets:    make([]SummaryBucketResponse, len(buckets)),
		GrandTotal: decimal.Zero,
	}
	for i, b := range buckets {
		resp.Buckets[i] = SummaryBucketResponse{
			Bucket: b.Bucket,
			Total:  b.Total,
			Count:  b.Count,
		}
		resp.GrandTotal = resp.GrandTotal.Add(b.Total)
	}
	return resp, nil
}
