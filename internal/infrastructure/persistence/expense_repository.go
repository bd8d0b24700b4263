package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
	"github.com/fintrack/backend/internal/infrastructure/persistence/models"
)

// GormExpenseRepository implements expense.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create persists a new expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(e)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists changes to an existing expense owned by its user
func (r *GormExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(e)
	result := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Where("id = ? AND user_id = ?", model.ID, model.UserID).
		Updates(map[string]any{
			"category_id":  model.CategoryID,
			"subject":      model.Subject,
			"expense_date": model.ExpenseDate,
			"amount":       model.Amount,
			"reimbursable": model.Reimbursable,
			"description":  model.Description,
			"invoice_key":  model.InvoiceKey,
			"employee":     model.Employee,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an expense owned by the given user
func (r *GormExpenseRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ExpenseModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an expense by ID scoped to its owner
func (r *GormExpenseRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds a user's expenses with filtering and pagination
func (r *GormExpenseRepository) FindAll(ctx context.Context, userID uuid.UUID, filter expense.Filter) ([]expense.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Where("user_id = ?", userID)
	query = applyExpenseFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ExpenseSortFields, "expense_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var expenseModels []models.ExpenseModel
	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, 0, err
	}

	expenses := make([]expense.Expense, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses, total, nil
}

// applyExpenseFilter applies the optional filter predicates
func applyExpenseFilter(query *gorm.DB, filter expense.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("subject ILIKE ? OR description ILIKE ? OR employee ILIKE ?",
			pattern, pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Reimbursable != nil {
		query = query.Where("reimbursable = ?", *filter.Reimbursable)
	}
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", *filter.ToDate)
	}
	return query
}

// Summarize aggregates a user's expenses into time buckets using date_trunc
func (r *GormExpenseRepository) Summarize(ctx context.Context, userID uuid.UUID, q expense.SummaryQuery) ([]expense.SummaryBucket, error) {
	if !q.Interval.IsValid() {
		return nil, shared.NewDomainError("INVALID_INTERVAL", "Interval must be day, month or year")
	}

	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{}).
		Select(fmt.Sprintf(
			"date_trunc('%s', expense_date) AS bucket, SUM(amount) AS total, COUNT(*) AS count",
			q.Interval.DateFormat())).
		Where("user_id = ?", userID)

	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}
	if q.FromDate != nil {
		query = query.Where("expense_date >= ?", *q.FromDate)
	}
	if q.ToDate != nil {
		query = query.Where("expense_date <= ?", *q.ToDate)
	}

	var buckets []expense.SummaryBucket
	if err := query.
		Group("bucket").
		Order("bucket ASC").
		Scan(&buckets).Error; err != nil {
		return nil, err
	}
	return buckets, nil
}

var _ expense.ExpenseRepository = (*GormExpenseRepository)(nil)
