package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fintrack/backend/internal/domain/expense"
)

// CategoryModel is the persistence model for expense categories
type CategoryModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "category"
}

// ToDomain converts the persistence model to a domain Category entity
func (m *CategoryModel) ToDomain() *expense.Category {
	return &expense.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Category entity
func (m *CategoryModel) FromDomain(c *expense.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.IsActive = c.IsActive
}

// ExpenseModel is the persistence model for expense records
type ExpenseModel struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subject      string          `gorm:"type:varchar(200);not null"`
	ExpenseDate  time.Time       `gorm:"not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Reimbursable bool            `gorm:"not null;default:false"`
	Description  string          `gorm:"type:text"`
	InvoiceKey   string          `gorm:"type:varchar(500)"`
	Employee     string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity
func (m *ExpenseModel) ToDomain() *expense.Expense {
	return &expense.Expense{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		CategoryID:   m.CategoryID,
		Subject:      m.Subject,
		ExpenseDate:  m.ExpenseDate,
		Amount:       m.Amount,
		Reimbursable: m.Reimbursable,
		Description:  m.Description,
		InvoiceKey:   m.InvoiceKey,
		Employee:     m.Employee,
	}
}

// FromDomain populates the persistence model from a domain Expense entity
func (m *ExpenseModel) FromDomain(e *expense.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.UserID = e.UserID
	m.CategoryID = e.CategoryID
	m.Subject = e.Subject
	m.ExpenseDate = e.ExpenseDate
	m.Amount = e.Amount
	m.Reimbursable = e.Reimbursable
	m.Description = e.Description
	m.InvoiceKey = e.InvoiceKey
	m.Employee = e.Employee
}
