package expense

import (
	"strings"

	"github.com/fintrack/backend/internal/domain/shared"
)

// Category groups expenses for reporting.
// Deactivated categories stay referenced by historical expenses but are
// hidden from the pickers, so removal is a soft flag rather than a delete.
type Category struct {
	shared.BaseEntity
	Name     string
	IsActive bool
}

// NewCategory creates a new active category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		IsActive:   true,
	}, nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 50 characters")
	}
	return nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	c.Name = name
	c.Touch()
	return nil
}

// SetActive toggles the active flag
func (c *Category) SetActive(active bool) {
	c.IsActive = active
	c.Touch()
}

// MarkInactive soft-deletes the category
func (c *Category) MarkInactive() error {
	if !c.IsActive {
		return shared.NewDomainError("INVALID_STATE", "Category is already inactive")
	}
	c.IsActive = false
	c.Touch()
	return nil
}
