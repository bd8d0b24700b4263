package expense

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/fintrack/backend/internal/domain/expense"
	"github.com/fintrack/backend/internal/domain/shared"
)

// ErrCategoryNameTaken is returned when a category name is already in use
var ErrCategoryNameTaken = shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")

// CategoryService handles category business operations
type CategoryService struct {
	categories expense.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categories expense.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := expense.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}

	taken, err := s.categories.ExistsByName(ctx, category.Name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCategoryNameTaken
	}

	if err := s.categories.Create(ctx, category); err != nil {
		// The unique index closes the check-then-create race
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrCategoryNameTaken
		}
		return nil, err
	}

	return ToCategoryResponse(category), nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// GetByName retrieves a category by its exact name
func (s *CategoryService) GetByName(ctx context.Context, name string) (*CategoryResponse, error) {
	category, err := s.categories.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// List retrieves categories matching the filter
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) ([]CategoryResponse, *ListMeta, error) {
	domainFilter := expense.CategoryFilter{
		Search:   filter.Search,
		IsActive: filter.IsActive,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.SortBy,
	}
	if filter.SortDesc {
		domainFilter.OrderDir = "desc"
	} else {
		domainFilter.OrderDir = "asc"
	}

	categories, total, err := s.categories.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *ToCategoryResponse(&categories[i])
	}

	return responses, &ListMeta{
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// ListActive retrieves the active categories for pickers, ordered by name
func (s *CategoryService) ListActive(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categories.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *ToCategoryResponse(&categories[i])
	}
	return responses, nil
}

// Update applies a partial update to a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != category.Name {
		taken, err := s.categories.ExistsByName(ctx, strings.TrimSpace(*req.Name))
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCategoryNameTaken
		}
		if err := category.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		category.SetActive(*req.IsActive)
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// Deactivate soft-deletes a category. Historical expenses keep their
// reference, the category just disappears from the pickers.
func (s *CategoryService) Deactivate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.MarkInactive(); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}
