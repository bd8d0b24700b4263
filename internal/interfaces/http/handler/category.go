package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appexpense "github.com/fintrack/backend/internal/application/expense"
)

// CategoryHandler handles expense category HTTP requests
type CategoryHandler struct {
	BaseHandler
	categoryService *appexpense.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *appexpense.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes registers category routes on the given group
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	{
		categories.POST("", h.Create)
		categories.GET("", h.List)
		categories.GET("/active", h.ListActive)
		categories.GET("/by-name/:name", h.GetByName)
		categories.GET("/:id", h.GetByID)
		categories.PUT("/:id", h.Update)
		categories.PATCH("/:id", h.Update)
		categories.DELETE("/:id", h.Deactivate)
	}
}

// Create creates a new category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req appexpense.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, "Invalid request body", err)
		return
	}

	resp, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns categories matching the query filters
func (h *CategoryHandler) List(c *gin.Context) {
	var filter appexpense.CategoryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, "Invalid query parameters", err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	responses, meta, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, meta.Total, meta.Page, meta.PageSize)
}

// ListActive returns the active categories for pickers
func (h *CategoryHandler) ListActive(c *gin.Context) {
	responses, err := h.categoryService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}

// GetByID returns a single category
func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByName returns a category by its exact name
func (h *CategoryHandler) GetByName(c *gin.Context) {
	resp, err := h.categoryService.GetByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update applies a partial update to a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appexpense.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, "Invalid request body", err)
		return
	}

	resp, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate soft-deletes a category
func (h *CategoryHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if _, err := h.categoryService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *BaseHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}
