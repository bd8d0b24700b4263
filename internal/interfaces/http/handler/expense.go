package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appexpense "github.com/fintrack/backend/internal/application/expense"
)

// ExpenseHandler handles expense HTTP requests. Every operation is scoped
// to the authenticated user.
type ExpenseHandler struct {
	BaseHandler
	expenseService *appexpense.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *appexpense.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// RegisterRoutes registers expense routes on the given group
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.Create)
		expenses.GET("", h.List)
		expenses.GET("/:id", h.GetByID)
		expenses.PUT("/:id", h.Update)
		expenses.PATCH("/:id", h.Update)
		expenses.DELETE("/:id", h.Delete)
		expenses.POST("/:id/invoice", h.UploadInvoice)
		expenses.GET("/:id/invoice", h.DownloadInvoice)
		expenses.DELETE("/:id/invoice", h.DeleteInvoice)
	}
}

// Create creates a new expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appexpense.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, "Invalid request body", err)
		return
	}

	resp, err := h.expenseService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the user's expenses matching the query filters
func (h *ExpenseHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appexpense.ExpenseListFilter
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

	responses, meta, err := h.expenseService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, responses, meta.Total, meta.Page, meta.PageSize)
}

// GetByID returns one of the user's expenses
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.expenseService.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update applies a partial update to an expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req appexpense.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, "Invalid request body", err)
		return
	}

	resp, err := h.expenseService.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an expense and its stored invoice
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadInvoice attaches an invoice image from a multipart form field
// named "file". A previously attached invoice is replaced.
func (h *ExpenseHandler) UploadInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Failed to read upload")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	resp, err := h.expenseService.AttachInvoice(c.Request.Context(), userID, id, contentType, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadInvoice streams the expense's invoice image
func (h *ExpenseHandler) DownloadInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	r, contentType, err := h.expenseService.OpenInvoice(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer r.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, r)
}

// DeleteInvoice removes the expense's invoice image
func (h *ExpenseHandler) DeleteInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if _, err := h.expenseService.DetachInvoice(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
