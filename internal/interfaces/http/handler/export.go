package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/application/export"
)

// ExportHandler handles expense export HTTP requests
type ExportHandler struct {
	BaseHandler
	exporter *export.CSVExporter
}

// NewExportHandler creates a new export handler
func NewExportHandler(exporter *export.CSVExporter) *ExportHandler {
	return &ExportHandler{exporter: exporter}
}

// RegisterRoutes registers export routes on the given group
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	exports := rg.Group("/exports")
	{
		exports.GET("/expenses.csv", h.ExportExpensesCSV)
	}
}

// ExportExpensesCSV streams the user's expenses as a CSV download
func (h *ExportHandler) ExportExpensesCSV(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter export.ExportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, "Invalid query parameters", err)
		return
	}

	filename := fmt.Sprintf("expenses-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.exporter.ExportExpenses(c.Request.Context(), c.Writer, userID, filter); err != nil {
		// Headers are already sent; all we can do is stop the stream
		_ = c.Error(err)
	}
}
