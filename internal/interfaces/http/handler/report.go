package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/application/report"
)

// ReportHandler handles expense aggregation HTTP requests
type ReportHandler struct {
	BaseHandler
	summaryService *report.SummaryService
}

// NewReportHandler creates a new report handler
func NewReportHandler(summaryService *report.SummaryService) *ReportHandler {
	return &ReportHandler{summaryService: summaryService}
}

// RegisterRoutes registers report routes on the given group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/expenses/summary", h.ExpenseSummary)
	}
}

// ExpenseSummary returns the user's expenses aggregated into time buckets
func (h *ReportHandler) ExpenseSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req report.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, "Invalid query parameters", err)
		return
	}

	resp, err := h.summaryService.Summarize(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
