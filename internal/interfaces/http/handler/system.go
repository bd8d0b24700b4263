package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/infrastructure/persistence"
	"github.com/fintrack/backend/internal/infrastructure/storage"
	"github.com/fintrack/backend/internal/interfaces/http/dto"
)

// readinessKey is the storage key probed by the readiness endpoint; the
// object is never created, the lookup only proves the backend answers
const readinessKey = "system/readiness"

// SystemHandler handles health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	invoices  storage.InvoiceStorage
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, invoices storage.InvoiceStorage) *SystemHandler {
	return &SystemHandler{
		db:        db,
		invoices:  invoices,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports process liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// Ready reports whether the service can reach its dependencies
func (h *SystemHandler) Ready(c *gin.Context) {
	data := gin.H{"status": "ready"}
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Database unreachable"))
			return
		}
		if stats, err := h.db.Stats(); err == nil {
			data["pool"] = gin.H{
				"open":   stats.OpenConnections,
				"in_use": stats.InUse,
				"idle":   stats.Idle,
			}
		}
	}
	if h.invoices != nil {
		if _, err := h.invoices.Exists(c.Request.Context(), readinessKey); err != nil {
			c.JSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Invoice storage unreachable"))
			return
		}
		data["storage"] = "ok"
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}
