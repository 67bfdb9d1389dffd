// internal/api/handlers/metrics_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/service"
)

type MetricsHandler struct {
	service *service.MetricsService
}

func NewMetricsHandler(service *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

func shopFromQuery(c *gin.Context) (string, bool) {
	shop := strings.TrimSpace(c.Query("shop"))
	if shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop query parameter is required"})
		return "", false
	}
	return shop, true
}

func timeframeFromQuery(c *gin.Context) domain.Timeframe {
	days, err := strconv.Atoi(c.DefaultQuery("timeframe", "30"))
	if err != nil {
		return domain.Timeframe30
	}
	return domain.ParseTimeframe(days)
}

// GetMetrics serves the raw variant metric set for a shop.
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	shop, ok := shopFromQuery(c)
	if !ok {
		return
	}

	metrics := h.service.GetVariantMetrics(c.Request.Context(), shop)
	c.JSON(http.StatusOK, gin.H{
		"shop":    shop,
		"count":   len(metrics),
		"metrics": metrics,
	})
}

// GetDashboard serves the per-timeframe KPI summary and top lists.
func (h *MetricsHandler) GetDashboard(c *gin.Context) {
	shop, ok := shopFromQuery(c)
	if !ok {
		return
	}

	summary := h.service.GetDashboard(c.Request.Context(), shop, timeframeFromQuery(c))
	c.JSON(http.StatusOK, summary)
}

// GetSyncLogs serves the recent audit trail for the shop.
func (h *MetricsHandler) GetSyncLogs(c *gin.Context) {
	shop, ok := shopFromQuery(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.service.RecentLogs(c.Request.Context(), shop, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sync logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries})
}
