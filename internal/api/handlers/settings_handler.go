// internal/api/handlers/settings_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/service"
)

type SettingsHandler struct {
	service *service.MetricsService
}

func NewSettingsHandler(service *service.MetricsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// settingsRequest uses pointers so a field the client omitted is
// distinguishable from one it explicitly set: omitted fields keep their
// current value, while explicit values (including invalid ones) are applied
// verbatim and hit validation.
type settingsRequest struct {
	ShopDomain                 string  `json:"shop_domain" binding:"required"`
	ShortageThresholdDays      *int    `json:"shortage_threshold_days"`
	OverstockThresholdDays     *int    `json:"overstock_threshold_days"`
	MildOverstockThresholdDays *int    `json:"mild_overstock_threshold_days"`
	SafetyDays                 *int    `json:"safety_days"`
	LeadTimeDays               *int    `json:"lead_time_days"`
	HistoryWindowDays          *int    `json:"history_window_days"`
	MinRecommendedQty          *int    `json:"min_recommended_qty"`
	MinSalesForForecast        *int    `json:"min_sales_for_forecast"`
	DigestCadence              *string `json:"digest_cadence"`
	DigestChannel              *string `json:"digest_channel"`
}

// apply overlays the fields present in the request onto the base settings.
func (r settingsRequest) apply(base domain.ThresholdSettings) domain.ThresholdSettings {
	base.ShopDomain = r.ShopDomain
	if r.ShortageThresholdDays != nil {
		base.ShortageThresholdDays = *r.ShortageThresholdDays
	}
	if r.OverstockThresholdDays != nil {
		base.OverstockThresholdDays = *r.OverstockThresholdDays
	}
	if r.MildOverstockThresholdDays != nil {
		base.MildOverstockThresholdDays = *r.MildOverstockThresholdDays
	}
	if r.SafetyDays != nil {
		base.SafetyDays = *r.SafetyDays
	}
	if r.LeadTimeDays != nil {
		base.LeadTimeDays = *r.LeadTimeDays
	}
	if r.HistoryWindowDays != nil {
		base.HistoryWindowDays = *r.HistoryWindowDays
	}
	if r.MinRecommendedQty != nil {
		base.MinRecommendedQty = *r.MinRecommendedQty
	}
	if r.MinSalesForForecast != nil {
		base.MinSalesForForecast = *r.MinSalesForForecast
	}
	if r.DigestCadence != nil {
		base.DigestCadence = *r.DigestCadence
	}
	if r.DigestChannel != nil {
		base.DigestChannel = *r.DigestChannel
	}
	return base
}

// GetSettings serves the shop's thresholds with defaults filled in.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	shop, ok := shopFromQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.Settings(c.Request.Context(), shop))
}

// SaveSettings persists the shop's thresholds. Fields absent from the payload
// keep their current (or default) value; explicit non-positive thresholds are
// rejected, never silently rewritten.
func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	base := h.service.Settings(c.Request.Context(), req.ShopDomain)
	settings := req.apply(base)
	if err := h.service.SaveSettings(c.Request.Context(), settings); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}
