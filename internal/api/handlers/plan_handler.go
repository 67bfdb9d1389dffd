// internal/api/handlers/plan_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/domain"
	"github.com/stockpilot/backend-go/internal/service"
)

type PlanHandler struct {
	service *service.MetricsService
}

func NewPlanHandler(service *service.MetricsService) *PlanHandler {
	return &PlanHandler{service: service}
}

type planRequest struct {
	Shop      string  `json:"shop" binding:"required"`
	Budget    float64 `json:"budget" binding:"required"`
	Timeframe int     `json:"timeframe"`
}

// BuildPlan runs the budget allocator for the shop's current candidates.
func (h *PlanHandler) BuildPlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Shop = strings.TrimSpace(req.Shop)
	if req.Shop == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop is required"})
		return
	}
	if req.Budget <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "budget must be positive"})
		return
	}

	plan := h.service.BuildPlan(c.Request.Context(), req.Shop, domain.ParseTimeframe(req.Timeframe), req.Budget)
	c.JSON(http.StatusOK, plan)
}
