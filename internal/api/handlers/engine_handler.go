// internal/api/handlers/engine_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pharmalytics/inventory-engine/internal/domain"
	"github.com/pharmalytics/inventory-engine/internal/service"
)

type EngineHandler struct {
	service *service.EngineService
}

func NewEngineHandler(service *service.EngineService) *EngineHandler {
	return &EngineHandler{service: service}
}

func parseGranularity(c *gin.Context) (domain.Granularity, bool) {
	raw := strings.ToLower(strings.TrimSpace(c.DefaultQuery("granularity", "day")))
	switch raw {
	case "day":
		return domain.GranularityDay, true
	case "week":
		return domain.GranularityWeek, true
	case "month":
		return domain.GranularityMonth, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be day, week or month"})
		return "", false
	}
}

func parseHorizon(c *gin.Context, fallback int) (int, bool) {
	horizon, err := strconv.Atoi(c.DefaultQuery("horizon", strconv.Itoa(fallback)))
	if err != nil || horizon <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be a positive integer"})
		return 0, false
	}
	return horizon, true
}

func respondEngineError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientDataError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// GetForecast handles GET /items/:item_id/forecast. refresh=true bypasses
// and clears the item's cached forecasts.
func (h *EngineHandler) GetForecast(c *gin.Context) {
	itemID := c.Param("item_id")

	g, ok := parseGranularity(c)
	if !ok {
		return
	}
	horizon, ok := parseHorizon(c, 7)
	if !ok {
		return
	}
	refresh := c.DefaultQuery("refresh", "false") == "true"

	result, err := h.service.GetForecast(c.Request.Context(), itemID, g, horizon, refresh)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAnomalies handles GET /items/:item_id/anomalies
func (h *EngineHandler) GetAnomalies(c *gin.Context) {
	itemID := c.Param("item_id")

	g, ok := parseGranularity(c)
	if !ok {
		return
	}

	flags, err := h.service.GetAnomalies(c.Request.Context(), itemID, g)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if flags == nil {
		flags = []domain.AnomalyFlag{}
	}

	c.JSON(http.StatusOK, gin.H{"item_id": itemID, "anomalies": flags})
}

// GetReorder handles GET /items/:item_id/reorder
func (h *EngineHandler) GetReorder(c *gin.Context) {
	itemID := c.Param("item_id")

	suggestion, err := h.service.GetReorderSuggestion(c.Request.Context(), itemID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if suggestion == nil {
		c.JSON(http.StatusOK, gin.H{"item_id": itemID, "action_needed": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item_id": itemID, "action_needed": true, "suggestion": suggestion})
}

// GetExpiryRisks handles GET /items/:item_id/expiry_risk
func (h *EngineHandler) GetExpiryRisks(c *gin.Context) {
	itemID := c.Param("item_id")

	scores, err := h.service.GetExpiryRisks(c.Request.Context(), itemID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if scores == nil {
		scores = []domain.ExpiryRiskScore{}
	}

	c.JSON(http.StatusOK, gin.H{"item_id": itemID, "batches": scores})
}

// TriggerRun handles POST /runs
func (h *EngineHandler) TriggerRun(c *gin.Context) {
	g, ok := parseGranularity(c)
	if !ok {
		return
	}
	horizon, ok := parseHorizon(c, 7)
	if !ok {
		return
	}

	batch, run, err := h.service.RunAll(c.Request.Context(), g, horizon)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "results": batch.Items})
}

// ListRuns handles GET /runs
func (h *EngineHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []domain.EngineRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
