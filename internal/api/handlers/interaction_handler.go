// internal/api/handlers/interaction_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pharmalytics/inventory-engine/internal/service"
)

type InteractionHandler struct {
	service *service.InteractionService
}

func NewInteractionHandler(service *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{service: service}
}

type interactionCheckRequest struct {
	Drugs []string `json:"drugs" binding:"required"`
}

// Check handles POST /interactions/check
func (h *InteractionHandler) Check(c *gin.Context) {
	var req interactionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must contain a drugs array"})
		return
	}

	drugs := make([]string, 0, len(req.Drugs))
	for _, d := range req.Drugs {
		if trimmed := strings.TrimSpace(d); trimmed != "" {
			drugs = append(drugs, trimmed)
		}
	}
	if len(drugs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least two drug names are required"})
		return
	}

	c.JSON(http.StatusOK, h.service.Check(drugs))
}

// Reload handles POST /interactions/reload
func (h *InteractionHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": h.service.RuleCount()})
}
