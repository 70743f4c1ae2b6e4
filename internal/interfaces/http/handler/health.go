package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hotelagreement/backend/internal/interfaces/http/dto"
)

// HealthHandler answers liveness checks
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health godoc
// @ID           getHealth
// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy"})
}

// RegisterRootRoutes registers the health endpoint
func (h *HealthHandler) RegisterRootRoutes(r gin.IRoutes) {
	r.GET("/health", h.Health)
}
