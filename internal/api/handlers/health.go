package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omnibar-app/omnibar/backend/internal/health"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) Health(c *gin.Context) {
	response := h.checker.Overall(c.Request.Context())

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}
