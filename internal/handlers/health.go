package handlers

import (
	"net/http"

	"oauth-relay/internal/build"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthHandler містить handlers для health check
type HealthHandler struct {
	version string
}

// NewHealthHandler створює новий HealthHandler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Health повертає статус здоров'я сервісу
// @Summary Health Check
// @Description Повертає статус здоров'я сервісу
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": build.Service,
		"version": h.version,
	})
	logrus.Debug("Health check performed")
}
