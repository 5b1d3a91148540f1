package handlers

import (
	"net/http"

	"oauth-relay/internal/web"

	"github.com/gin-gonic/gin"
)

// IndexHandler рендерить головну сторінку
type IndexHandler struct {
	publicURL string
	version   string
}

// NewIndexHandler створює новий IndexHandler
func NewIndexHandler(publicURL, version string) *IndexHandler {
	return &IndexHandler{
		publicURL: publicURL,
		version:   version,
	}
}

// Index передає host клієнтському скрипту
func (h *IndexHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, web.IndexTemplate, gin.H{
		"host":    h.publicURL,
		"version": h.version,
	})
}
