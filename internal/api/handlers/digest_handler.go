// internal/api/handlers/digest_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/digest"
)

type DigestHandler struct {
	service *digest.Service
}

func NewDigestHandler(service *digest.Service) *DigestHandler {
	return &DigestHandler{service: service}
}

// ListArchive serves the archived digest objects for a shop.
func (h *DigestHandler) ListArchive(c *gin.Context) {
	shop, ok := shopFromQuery(c)
	if !ok {
		return
	}

	objects, err := h.service.ListArchive(c.Request.Context(), shop)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shop":    shop,
		"digests": objects,
	})
}
