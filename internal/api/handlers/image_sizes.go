package handlers

import (
	"net/http"

	"extmedia/internal/imagesizes"

	"github.com/gin-gonic/gin"
)

type ImageSizeHandler struct {
	registry *imagesizes.Registry
}

func NewImageSizeHandler(registry *imagesizes.Registry) *ImageSizeHandler {
	return &ImageSizeHandler{registry: registry}
}

// List returns every registered size keyed by label.
func (h *ImageSizeHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.All())
}
