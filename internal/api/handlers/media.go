package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"extmedia/internal/logger"
	"extmedia/internal/media"
	"extmedia/internal/models"

	"github.com/gin-gonic/gin"
)

// MediaImporter runs one reconciliation.
type MediaImporter interface {
	Import(ctx context.Context, source string, items []media.ExternalItem) (*media.SyncResult, error)
}

// MediaReader serves the read side of the mirror.
type MediaReader interface {
	Get(ctx context.Context, localID string) (*models.MediaRecord, error)
	List(ctx context.Context, offset, limit int, externalOnly bool) ([]models.MediaRecord, int64, error)
}

type MediaHandler struct {
	importer MediaImporter
	records  MediaReader
	logger   *logger.Logger
}

func NewMediaHandler(importer MediaImporter, records MediaReader, logger *logger.Logger) *MediaHandler {
	return &MediaHandler{
		importer: importer,
		records:  records,
		logger:   logger,
	}
}

// mediaView is a record as rendered to clients.
type mediaView struct {
	*models.MediaRecord
	URL    string `json:"url,omitempty"`
	SrcSet bool   `json:"srcset"`
}

func newMediaView(rec *models.MediaRecord) mediaView {
	url, _ := media.AttachmentURL(rec)
	return mediaView{MediaRecord: rec, URL: url, SrcSet: media.SrcSetEnabled(rec)}
}

// Import replaces the external mirror with the posted snapshot.
func (h *MediaHandler) Import(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_data", "Invalid data format. Expected an array.")
		return
	}

	items, err := media.DecodeSnapshot(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_data", "Invalid data format. Expected an array.")
		return
	}

	results, err := h.importer.Import(c.Request.Context(), "api", items)
	if err != nil {
		h.logger.Error("Media import failed: %v", err)
		respondError(c, http.StatusInternalServerError, "import_failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Import completed successfully.",
		"results": results,
	})
}

func (h *MediaHandler) List(c *gin.Context) {
	page, limit, offset := pagination(c)
	externalOnly := c.Query("external") == "1" || c.Query("external") == "true"

	records, total, err := h.records.List(c.Request.Context(), offset, limit, externalOnly)
	if err != nil {
		h.logger.Error("Failed to list media: %v", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to fetch media")
		return
	}

	views := make([]mediaView, len(records))
	for i := range records {
		views[i] = newMediaView(&records[i])
	}

	c.Header("X-WP-Total", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, gin.H{
		"data": views,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *MediaHandler) Get(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": newMediaView(rec)})
}

// Src resolves the URL to render for a size label, or for explicit width and height.
func (h *MediaHandler) Src(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}

	var (
		res      media.Resolution
		resolved bool
	)
	width, height := queryInt(c, "width", 0), queryInt(c, "height", 0)
	if width > 0 || height > 0 {
		res, resolved = media.ResolveDimensions(rec, width, height)
	} else {
		res, resolved = media.Resolve(rec, c.DefaultQuery("size", media.SizeFull))
	}

	if !resolved {
		respondError(c, http.StatusNotFound, "no_override", "No external source for this media item.")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *MediaHandler) load(c *gin.Context) (*models.MediaRecord, bool) {
	rec, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Media not found")
			return nil, false
		}
		h.logger.Error("Failed to fetch media %s: %v", c.Param("id"), err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to fetch media")
		return nil, false
	}
	return rec, true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
