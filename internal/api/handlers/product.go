package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"extmedia/internal/logger"
	"extmedia/internal/models"
	"extmedia/internal/products"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProductImporter runs the two-pass CSV import.
type ProductImporter interface {
	ImportReader(ctx context.Context, dir string, r io.Reader) (*products.Summary, error)
}

type ProductHandler struct {
	db        *gorm.DB
	importer  ProductImporter
	uploadDir string
	logger    *logger.Logger
}

// NewProductHandler builds the handler. A nil importer means the product engine is not installed.
func NewProductHandler(db *gorm.DB, importer ProductImporter, uploadDir string, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		db:        db,
		importer:  importer,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// Import accepts a CSV upload in the "file" form field or as the raw request body.
func (h *ProductHandler) Import(c *gin.Context) {
	if h.importer == nil {
		respondError(c, http.StatusNotImplemented, "woocommerce_missing", "WooCommerce is not active.")
		return
	}

	content, err := csvContent(c)
	if err != nil {
		h.logger.Error("Failed to read product upload: %v", err)
		respondError(c, http.StatusBadRequest, "no_data", "No CSV data provided.")
		return
	}
	if len(bytes.TrimSpace(content)) == 0 {
		respondError(c, http.StatusBadRequest, "no_data", "No CSV data provided.")
		return
	}

	summary, err := h.importer.ImportReader(c.Request.Context(), h.uploadDir, bytes.NewReader(content))
	if err != nil {
		h.logger.Error("Product import failed: %v", err)
		respondError(c, http.StatusInternalServerError, "import_error", err.Error())
		return
	}

	c.JSON(http.StatusOK, summary)
}

func csvContent(c *gin.Context) ([]byte, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return c.GetRawData()
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *ProductHandler) List(c *gin.Context) {
	var items []models.Product

	page, limit, offset := pagination(c)

	// Filters
	status := c.Query("stock_status")
	search := c.Query("search")

	query := h.db.WithContext(c.Request.Context()).Model(&models.Product{})

	if status != "" {
		query = query.Where("stock_status = ?", status)
	}

	if search != "" {
		query = query.Where("name LIKE ? OR sku LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		h.logger.Error("Failed to count products: %v", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to fetch products")
		return
	}

	if err := query.Order("sku").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var product models.Product
	if err := h.db.WithContext(c.Request.Context()).First(&product, "id = ? OR sku = ?", id, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "not_found", "Product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}
