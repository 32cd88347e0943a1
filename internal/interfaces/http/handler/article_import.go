package handler

import (
	"path/filepath"
	"strings"

	pricingapp "github.com/freightpro/backend/internal/application/pricing"
	"github.com/gin-gonic/gin"
)

// maxImportFileSize caps article CSV uploads at 10MB
const maxImportFileSize = 10 * 1024 * 1024

// ArticleImportHandler handles bulk article catalog imports
type ArticleImportHandler struct {
	BaseHandler
	importService *pricingapp.ArticleImportService
}

// NewArticleImportHandler creates a new ArticleImportHandler
func NewArticleImportHandler(importService *pricingapp.ArticleImportService) *ArticleImportHandler {
	return &ArticleImportHandler{
		importService: importService,
	}
}

// Import accepts a CSV file upload and loads it into the article catalog.
// The file is validated as a whole first; a file with any invalid row
// imports nothing and the row errors are returned in the response body.
func (h *ArticleImportHandler) Import(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "CSV file is required (multipart field 'file')")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Size > maxImportFileSize {
		h.BadRequest(c, "CSV file exceeds the 10MB limit")
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".csv" {
		h.BadRequest(c, "Only .csv files are accepted")
		return
	}

	result, err := h.importService.ImportCSV(c.Request.Context(), scope, header.Filename, header.Size, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
