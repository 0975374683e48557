package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"expedientes-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReferenceHandler manages the technical reference corpus sent alongside
// every analysis.
type ReferenceHandler struct {
	refs        *service.ReferenceStore
	maxFileSize int64
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(refs *service.ReferenceStore, maxFileSize int64) *ReferenceHandler {
	return &ReferenceHandler{refs: refs, maxFileSize: maxFileSize}
}

type referenceSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	Size       int    `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

// UploadReference handles POST /api/references
func (h *ReferenceHandler) UploadReference(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	mimeType := inferMimeType(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if mimeType != "application/pdf" && mimeType != "text/plain" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Reference documents must be PDF or plain text",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	doc := &service.ReferenceDoc{
		ID:         uuid.New().String(),
		Name:       fileHeader.Filename,
		MimeType:   mimeType,
		Bytes:      data,
		UploadedAt: time.Now(),
	}
	h.refs.Add(doc)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": referenceSummary{
			ID:         doc.ID,
			Name:       doc.Name,
			MimeType:   doc.MimeType,
			Size:       len(doc.Bytes),
			UploadedAt: doc.UploadedAt.Format(time.RFC3339),
		},
	})
}

// ListReferences handles GET /api/references
func (h *ReferenceHandler) ListReferences(c *gin.Context) {
	docs := h.refs.List()
	summaries := make([]referenceSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, referenceSummary{
			ID:         doc.ID,
			Name:       doc.Name,
			MimeType:   doc.MimeType,
			Size:       len(doc.Bytes),
			UploadedAt: doc.UploadedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}

// DeleteReference handles DELETE /api/references/:id
func (h *ReferenceHandler) DeleteReference(c *gin.Context) {
	if err := h.refs.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Reference document not found",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
