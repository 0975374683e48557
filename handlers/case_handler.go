package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"expedientes-backend/models"
	"expedientes-backend/repository"
	"expedientes-backend/service"
	"expedientes-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CaseHandler handles HTTP requests for case file operations
type CaseHandler struct {
	analysis         *service.AnalysisService
	store            *service.CaseStore
	files            storage.Storage
	archive          *repository.CaseArchiveRepository
	logger           *zap.Logger
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewCaseHandler creates a new case handler. The archive may be nil when no
// database is configured.
func NewCaseHandler(analysis *service.AnalysisService, store *service.CaseStore, files storage.Storage, archive *repository.CaseArchiveRepository, logger *zap.Logger, maxFileSize int64) *CaseHandler {
	return &CaseHandler{
		analysis:    analysis,
		store:       store,
		files:       files,
		archive:     archive,
		logger:      logger,
		maxFileSize: maxFileSize,
		allowedMimeTypes: map[string]bool{
			"application/pdf": true,
			"text/plain":      true,
			"image/jpeg":      true,
			"image/png":       true,
			"image/webp":      true,
		},
	}
}

// caseSummary is the listing shape: record metadata without the analysis
// payload or file bytes.
type caseSummary struct {
	ID         string `json:"id"`
	FileName   string `json:"fileName"`
	UploadDate string `json:"uploadDate"`
	Status     string `json:"status"`
	PageCount  int    `json:"pageCount"`
	Rit        string `json:"rit"`
}

func summarize(record *models.CaseRecord) caseSummary {
	return caseSummary{
		ID:         record.ID,
		FileName:   record.FileName,
		UploadDate: record.UploadDate.Format("2006-01-02T15:04:05Z07:00"),
		Status:     string(record.Status),
		PageCount:  record.PageCount,
		Rit:        record.Analysis.Rit.Value,
	}
}

func inferMimeType(filename, headerType string) string {
	if headerType != "" && headerType != "application/octet-stream" {
		return headerType
	}
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// UploadCases handles POST /api/cases
// The batch is atomic: every file is validated before any case is created,
// so one bad file rejects the whole upload.
func (h *CaseHandler) UploadCases(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FORM",
				"message": "Multipart form is required",
			},
		})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILES",
				"message": "At least one file is required in the 'files' field",
			},
		})
		return
	}

	for _, fh := range fileHeaders {
		if fh.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_TOO_LARGE",
					"message": fmt.Sprintf("File %q exceeds maximum of %d bytes", fh.Filename, h.maxFileSize),
				},
			})
			return
		}
		mimeType := inferMimeType(fh.Filename, fh.Header.Get("Content-Type"))
		if !h.allowedMimeTypes[mimeType] {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FILE_TYPE",
					"message": fmt.Sprintf("File %q type not allowed. Allowed types: PDF, TXT, JPG, PNG, WEBP", fh.Filename),
				},
			})
			return
		}
	}

	// Read every file before creating any record, so a failed read rejects
	// the whole batch instead of leaving part of it already dispatched.
	uploads := make([]models.FileData, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		file, err := fh.Open()
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
		data, err := io.ReadAll(file)
		file.Close()
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
		uploads = append(uploads, models.FileData{
			Bytes:    data,
			MimeType: inferMimeType(fh.Filename, fh.Header.Get("Content-Type")),
			Name:     fh.Filename,
		})
	}

	created := make([]caseSummary, 0, len(uploads))
	for _, upload := range uploads {
		record, err := h.analysis.CreateCase(c.Request.Context(), upload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPLOAD_FAILED",
					"message": fmt.Sprintf("Failed to register case: %v", err),
				},
			})
			return
		}

		// The client sees the record already analyzing; the goroutine picks
		// it up from there.
		_ = h.store.MarkAnalyzing(record.ID)
		record.Status = models.StatusAnalyzing

		// Detached context: the analysis outlives the upload request.
		go func(id string) {
			if err := h.analysis.ProcessCase(context.Background(), id); err != nil {
				h.logger.Error("background analysis failed",
					zap.String("case_id", id), zap.Error(err))
			}
		}(record.ID)

		created = append(created, summarize(record))
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	records := h.store.List()
	summaries := make([]caseSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, summarize(record))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// DeleteCase handles DELETE /api/cases/:id
func (h *CaseHandler) DeleteCase(c *gin.Context) {
	storagePath, err := h.store.Remove(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}
	if storagePath != "" && h.files != nil {
		if err := h.files.Delete(c.Request.Context(), storagePath); err != nil {
			h.logger.Warn("failed to delete stored file",
				zap.String("path", storagePath), zap.Error(err))
		}
	}
	// An explicit delete also clears the archived row; only the retention
	// sweep leaves archives behind.
	if h.archive != nil {
		if err := h.archive.DeleteByCaseID(c.Request.Context(), c.Param("id")); err != nil {
			h.logger.Warn("failed to delete archived case",
				zap.String("case_id", c.Param("id")), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// DownloadCaseFile handles GET /api/cases/:id/file
func (h *CaseHandler) DownloadCaseFile(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName))
	c.Data(http.StatusOK, record.FileData.MimeType, record.FileData.Bytes)
}

// ExportCaseJSON handles GET /api/cases/:id/export/json
func (h *CaseHandler) ExportCaseJSON(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}
	out, err := service.ExportJSON(record.Analysis)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.FileName+".json"))
	c.Data(http.StatusOK, "application/json", out)
}

// ExportCaseSummary handles GET /api/cases/:id/export/summary
func (h *CaseHandler) ExportCaseSummary(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}
	c.String(http.StatusOK, service.ExportSummary(record.Analysis))
}

// ExportCaseRows handles GET /api/cases/:id/export/rows
func (h *CaseHandler) ExportCaseRows(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}
	c.String(http.StatusOK, service.TableTSV([]*models.CaseRecord{record}))
}

// GetCaseRows handles GET /api/cases/:id/rows
func (h *CaseHandler) GetCaseRows(c *gin.Context) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    service.ConsolidateRows(record),
	})
}

// ExportTable handles GET /api/export/table
func (h *CaseHandler) ExportTable(c *gin.Context) {
	c.String(http.StatusOK, service.TableTSV(h.store.List()))
}

// ExportTableXLSX handles GET /api/export/table.xlsx
func (h *CaseHandler) ExportTableXLSX(c *gin.Context) {
	out, err := service.ExportXLSX(h.store.List())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPORT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="casos.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}
