package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"expedientes-backend/repository"
)

// ArchiveHandler serves analyses persisted to Postgres. Routes using it are
// only registered when a database is configured.
type ArchiveHandler struct {
	archive *repository.CaseArchiveRepository
	logger  *zap.Logger
}

func NewArchiveHandler(archive *repository.CaseArchiveRepository, logger *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{archive: archive, logger: logger}
}

// ListArchive handles GET /api/archive?limit=N
func (h *ArchiveHandler) ListArchive(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = n
	}

	cases, err := h.archive.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("archive listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_QUERY_FAILED",
				"message": "Failed to list archived cases",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cases,
	})
}

// GetArchivedCase handles GET /api/archive/:id
func (h *ArchiveHandler) GetArchivedCase(c *gin.Context) {
	caseID := c.Param("id")

	archived, err := h.archive.GetByCaseID(c.Request.Context(), caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CASE_NOT_FOUND",
					"message": "No archived case with that id",
				},
			})
			return
		}
		h.logger.Error("archive lookup failed",
			zap.String("caseId", caseID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_QUERY_FAILED",
				"message": "Failed to load archived case",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    archived,
	})
}
