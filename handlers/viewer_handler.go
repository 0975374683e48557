package handlers

import (
	"net/http"
	"strconv"

	"expedientes-backend/pdfreader"
	"expedientes-backend/service"

	"github.com/gin-gonic/gin"
)

// ViewerHandler serves page geometry and quote highlight regions for the
// PDF viewer.
type ViewerHandler struct {
	store *service.CaseStore
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(store *service.CaseStore) *ViewerHandler {
	return &ViewerHandler{store: store}
}

func (h *ViewerHandler) loadPDF(c *gin.Context) (*pdfreader.Document, bool) {
	record, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
		return nil, false
	}
	if record.FileData.MimeType != "application/pdf" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_A_PDF",
				"message": "Viewer endpoints require a PDF case file",
			},
		})
		return nil, false
	}
	doc, err := pdfreader.Load(record.FileData.Bytes)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PDF_PARSE_ERROR",
				"message": "Could not parse the case PDF",
			},
		})
		return nil, false
	}
	return doc, true
}

func pageParams(c *gin.Context) (page int, scale float64, rotation int, ok bool) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PAGE",
				"message": "Page must be a positive integer",
			},
		})
		return 0, 0, 0, false
	}

	scale = 1.0
	if raw := c.Query("scale"); raw != "" {
		scale, err = strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_SCALE",
					"message": "Scale must be a positive number",
				},
			})
			return 0, 0, 0, false
		}
	}

	if raw := c.Query("rotation"); raw != "" {
		rotation, err = strconv.Atoi(raw)
		if err != nil || rotation%90 != 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_ROTATION",
					"message": "Rotation must be a multiple of 90",
				},
			})
			return 0, 0, 0, false
		}
	}

	return page, scale, rotation, true
}

// GetPageInfo handles GET /api/cases/:id/pages/:page
func (h *ViewerHandler) GetPageInfo(c *gin.Context) {
	doc, ok := h.loadPDF(c)
	if !ok {
		return
	}
	page, scale, rotation, ok := pageParams(c)
	if !ok {
		return
	}

	width, height, err := doc.PageSize(page)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAGE_OUT_OF_RANGE",
				"message": "Page number out of range",
			},
		})
		return
	}

	vp := pdfreader.NewViewport(width, height, scale, rotation)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"page":           page,
			"pageCount":      doc.PageCount(),
			"width":          width,
			"height":         height,
			"viewportWidth":  vp.Width,
			"viewportHeight": vp.Height,
		},
	})
}

// GetPageHighlights handles GET /api/cases/:id/pages/:page/highlights
func (h *ViewerHandler) GetPageHighlights(c *gin.Context) {
	doc, ok := h.loadPDF(c)
	if !ok {
		return
	}
	page, scale, rotation, ok := pageParams(c)
	if !ok {
		return
	}

	quote := c.Query("quote")
	if quote == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_QUOTE",
				"message": "Query parameter 'quote' is required",
			},
		})
		return
	}

	width, height, err := doc.PageSize(page)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAGE_OUT_OF_RANGE",
				"message": "Page number out of range",
			},
		})
		return
	}

	runs, err := doc.PageRuns(page)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PDF_PARSE_ERROR",
				"message": "Could not read page content",
			},
		})
		return
	}

	vp := pdfreader.NewViewport(width, height, scale, rotation)
	rects := pdfreader.ResolveHighlights(runs, quote, vp)
	if rects == nil {
		rects = []pdfreader.Rect{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"page":       page,
			"highlights": rects,
		},
	})
}
