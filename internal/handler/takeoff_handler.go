package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ttf-construction/ai-takeoff-api/internal/dto"
	"github.com/ttf-construction/ai-takeoff-api/internal/service"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
	"github.com/ttf-construction/ai-takeoff-api/pkg/response"
)

// TakeoffHandler exposes the take-off history endpoints.
type TakeoffHandler struct {
	takeoffs *service.TakeoffService
}

// NewTakeoffHandler constructs handler.
func NewTakeoffHandler(takeoffs *service.TakeoffService) *TakeoffHandler {
	return &TakeoffHandler{takeoffs: takeoffs}
}

// List godoc
// @Summary List take-off history
// @Tags TakeOffs
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Param id query string false "Fetch a single record instead of a page"
// @Success 200 {object} response.Envelope
// @Router /takeoffs [get]
func (h *TakeoffHandler) List(c *gin.Context) {
	// id short-circuits to a single-record lookup, matching the history
	// viewer's deep-link behaviour.
	if id := c.Query("id"); id != "" {
		detail, err := h.takeoffs.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, detail, nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	records, pagination, err := h.takeoffs.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get one take-off with nested analysis results
// @Tags TakeOffs
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /takeoffs/{id} [get]
func (h *TakeoffHandler) Get(c *gin.Context) {
	detail, err := h.takeoffs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateEnhancedText godoc
// @Summary Store enhanced text for a take-off
// @Tags TakeOffs
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.EnhancedTextRequest true "Enhanced text"
// @Success 200 {object} response.Envelope
// @Router /takeoffs/{id}/enhanced-text [post]
func (h *TakeoffHandler) UpdateEnhancedText(c *gin.Context) {
	var req dto.EnhancedTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enhanced_text is required"))
		return
	}
	if err := h.takeoffs.UpdateEnhancedText(c.Request.Context(), c.Param("id"), req.EnhancedText); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": true}, nil)
}

// Export godoc
// @Summary Export a take-off report
// @Tags TakeOffs
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.ExportRequest false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Router /takeoffs/{id}/export [post]
func (h *TakeoffHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	_ = c.ShouldBindJSON(&req)
	result, err := h.takeoffs.Export(c.Request.Context(), c.Param("id"), req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download an exported report via signed token
// @Tags TakeOffs
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Router /downloads [get]
func (h *TakeoffHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.takeoffs.ResolveDownload(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(download.Path, download.FileName)
}
