package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ttf-construction/ai-takeoff-api/internal/dto"
	"github.com/ttf-construction/ai-takeoff-api/internal/service"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
	"github.com/ttf-construction/ai-takeoff-api/pkg/response"
)

// RewriteHandler exposes the text enhancement endpoint.
type RewriteHandler struct {
	rewrites *service.RewriteService
}

// NewRewriteHandler constructs handler.
func NewRewriteHandler(rewrites *service.RewriteService) *RewriteHandler {
	return &RewriteHandler{rewrites: rewrites}
}

// Rewrite godoc
// @Summary Rewrite extracted drawing text into an engineering report
// @Tags Rewrite
// @Accept json
// @Produce json
// @Param payload body dto.RewriteRequest true "Extracted text"
// @Success 200 {object} response.Envelope
// @Router /rewrite-text [post]
func (h *RewriteHandler) Rewrite(c *gin.Context) {
	var req dto.RewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "No text provided"))
		return
	}
	result, err := h.rewrites.Rewrite(c.Request.Context(), req.Text, req.FileName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
