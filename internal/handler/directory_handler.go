package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ttf-construction/ai-takeoff-api/internal/service"
	"github.com/ttf-construction/ai-takeoff-api/pkg/response"
)

// DirectoryHandler serves the company and jobsite pickers.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Companies godoc
// @Summary List companies
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies [get]
func (h *DirectoryHandler) Companies(c *gin.Context) {
	companies, err := h.directory.Companies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, companies, nil)
}

// Jobsites godoc
// @Summary List jobsites for a company
// @Tags Directory
// @Produce json
// @Param company query string true "Company name"
// @Success 200 {object} response.Envelope
// @Router /jobsites [get]
func (h *DirectoryHandler) Jobsites(c *gin.Context) {
	jobsites, err := h.directory.Jobsites(c.Request.Context(), c.Query("company"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobsites, nil)
}
