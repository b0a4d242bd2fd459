package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ttf-construction/ai-takeoff-api/internal/auth"
	"github.com/ttf-construction/ai-takeoff-api/internal/service"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
	"github.com/ttf-construction/ai-takeoff-api/pkg/response"
)

// UploadHandler accepts drawing uploads and runs them through the pipeline.
type UploadHandler struct {
	uploads   *service.UploadService
	cfg       config.OAuthConfig
	refresher *auth.Refresher
	logger    *zap.Logger
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploads *service.UploadService, cfg config.OAuthConfig, refresher *auth.Refresher, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, cfg: cfg, refresher: refresher, logger: logger}
}

// Upload godoc
// @Summary Upload a construction drawing and run analysis
// @Tags TakeOffs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF drawing"
// @Param company formData string false "Company the drawing is filed under"
// @Param jobsite formData string false "Jobsite the drawing is filed under"
// @Success 200 {object} response.Envelope
// @Router /takeoffs [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	store := auth.NewCookieStore(c.Writer, c.Request, h.cfg)
	if !auth.Authenticated(store) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open multipart file failed", zap.Error(err))
		response.Error(c, appErrors.ErrInternal)
		return
	}
	defer file.Close()

	// Per-request client: tokens live in this caller's cookies, and a 401
	// mid-chain must refresh and rewrite them.
	client := auth.NewTransport(http.DefaultTransport, store, h.refresher).Client()

	result, err := h.uploads.Upload(c.Request.Context(), client, service.UploadInput{
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Content:  file,
		Company:  c.PostForm("company"),
		Jobsite:  c.PostForm("jobsite"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
