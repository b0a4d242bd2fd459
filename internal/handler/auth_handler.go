package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ttf-construction/ai-takeoff-api/internal/auth"
	"github.com/ttf-construction/ai-takeoff-api/internal/dto"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
	"github.com/ttf-construction/ai-takeoff-api/pkg/response"
)

// AuthHandler manages the Google token session cookies.
type AuthHandler struct {
	cfg       config.OAuthConfig
	refresher *auth.Refresher
}

// NewAuthHandler constructs handler.
func NewAuthHandler(cfg config.OAuthConfig, refresher *auth.Refresher) *AuthHandler {
	return &AuthHandler{cfg: cfg, refresher: refresher}
}

func (h *AuthHandler) cookieStore(c *gin.Context) *auth.CookieStore {
	return auth.NewCookieStore(c.Writer, c.Request, h.cfg)
}

// CreateSession godoc
// @Summary Store Google OAuth tokens as session cookies
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.SessionRequest true "Tokens"
// @Success 200 {object} response.Envelope
// @Router /auth/session [post]
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "access_token is required"))
		return
	}
	store := h.cookieStore(c)
	store.Set(req.AccessToken, req.RefreshToken)
	response.JSON(c, http.StatusOK, dto.SessionResponse{Authenticated: true}, nil)
}

// Session godoc
// @Summary Report current session state
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	store := h.cookieStore(c)
	response.JSON(c, http.StatusOK, dto.SessionResponse{Authenticated: auth.Authenticated(store)}, nil)
}

// DeleteSession godoc
// @Summary Clear session cookies
// @Tags Auth
// @Produce json
// @Success 204
// @Router /auth/session [delete]
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	store := h.cookieStore(c)
	store.Clear()
	response.NoContent(c)
}

// Refresh godoc
// @Summary Exchange the refresh token for a new access token
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	store := h.cookieStore(c)
	if !h.refresher.Refresh(c.Request.Context(), store) {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session expired, please log in again"))
		return
	}
	response.JSON(c, http.StatusOK, dto.SessionResponse{Authenticated: true}, nil)
}
