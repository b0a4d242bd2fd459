package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ttf-construction/ai-takeoff-api/internal/auth"
	"github.com/ttf-construction/ai-takeoff-api/internal/dto"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

func testOAuthConfig(tokenURL string) config.OAuthConfig {
	return config.OAuthConfig{
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		TokenURL:         tokenURL,
		AccessCookieTTL:  24 * time.Hour,
		RefreshCookieTTL: 720 * time.Hour,
	}
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestAuthHandlerCreateSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testOAuthConfig(""), nil)

	payload, _ := json.Marshal(dto.SessionRequest{AccessToken: "access-1", RefreshToken: "refresh-1"})
	c, w := newGinContext(http.MethodPost, "/auth/session", payload)

	handler.CreateSession(c)
	require.Equal(t, http.StatusOK, w.Code)

	access := responseCookie(t, w, auth.AccessCookie)
	require.NotNil(t, access)
	require.Equal(t, "access-1", access.Value)
	require.True(t, access.HttpOnly)

	refresh := responseCookie(t, w, auth.RefreshCookie)
	require.NotNil(t, refresh)
	require.Equal(t, "refresh-1", refresh.Value)
}

func TestAuthHandlerCreateSessionRequiresAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testOAuthConfig(""), nil)

	c, w := newGinContext(http.MethodPost, "/auth/session", []byte(`{"refresh_token":"only"}`))
	handler.CreateSession(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, w.Result().Cookies())
}

func TestAuthHandlerSessionState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testOAuthConfig(""), nil)

	c, w := newGinContext(http.MethodGet, "/auth/session", nil)
	c.Request.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "access-1"})
	handler.Session(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"authenticated":true`)

	c, w = newGinContext(http.MethodGet, "/auth/session", nil)
	handler.Session(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestAuthHandlerDeleteSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(testOAuthConfig(""), nil)

	c, w := newGinContext(http.MethodDelete, "/auth/session", nil)
	c.Request.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "access-1"})
	handler.DeleteSession(c)
	require.Equal(t, http.StatusNoContent, w.Code)

	access := responseCookie(t, w, auth.AccessCookie)
	require.NotNil(t, access)
	require.Less(t, access.MaxAge, 0)
}

func TestAuthHandlerRefresh(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-2","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cfg := testOAuthConfig(srv.URL)
	handler := NewAuthHandler(cfg, auth.NewRefresher(cfg, nil))

	c, w := newGinContext(http.MethodPost, "/auth/refresh", nil)
	c.Request.AddCookie(&http.Cookie{Name: auth.RefreshCookie, Value: "refresh-1"})
	handler.Refresh(c)
	require.Equal(t, http.StatusOK, w.Code)

	access := responseCookie(t, w, auth.AccessCookie)
	require.NotNil(t, access)
	require.Equal(t, "access-2", access.Value)
}

func TestAuthHandlerRefreshWithoutTokenFails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testOAuthConfig("http://127.0.0.1:0")
	handler := NewAuthHandler(cfg, auth.NewRefresher(cfg, nil))

	c, w := newGinContext(http.MethodPost, "/auth/refresh", nil)
	handler.Refresh(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
