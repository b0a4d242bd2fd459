package auth

import (
	"net/http"
	"time"

	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

// Cookie names match the ones the dashboard frontend historically used.
const (
	AccessCookie  = "google_access_token"
	RefreshCookie = "google_refresh_token"
)

// CookieStore persists the token pair in HTTP cookies on a single
// request/response exchange. Reads come from the inbound request, writes go
// to the outbound response and to an in-memory snapshot so that a refresh
// performed mid-request is visible to the remainder of the request.
type CookieStore struct {
	snapshot MemoryStore
	w        http.ResponseWriter
	cfg      config.OAuthConfig
}

// NewCookieStore snapshots the token cookies from r and writes updates to w.
func NewCookieStore(w http.ResponseWriter, r *http.Request, cfg config.OAuthConfig) *CookieStore {
	s := &CookieStore{w: w, cfg: cfg}
	access := cookieValue(r, AccessCookie)
	refresh := cookieValue(r, RefreshCookie)
	s.snapshot.Set(access, refresh)
	return s
}

func (s *CookieStore) Token() string        { return s.snapshot.Token() }
func (s *CookieStore) RefreshToken() string { return s.snapshot.RefreshToken() }

// Set persists the pair. An empty access token clears both cookies.
func (s *CookieStore) Set(access, refresh string) {
	if access == "" {
		s.Clear()
		return
	}
	s.snapshot.Set(access, refresh)
	s.write(AccessCookie, access, s.cfg.AccessCookieTTL)
	if refresh != "" {
		s.write(RefreshCookie, refresh, s.cfg.RefreshCookieTTL)
	}
}

// Clear expires both cookies.
func (s *CookieStore) Clear() {
	s.snapshot.Clear()
	s.expire(AccessCookie)
	s.expire(RefreshCookie)
}

func (s *CookieStore) write(name, value string, ttl time.Duration) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		MaxAge:   int(ttl / time.Second),
		Secure:   s.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) expire(name string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.cfg.CookieDomain,
		MaxAge:   -1,
		Secure:   s.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
