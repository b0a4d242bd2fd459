package auth

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

// Refresher exchanges a stored refresh token for a fresh access token at the
// Google OAuth token endpoint.
type Refresher struct {
	oauth  oauth2.Config
	client *http.Client
	logger *zap.Logger
}

// NewRefresher builds a refresher from OAuth client credentials. The token
// URL is taken from cfg so tests can point it at a local server.
func NewRefresher(cfg config.OAuthConfig, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL},
		},
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Refresh exchanges the store's refresh token for a new access token and
// persists it. Any failure (missing refresh token, non-2xx, network error)
// clears both tokens and returns false.
func (r *Refresher) Refresh(ctx context.Context, store Store) bool {
	refresh := store.RefreshToken()
	if refresh == "" {
		store.Clear()
		return false
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	src := r.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh})
	tok, err := src.Token()
	if err != nil {
		r.logger.Warn("token refresh failed", zap.Error(err))
		store.Clear()
		return false
	}

	// Google keeps the refresh token unless it rotates one in.
	next := tok.RefreshToken
	if next == "" {
		next = refresh
	}
	store.Set(tok.AccessToken, next)
	return true
}
