// Package auth holds the Google OAuth session state: a token pair persisted
// in cookies, a refresh exchange against the OAuth token endpoint, and an
// http.RoundTripper that retries exactly once after a 401.
package auth

import "sync"

// TokenPair is the session state. An empty access token means the session is
// unauthenticated regardless of the refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Store exposes the narrow token interface shared by the HTTP transport and
// the session endpoints.
type Store interface {
	// Token returns the current access token, or "" when logged out.
	Token() string
	// RefreshToken returns the stored refresh token, or "".
	RefreshToken() string
	// Set persists a new pair. An empty access token clears both.
	Set(access, refresh string)
	// Clear drops both tokens.
	Clear()
}

// Authenticated reports whether the store holds an access token.
func Authenticated(s Store) bool {
	return s != nil && s.Token() != ""
}

// MemoryStore keeps the pair in memory. It backs tests and per-request
// snapshots taken from cookies.
type MemoryStore struct {
	mu   sync.Mutex
	pair TokenPair
}

// NewMemoryStore seeds a store with the given pair.
func NewMemoryStore(access, refresh string) *MemoryStore {
	return &MemoryStore{pair: TokenPair{AccessToken: access, RefreshToken: refresh}}
}

func (s *MemoryStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.AccessToken
}

func (s *MemoryStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.RefreshToken
}

func (s *MemoryStore) Set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if access == "" {
		s.pair = TokenPair{}
		return
	}
	s.pair.AccessToken = access
	if refresh != "" {
		s.pair.RefreshToken = refresh
	}
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
}
