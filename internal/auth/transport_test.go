package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	ok       bool
	newToken string
	calls    int
}

func (r *stubRefresher) Refresh(_ context.Context, store Store) bool {
	r.calls++
	if !r.ok {
		store.Clear()
		return false
	}
	store.Set(r.newToken, "")
	return true
}

func TestTransportAttachesBearer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := NewTransport(nil, NewMemoryStore("access-1", ""), nil).Client()
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer access-1", got)
}

func TestTransportRefreshesOnceOn401(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := r.Header.Get("Authorization")
		tokens = append(tokens, tok)
		if tok != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	store := NewMemoryStore("access-1", "refresh-1")
	refresher := &stubRefresher{ok: true, newToken: "access-2"}
	client := NewTransport(nil, store, refresher).Client()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Bearer access-1", "Bearer access-2"}, tokens)
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, "access-2", store.Token())
}

func TestTransportReturns401WhenRefreshFails(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewMemoryStore("access-1", "refresh-1")
	refresher := &stubRefresher{ok: false}
	client := NewTransport(nil, store, refresher).Client()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, refresher.calls)
	assert.Empty(t, store.Token())
}

func TestTransportDoesNotLoopOnRepeated401(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewMemoryStore("access-1", "refresh-1")
	refresher := &stubRefresher{ok: true, newToken: "access-2"}
	client := NewTransport(nil, store, refresher).Client()

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// One original request plus exactly one retry.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 2, requests)
	assert.Equal(t, 1, refresher.calls)
}

func TestTransportReplaysBodyOnRetry(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(payload))
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	store := NewMemoryStore("access-1", "refresh-1")
	refresher := &stubRefresher{ok: true, newToken: "access-2"}
	client := NewTransport(nil, store, refresher).Client()

	resp, err := client.Post(srv.URL, "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"payload", "payload"}, bodies)
}
