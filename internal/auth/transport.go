package auth

import (
	"context"
	"net/http"
)

// TokenRefresher is the single-shot refresh operation the transport invokes
// after a 401.
type TokenRefresher interface {
	Refresh(ctx context.Context, store Store) bool
}

// Transport is an http.RoundTripper that attaches a bearer token from the
// store and, on a 401, refreshes once and retries once. On refresh failure
// the original 401 response is returned unchanged. No further retries occur,
// so a permanently invalid refresh token cannot loop.
type Transport struct {
	Base      http.RoundTripper
	Store     Store
	Refresher TokenRefresher
}

// NewTransport wraps base (or http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, store Store, refresher TokenRefresher) *Transport {
	return &Transport{Base: base, Store: store, Refresher: refresher}
}

// Client returns an http.Client using this transport.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base().RoundTrip(t.authorize(req))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.Refresher == nil {
		return resp, nil
	}
	if !t.Refresher.Refresh(req.Context(), t.Store) {
		return resp, nil
	}

	retry, ok := t.replayable(req)
	if !ok {
		return resp, nil
	}
	resp.Body.Close()
	return t.base().RoundTrip(t.authorize(retry))
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// authorize clones the request and attaches the current bearer token.
// RoundTrippers must not mutate the caller's request.
func (t *Transport) authorize(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	if tok := t.Store.Token(); tok != "" {
		out.Header.Set("Authorization", "Bearer "+tok)
	}
	return out
}

// replayable returns a copy of req whose body can be re-sent. Requests with
// a consumed one-shot body cannot be retried.
func (t *Transport) replayable(req *http.Request) (*http.Request, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	out := req.Clone(req.Context())
	out.Body = body
	return out, true
}
