package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
)

func newTestDrive(t *testing.T, handler http.Handler) (*Drive, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	d, err := NewDrive(context.Background(), srv.Client(), config.DriveConfig{
		Endpoint:   srv.URL + "/",
		FolderName: "AI-TakeOff",
	})
	require.NoError(t, err)
	return d, srv
}

func TestEnsureFolderReusesExisting(t *testing.T) {
	var creates int
	d, srv := newTestDrive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files"):
			q := r.URL.Query().Get("q")
			assert.Contains(t, q, "name='AI-TakeOff'")
			assert.Contains(t, q, "application/vnd.google-apps.folder")
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"files": [{"id": "folder-1", "name": "AI-TakeOff"}]}`)
		case r.Method == http.MethodPost:
			creates++
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id": "folder-new"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	id, err := d.EnsureFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)
	assert.Zero(t, creates)
}

func TestEnsureFolderCreatesWhenMissing(t *testing.T) {
	var creates int
	d, srv := newTestDrive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"files": []}`)
		case http.MethodPost:
			creates++
			var meta map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&meta)
			assert.Equal(t, "AI-TakeOff", meta["name"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id": "folder-new"}`)
		}
	}))
	defer srv.Close()

	id, err := d.EnsureFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "folder-new", id)
	assert.Equal(t, 1, creates)
}

func TestUploadReturnsFileID(t *testing.T) {
	d, srv := newTestDrive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		payload, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(payload), "%PDF-1.4")
		assert.Contains(t, string(payload), `"plan.pdf"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "file-1", "name": "plan.pdf"}`)
	}))
	defer srv.Close()

	id, err := d.Upload(context.Background(), "folder-1", "plan.pdf", "application/pdf", strings.NewReader("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, "file-1", id)
}

func TestMakePublicCreatesAnyoneReader(t *testing.T) {
	d, srv := newTestDrive(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "file-1/permissions")
		var perm map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&perm)
		assert.Equal(t, "reader", perm["role"])
		assert.Equal(t, "anyone", perm["type"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id": "perm-1"}`)
	}))
	defer srv.Close()

	require.NoError(t, d.MakePublic(context.Background(), "file-1"))
}
