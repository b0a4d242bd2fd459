package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ttf-construction/ai-takeoff-api/internal/auth"
	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/internal/service"
)

type driveMock struct{}

func (d *driveMock) EnsureFolder(ctx context.Context) (string, error) { return "folder-1", nil }

func (d *driveMock) Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (string, error) {
	return "file-1", nil
}

func (d *driveMock) MakePublic(ctx context.Context, fileID string) error { return nil }

type analyzerMock struct{}

func (a *analyzerMock) Analyze(ctx context.Context, fileID string) (*models.AnalysisResponse, error) {
	return &models.AnalysisResponse{
		ID:       fileID,
		FileName: "plan.pdf",
		Status:   "completed",
		Results: &models.AnalysisDetails{
			StepResults: models.StepResults{Step5BlueXShapes: 3},
		},
	}, nil
}

func newUploadContext(t *testing.T, fileName, contentType string, authed bool) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, mw.WriteField("company", "TTF Construction"))
	require.NoError(t, mw.WriteField("jobsite", "Yard 1"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/takeoffs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if authed {
		req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "access-1"})
	}
	c.Request = req
	return c, w
}

func newUploadHandler() *UploadHandler {
	uploads := service.NewUploadService(
		func(ctx context.Context, hc *http.Client) (service.DriveUploader, error) { return &driveMock{}, nil },
		&analyzerMock{},
		nil, nil, zap.NewNop(),
	)
	cfg := testOAuthConfig("")
	return NewUploadHandler(uploads, cfg, auth.NewRefresher(cfg, nil), zap.NewNop())
}

func TestUploadHandlerUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadHandler()

	c, w := newUploadContext(t, "plan.pdf", "application/pdf", true)
	handler.Upload(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"step5_blue_X_shapes":3`)
	require.Contains(t, w.Body.String(), `"company":"TTF Construction"`)
}

func TestUploadHandlerRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadHandler()

	c, w := newUploadContext(t, "plan.pdf", "application/pdf", false)
	handler.Upload(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadHandlerRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUploadHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/takeoffs", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=none")
	req.AddCookie(&http.Cookie{Name: auth.AccessCookie, Value: "access-1"})
	c.Request = req

	handler.Upload(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
