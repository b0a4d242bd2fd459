package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// Analyzer calls the remote AI analysis server. The server downloads the
// (now public) Drive file, runs the detection pipeline synchronously and
// returns the combined result.
type Analyzer struct {
	baseURL string
	client  *http.Client
}

// NewAnalyzer builds a client for the configured base URL. The timeout is
// generous because the server processes the PDF inline.
func NewAnalyzer(cfg config.AnalyzerConfig) *Analyzer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Analyzer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Analyze requests processing of the uploaded Drive file. Success means the
// response carries a non-empty file_name; otherwise the server's error
// message (or a generic fallback) is surfaced as an upstream error.
func (a *Analyzer) Analyze(ctx context.Context, fileID string) (*models.AnalysisResponse, error) {
	url := fmt.Sprintf("%s/AI-Takeoff/%s", a.baseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "analysis server unreachable")
	}
	defer resp.Body.Close()

	var result models.AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed analysis response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, appErrors.Clone(appErrors.ErrUpstream, upstreamMessage(&result))
	}
	if result.FileName == "" {
		return nil, appErrors.Clone(appErrors.ErrUpstream, upstreamMessage(&result))
	}

	result.Normalize()
	if result.ID == "" {
		result.ID = fileID
	}
	return &result, nil
}

func upstreamMessage(r *models.AnalysisResponse) string {
	if r != nil && r.Error != "" {
		return r.Error
	}
	return "Processing failed"
}
