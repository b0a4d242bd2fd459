package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// Directory talks to the external company/jobsite listing endpoints.
type Directory struct {
	baseURL string
	client  *http.Client
}

func NewDirectory(cfg config.DirectoryConfig) *Directory {
	return &Directory{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type directoryEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Companies fetches the full company list, unfiltered.
func (d *Directory) Companies(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := d.fetch(ctx, d.baseURL+"/companies-api.php", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Jobsites fetches jobsites for a single company.
func (d *Directory) Jobsites(ctx context.Context, company string) ([]models.Jobsite, error) {
	endpoint := fmt.Sprintf("%s/jobsites-api.php?company=%s", d.baseURL, url.QueryEscape(company))
	var jobsites []models.Jobsite
	if err := d.fetch(ctx, endpoint, &jobsites); err != nil {
		return nil, err
	}
	return jobsites, nil
}

func (d *Directory) fetch(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build directory request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "directory service unreachable")
	}
	defer resp.Body.Close()

	var env directoryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed directory response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "directory request failed"
		}
		return appErrors.Clone(appErrors.ErrUpstream, msg)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed directory payload")
	}
	return nil
}
