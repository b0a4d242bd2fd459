package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/pkg/config"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// TakeoffDB proxies the external PHP endpoints (read-all.php, read.php,
// create.php, update.php) that front the analysis_results table. Reads are
// JSON; writes are form-encoded, matching the PHP side. The primary key is
// caller-supplied and the service does not enforce uniqueness; that contract
// is preserved here.
type TakeoffDB struct {
	baseURL string
	client  *http.Client
}

// NewTakeoffDB builds a client for the configured service base URL.
func NewTakeoffDB(cfg config.TakeoffsConfig) *TakeoffDB {
	return &TakeoffDB{
		baseURL: strings.TrimRight(cfg.RemoteURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// phpEnvelope is the common {success, ...} response contract.
type phpEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Count   int             `json:"count,omitempty"`
	Total   flexInt         `json:"total,omitempty"`
}

// phpRecord mirrors a row as the PHP layer serialises it. PDO returns every
// column as a string, so numeric fields arrive quoted.
type phpRecord struct {
	ID              string  `json:"id"`
	FileName        string  `json:"file_name"`
	FileSize        flexInt `json:"file_size"`
	Company         string  `json:"company"`
	Jobsite         string  `json:"jobsite"`
	BlueXShapes     flexInt `json:"blue_x_shapes"`
	RedSquares      flexInt `json:"red_squares"`
	PinkShapes      flexInt `json:"pink_shapes"`
	GreenRectangles flexInt `json:"green_rectangles"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	OriginalURL     string  `json:"original_url"`
	Step4ResultsURL string  `json:"step4_results_url"`
	Step5ResultsURL string  `json:"step5_results_url"`
	Step6ResultsURL string  `json:"step6_results_url"`
	Step7ResultsURL string  `json:"step7_results_url"`
	Step8ResultsURL string  `json:"step8_results_url"`
	ExtractedText   string  `json:"extracted_text"`
	EnhancedText    string  `json:"enhanced_text"`
}

// List returns records newest-first.
func (c *TakeoffDB) List(ctx context.Context, limit, offset int) ([]models.TakeOffRecord, int, error) {
	endpoint := fmt.Sprintf("%s/read-all.php?limit=%d&offset=%d", c.baseURL, limit, offset)
	env, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, 0, err
	}

	var rows []phpRecord
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed take-off list")
		}
	}
	records := make([]models.TakeOffRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	total := int(env.Total)
	if total == 0 {
		total = env.Count
	}
	return records, total, nil
}

// GetByID fetches a single record.
func (c *TakeoffDB) GetByID(ctx context.Context, id string) (*models.TakeOffRecord, error) {
	endpoint := fmt.Sprintf("%s/read.php?id=%s", c.baseURL, url.QueryEscape(id))
	env, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, appErrors.ErrNotFound
	}
	var row phpRecord
	if err := json.Unmarshal(env.Data, &row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed take-off record")
	}
	rec := row.toRecord()
	return &rec, nil
}

// Create inserts a new record, id included.
func (c *TakeoffDB) Create(ctx context.Context, rec *models.TakeOffRecord) error {
	form := url.Values{}
	form.Set("id", rec.ID)
	form.Set("file_name", rec.FileName)
	form.Set("file_size", strconv.FormatInt(rec.FileSize, 10))
	form.Set("blue_x_shapes", strconv.Itoa(rec.BlueXShapes))
	form.Set("red_squares", strconv.Itoa(rec.RedSquares))
	form.Set("pink_shapes", strconv.Itoa(rec.PinkShapes))
	form.Set("green_rectangles", strconv.Itoa(rec.GreenRectangles))
	form.Set("original_url", rec.OriginalURL)
	form.Set("step4_results_url", rec.Step4ResultsURL)
	form.Set("step5_results_url", rec.Step5ResultsURL)
	form.Set("step6_results_url", rec.Step6ResultsURL)
	form.Set("step7_results_url", rec.Step7ResultsURL)
	form.Set("step8_results_url", rec.Step8ResultsURL)
	form.Set("extracted_text", rec.ExtractedText)
	form.Set("enhanced_text", rec.EnhancedText)
	form.Set("status", rec.Status)
	form.Set("company", rec.Company)
	form.Set("jobsite", rec.Jobsite)
	return c.post(ctx, c.baseURL+"/create.php", form)
}

// UpdateEnhancedText persists enhanced text for an existing record.
func (c *TakeoffDB) UpdateEnhancedText(ctx context.Context, id, text string) error {
	form := url.Values{}
	form.Set("id", id)
	form.Set("enhanced_text", text)
	return c.post(ctx, c.baseURL+"/update.php", form)
}

func (c *TakeoffDB) get(ctx context.Context, endpoint string) (*phpEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build takeoff db request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "take-off database unreachable")
	}
	defer resp.Body.Close()

	var env phpEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed take-off response")
	}
	if resp.StatusCode == http.StatusNotFound || (!env.Success && resp.StatusCode < 500 && strings.Contains(strings.ToLower(env.Message), "not found")) {
		return nil, appErrors.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return nil, appErrors.Clone(appErrors.ErrUpstream, envMessage(&env))
	}
	return &env, nil
}

func (c *TakeoffDB) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build takeoff db request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "take-off database unreachable")
	}
	defer resp.Body.Close()

	var env phpEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed take-off response")
	}
	if resp.StatusCode == http.StatusNotFound {
		return appErrors.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return appErrors.Clone(appErrors.ErrUpstream, envMessage(&env))
	}
	return nil
}

func envMessage(env *phpEnvelope) string {
	if env != nil && env.Message != "" {
		return env.Message
	}
	return "take-off database request failed"
}

func (r *phpRecord) toRecord() models.TakeOffRecord {
	return models.TakeOffRecord{
		ID:              r.ID,
		FileName:        r.FileName,
		FileSize:        int64(r.FileSize),
		Company:         r.Company,
		Jobsite:         r.Jobsite,
		BlueXShapes:     int(r.BlueXShapes),
		RedSquares:      int(r.RedSquares),
		PinkShapes:      int(r.PinkShapes),
		GreenRectangles: int(r.GreenRectangles),
		Status:          r.Status,
		CreatedAt:       parseDBTime(r.CreatedAt),
		OriginalURL:     r.OriginalURL,
		Step4ResultsURL: r.Step4ResultsURL,
		Step5ResultsURL: r.Step5ResultsURL,
		Step6ResultsURL: r.Step6ResultsURL,
		Step7ResultsURL: r.Step7ResultsURL,
		Step8ResultsURL: r.Step8ResultsURL,
		ExtractedText:   r.ExtractedText,
		EnhancedText:    r.EnhancedText,
	}
}

// flexInt decodes JSON numbers that may arrive quoted, as PDO serialises
// integer columns.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse numeric field %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

func parseDBTime(raw string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
