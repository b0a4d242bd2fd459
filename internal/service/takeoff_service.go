package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
	"github.com/ttf-construction/ai-takeoff-api/pkg/export"
	"github.com/ttf-construction/ai-takeoff-api/pkg/storage"
)

// TakeoffStore abstracts the analysis-record backend. Both the remote PHP
// service client and the local Postgres repository satisfy it.
type TakeoffStore interface {
	List(ctx context.Context, limit, offset int) ([]models.TakeOffRecord, int, error)
	GetByID(ctx context.Context, id string) (*models.TakeOffRecord, error)
	Create(ctx context.Context, rec *models.TakeOffRecord) error
	UpdateEnhancedText(ctx context.Context, id, text string) error
}

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportResult describes a generated report and its signed download link.
type ExportResult struct {
	FileName    string    `json:"file_name"`
	Format      string    `json:"format"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Download is a resolved signed-token request.
type Download struct {
	Path     string
	FileName string
}

// TakeoffService serves the take-off history: listing, detail reshaping,
// enhanced-text updates, and report exports with signed download links.
type TakeoffService struct {
	store        TakeoffStore
	defaultLimit int

	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	files    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	validate *validator.Validate
	logger   *zap.Logger
}

// NewTakeoffService constructs the service. files and signer may be nil when
// exports are disabled.
func NewTakeoffService(store TakeoffStore, defaultLimit int, files *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *TakeoffService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &TakeoffService{
		store:        store,
		defaultLimit: defaultLimit,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		files:        files,
		signer:       signer,
		validate:     validator.New(),
		logger:       logger,
	}
}

// List returns the history page newest-first.
func (s *TakeoffService) List(ctx context.Context, limit, offset int) ([]models.TakeOffRecord, *models.Pagination, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	records, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	pagination := &models.Pagination{
		Limit:      limit,
		Offset:     offset,
		Count:      len(records),
		TotalCount: total,
		HasMore:    offset+len(records) < total,
	}
	return records, pagination, nil
}

// Get returns the nested detail view for one record.
func (s *TakeoffService) Get(ctx context.Context, id string) (*models.Detail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.DetailFromRecord(record), nil
}

// Save stores a finished analysis record. Used by the background persist
// queue.
func (s *TakeoffService) Save(ctx context.Context, rec *models.TakeOffRecord) error {
	if rec == nil {
		return appErrors.Clone(appErrors.ErrValidation, "record is required")
	}
	if err := s.validate.Struct(rec); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "record id and file name are required")
	}
	return s.store.Create(ctx, rec)
}

// UpdateEnhancedText persists enhanced text for a record.
func (s *TakeoffService) UpdateEnhancedText(ctx context.Context, id, text string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	if strings.TrimSpace(text) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "enhanced text is required")
	}
	return s.store.UpdateEnhancedText(ctx, id, text)
}

// Export renders a record as CSV or PDF, stores the artifact and returns a
// signed download link.
func (s *TakeoffService) Export(ctx context.Context, id, format string) (*ExportResult, error) {
	if s.files == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "exports are not configured")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	record, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dataset := datasetFromRecord(record)
	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Take-Off Report: %s", record.FileName))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render export")
	}

	fileName := fmt.Sprintf("%s-%d.%s", sanitizeBase(record.FileName), time.Now().Unix(), format)
	if _, err := s.files.Save(fileName, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store export")
	}

	token, expiresAt, err := s.signer.Generate(record.ID, fileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign download link")
	}

	return &ExportResult{
		FileName:    fileName,
		Format:      format,
		DownloadURL: "/downloads?token=" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveDownload validates a signed token and returns the artifact location.
func (s *TakeoffService) ResolveDownload(token string) (*Download, error) {
	if s.files == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "exports are not configured")
	}
	_, fileName, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download token")
	}
	return &Download{Path: s.files.Path(fileName), FileName: fileName}, nil
}

// CleanupExports removes artifacts older than the retention window.
func (s *TakeoffService) CleanupExports(ttl time.Duration) (int, error) {
	if s.files == nil {
		return 0, nil
	}
	removed, err := s.files.CleanupOlderThan(ttl)
	if err != nil {
		return 0, fmt.Errorf("cleanup exports: %w", err)
	}
	if len(removed) > 0 && s.logger != nil {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return len(removed), nil
}

func datasetFromRecord(r *models.TakeOffRecord) export.Dataset {
	headers := []string{"Field", "Value"}
	rows := []map[string]string{
		{"Field": "File Name", "Value": r.FileName},
		{"Field": "Company", "Value": r.Company},
		{"Field": "Jobsite", "Value": r.Jobsite},
		{"Field": "Status", "Value": r.Status},
		{"Field": "Blue X Shapes", "Value": strconv.Itoa(r.BlueXShapes)},
		{"Field": "Red Squares", "Value": strconv.Itoa(r.RedSquares)},
		{"Field": "Pink Shapes", "Value": strconv.Itoa(r.PinkShapes)},
		{"Field": "Green Rectangles", "Value": strconv.Itoa(r.GreenRectangles)},
		{"Field": "Total Detections", "Value": strconv.Itoa(r.TotalDetections())},
		{"Field": "Created At", "Value": r.CreatedAt.UTC().Format(time.RFC3339)},
	}

	var notes []string
	if text := strings.TrimSpace(r.EnhancedText); text != "" {
		notes = append(notes, "Enhanced Analysis:", text)
	} else if text := strings.TrimSpace(r.ExtractedText); text != "" {
		notes = append(notes, "Extracted Text:", text)
	}

	return export.Dataset{Headers: headers, Rows: rows, Notes: notes}
}

func sanitizeBase(name string) string {
	base := strings.TrimSuffix(name, ".pdf")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, base)
	if base == "" {
		base = "takeoff"
	}
	return base
}
