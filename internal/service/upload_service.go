package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	"github.com/ttf-construction/ai-takeoff-api/internal/workflow"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
	"github.com/ttf-construction/ai-takeoff-api/pkg/jobs"
)

// DriveUploader is the Drive surface the upload pipeline needs.
type DriveUploader interface {
	EnsureFolder(ctx context.Context) (string, error)
	Upload(ctx context.Context, folderID, name, mimeType string, content io.Reader) (string, error)
	MakePublic(ctx context.Context, fileID string) error
}

// AnalyzerClient triggers analysis of an uploaded drawing.
type AnalyzerClient interface {
	Analyze(ctx context.Context, fileID string) (*models.AnalysisResponse, error)
}

// DriveFactory builds a Drive client bound to a per-request authenticated
// HTTP client. Tokens live in the caller's cookies, so the client cannot be a
// process-wide singleton.
type DriveFactory func(ctx context.Context, hc *http.Client) (DriveUploader, error)

// PersistEnqueuer pushes background persistence jobs.
type PersistEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// PersistJobType names the background job that stores a finished analysis.
const PersistJobType = "persist_takeoff"

// UploadInput carries one multipart upload through the pipeline.
type UploadInput struct {
	FileName string
	MimeType string
	Size     int64
	Content  io.Reader
	Company  string
	Jobsite  string
}

// UploadService runs the drawing pipeline: validate, upload to Drive, make
// the file link-readable, trigger analysis, then hand the flattened record to
// the background persist queue. The HTTP response does not wait on
// persistence.
type UploadService struct {
	newDrive DriveFactory
	analyzer AnalyzerClient
	queue    PersistEnqueuer
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewUploadService constructs the pipeline service. queue may be nil, in
// which case finished analyses are returned but not stored.
func NewUploadService(newDrive DriveFactory, analyzer AnalyzerClient, queue PersistEnqueuer, metrics *MetricsService, logger *zap.Logger) *UploadService {
	return &UploadService{newDrive: newDrive, analyzer: analyzer, queue: queue, metrics: metrics, logger: logger}
}

// Upload runs the full pipeline for one drawing. hc must already attach the
// caller's bearer token and handle the refresh-and-retry dance.
func (s *UploadService) Upload(ctx context.Context, hc *http.Client, in UploadInput) (*models.AnalysisResponse, error) {
	if err := workflow.ValidateFile(in.Size, in.MimeType); err != nil {
		return nil, err
	}
	if err := validateSelection(in.Company, in.Jobsite); err != nil {
		return nil, err
	}

	drive, err := s.newDrive(ctx, hc)
	if err != nil {
		s.logger.Error("drive client init failed", zap.Error(err))
		s.metrics.RecordUpload(false)
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}

	folderID, err := drive.EnsureFolder(ctx)
	if err != nil {
		s.logger.Error("ensure folder failed", zap.Error(err))
		s.metrics.RecordUpload(false)
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}

	fileID, err := drive.Upload(ctx, folderID, in.FileName, in.MimeType, in.Content)
	if err != nil {
		s.logger.Error("drive upload failed", zap.String("file_name", in.FileName), zap.Error(err))
		s.metrics.RecordUpload(false)
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}

	// The analysis server fetches the file by link, so public read must be in
	// place before analysis starts.
	if err := drive.MakePublic(ctx, fileID); err != nil {
		s.logger.Error("make public failed", zap.String("file_id", fileID), zap.Error(err))
		s.metrics.RecordUpload(false)
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}

	analysisStart := time.Now()
	result, err := s.analyzer.Analyze(ctx, fileID)
	s.metrics.ObserveAnalysis(time.Since(analysisStart))
	if err != nil {
		s.logger.Error("analysis failed", zap.String("file_id", fileID), zap.Error(err))
		s.metrics.RecordUpload(false)
		return nil, err
	}

	result.Company = in.Company
	result.Jobsite = in.Jobsite
	s.metrics.RecordUpload(true)

	s.enqueuePersist(result, in.Size)

	return result, nil
}

// validateSelection runs the company/jobsite pair through the picker state
// machine. Uploads without a filing selection are allowed; a jobsite without
// a company is not.
func validateSelection(company, jobsite string) error {
	if company == "" && jobsite == "" {
		return nil
	}
	sel := workflow.NewSelection()
	if company != "" {
		if err := sel.SelectCompany(company); err != nil {
			return err
		}
	}
	if jobsite != "" {
		if err := sel.SelectJobsite(jobsite); err != nil {
			return err
		}
	}
	if company != "" && jobsite != "" {
		return sel.Confirm()
	}
	return nil
}

func (s *UploadService) enqueuePersist(result *models.AnalysisResponse, fileSize int64) {
	if s.queue == nil {
		return
	}
	record := models.RecordFromAnalysis(result, fileSize, time.Now().UTC())
	job := jobs.Job{ID: uuid.NewString(), Type: PersistJobType, Payload: record}
	if err := s.queue.Enqueue(job); err != nil {
		// Storage is best-effort: the analysis already succeeded and the
		// caller gets their result either way.
		s.logger.Warn("enqueue persist failed", zap.String("record_id", record.ID), zap.Error(err))
	}
}
