package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

// TakeoffRepository persists analysis_results rows in the local Postgres
// mirror. The id column is caller-supplied (the Drive file id), so Create
// performs a plain insert without generating identifiers.
type TakeoffRepository struct {
	db *sqlx.DB
}

// NewTakeoffRepository constructs the repository.
func NewTakeoffRepository(db *sqlx.DB) *TakeoffRepository {
	return &TakeoffRepository{db: db}
}

const takeoffColumns = `id, file_name, file_size, company, jobsite,
	blue_x_shapes, red_squares, pink_shapes, green_rectangles, status,
	created_at, updated_at, original_url, step4_results_url, step5_results_url,
	step6_results_url, step7_results_url, step8_results_url, extracted_text, enhanced_text`

// Create inserts a new analysis row.
func (r *TakeoffRepository) Create(ctx context.Context, rec *models.TakeOffRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = "completed"
	}
	const query = `INSERT INTO analysis_results
	(id, file_name, file_size, company, jobsite, blue_x_shapes, red_squares, pink_shapes, green_rectangles,
	 status, created_at, original_url, step4_results_url, step5_results_url, step6_results_url,
	 step7_results_url, step8_results_url, extracted_text, enhanced_text)
	VALUES (:id, :file_name, :file_size, :company, :jobsite, :blue_x_shapes, :red_squares, :pink_shapes, :green_rectangles,
	 :status, :created_at, :original_url, :step4_results_url, :step5_results_url, :step6_results_url,
	 :step7_results_url, :step8_results_url, :extracted_text, :enhanced_text)`
	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("create analysis result: %w", err)
	}
	return nil
}

// GetByID fetches a single row.
func (r *TakeoffRepository) GetByID(ctx context.Context, id string) (*models.TakeOffRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM analysis_results WHERE id = $1`, takeoffColumns)
	var rec models.TakeOffRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get analysis result %s: %w", id, err)
	}
	return &rec, nil
}

// List returns rows newest-first with the given page window, plus the total
// row count for pagination.
func (r *TakeoffRepository) List(ctx context.Context, limit, offset int) ([]models.TakeOffRecord, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM analysis_results`); err != nil {
		return nil, 0, fmt.Errorf("count analysis results: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM analysis_results ORDER BY created_at DESC LIMIT $1 OFFSET $2`, takeoffColumns)
	var records []models.TakeOffRecord
	if err := r.db.SelectContext(ctx, &records, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list analysis results: %w", err)
	}
	return records, total, nil
}

// UpdateEnhancedText replaces the enhanced text of an existing row.
func (r *TakeoffRepository) UpdateEnhancedText(ctx context.Context, id, text string) error {
	const query = `UPDATE analysis_results SET enhanced_text = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, text, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update enhanced text %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check enhanced text update rows: %w", err)
	}
	if rows == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
