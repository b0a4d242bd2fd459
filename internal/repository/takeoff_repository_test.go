package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ttf-construction/ai-takeoff-api/internal/models"
	appErrors "github.com/ttf-construction/ai-takeoff-api/pkg/errors"
)

func newTakeoffRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func takeoffRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "file_name", "file_size", "company", "jobsite",
		"blue_x_shapes", "red_squares", "pink_shapes", "green_rectangles", "status",
		"created_at", "updated_at", "original_url", "step4_results_url", "step5_results_url",
		"step6_results_url", "step7_results_url", "step8_results_url", "extracted_text", "enhanced_text",
	})
}

func TestTakeoffRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newTakeoffRepoMock(t)
	defer cleanup()

	repo := NewTakeoffRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_results")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := &models.TakeOffRecord{
		ID:          "file-1",
		FileName:    "plan.pdf",
		FileSize:    2048,
		BlueXShapes: 3,
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	require.Equal(t, "completed", rec.Status)
	require.False(t, rec.CreatedAt.IsZero())

	rows := takeoffRows().AddRow(
		"file-1", "plan.pdf", 2048, "Acme", "Site A",
		3, 1, 0, 2, "completed",
		time.Now(), nil, "u0", "u4", "u5",
		"u6", "u7", "u8", "NOTES", "")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("file-1").
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), "file-1")
	require.NoError(t, err)
	require.Equal(t, "file-1", found.ID)
	require.Equal(t, 3, found.BlueXShapes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTakeoffRepositoryGetMissingIsNotFound(t *testing.T) {
	db, mock, cleanup := newTakeoffRepoMock(t)
	defer cleanup()

	repo := NewTakeoffRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("missing").
		WillReturnRows(takeoffRows())

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTakeoffRepositoryList(t *testing.T) {
	db, mock, cleanup := newTakeoffRepoMock(t)
	defer cleanup()

	repo := NewTakeoffRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM analysis_results")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	rows := takeoffRows().
		AddRow("b", "b.pdf", 1, "", "", 0, 0, 0, 0, "completed", time.Now(), nil, "", "", "", "", "", "", "", "").
		AddRow("a", "a.pdf", 1, "", "", 0, 0, 0, 0, "completed", time.Now().Add(-time.Hour), nil, "", "", "", "", "", "", "", "")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(2, 0).
		WillReturnRows(rows)

	records, total, err := repo.List(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, 7, total)
	require.Equal(t, "b", records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTakeoffRepositoryUpdateEnhancedText(t *testing.T) {
	db, mock, cleanup := newTakeoffRepoMock(t)
	defer cleanup()

	repo := NewTakeoffRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE analysis_results SET enhanced_text")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateEnhancedText(context.Background(), "file-1", "better"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE analysis_results SET enhanced_text")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateEnhancedText(context.Background(), "missing", "better")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
