package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/srp-api/internal/models"
)

func resultRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "matric", "subject", "score", "grade", "created_at", "updated_at"})
}

func TestResultRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, matric, subject, score, grade, created_at, updated_at FROM results WHERE id = $1 LIMIT 1")).
		WithArgs("r1").
		WillReturnRows(resultRows().AddRow("r1", "CSC/001", "Physics", 70.0, "A", time.Now(), time.Now()))

	result, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Physics", result.Subject)
	assert.Equal(t, "A", result.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, matric, subject, score, grade, created_at, updated_at FROM results WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestResultRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, matric, subject, score, grade, created_at, updated_at FROM results ORDER BY created_at DESC")).
		WillReturnRows(resultRows().
			AddRow("r1", "CSC/001", "Physics", 70.0, "A", time.Now(), time.Now()).
			AddRow("r2", "CSC/002", "Chemistry", 55.0, "C", time.Now(), time.Now()))

	results, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryListByMatric(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, matric, subject, score, grade, created_at, updated_at FROM results WHERE matric = $1 ORDER BY created_at DESC")).
		WithArgs("CSC/001").
		WillReturnRows(resultRows().AddRow("r1", "CSC/001", "Physics", 70.0, "A", time.Now(), time.Now()))

	results, err := repo.ListByMatric(context.Background(), "CSC/001")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO results").
		WithArgs(sqlmock.AnyArg(), "CSC/001", "Physics", 70.0, "A", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result := &models.Result{Matric: "CSC/001", Subject: "Physics", Score: 70, Grade: "A"}
	require.NoError(t, repo.Create(context.Background(), result))
	assert.NotEmpty(t, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("UPDATE results SET").
		WithArgs("Chemistry", 55.0, "C", sqlmock.AnyArg(), "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result := &models.Result{ID: "r1", Matric: "CSC/001", Subject: "Chemistry", Score: 55, Grade: "C"}
	require.NoError(t, repo.Update(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM results WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
