package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/srp-api/internal/models"
)

func auditRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_type", "user_id", "action", "details", "ip_address", "user_agent", "created_at"})
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(sqlmock.AnyArg(), "admin", "root", models.AuditActionResultUploaded, "CSC/001 - Physics: 70", "127.0.0.1", "curl", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.AuditLog{
		UserType:  "admin",
		UserID:    "root",
		Action:    models.AuditActionResultUploaded,
		Details:   "CSC/001 - Physics: 70",
		IPAddress: "127.0.0.1",
		UserAgent: "curl",
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListUnfiltered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_type, user_id, action, details, ip_address, user_agent, created_at FROM audit_logs WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(auditRows().
			AddRow("a1", "admin", "root", models.AuditActionLoginSuccess, "", "127.0.0.1", "curl", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	entries, total, err := repo.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_type, user_id, action, details, ip_address, user_agent, created_at FROM audit_logs WHERE 1=1 AND user_type = $1 AND action = $2 ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("student", models.AuditActionResultsViewed).
		WillReturnRows(auditRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM audit_logs WHERE 1=1 AND user_type = $1 AND action = $2")).
		WithArgs("student", models.AuditActionResultsViewed).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	entries, total, err := repo.List(context.Background(), models.AuditFilter{
		UserType: "student",
		Action:   models.AuditActionResultsViewed,
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
