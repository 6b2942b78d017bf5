package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/srp-api/internal/models"
)

type mockAuditRepo struct {
	entries   []*models.AuditLog
	createErr error
	listErr   error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out := make([]models.AuditLog, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func TestAuditServiceRecord(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	svc.Record(context.Background(), models.AuditUserAdmin, "root", models.AuditActionLoginSuccess, "", models.RequestMeta{IP: "10.0.0.1", UserAgent: "curl"})

	require.Len(t, repo.entries, 1)
	assert.Equal(t, "root", repo.entries[0].UserID)
	assert.Equal(t, "10.0.0.1", repo.entries[0].IPAddress)
	assert.Equal(t, "curl", repo.entries[0].UserAgent)
}

func TestAuditServiceRecordSwallowsWriteFailure(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	svc := NewAuditService(repo, zap.NewNop())

	// Must not panic or surface the error to the caller.
	svc.Record(context.Background(), models.AuditUserAdmin, "root", models.AuditActionLoginSuccess, "", models.RequestMeta{})
	assert.Empty(t, repo.entries)
}

func TestAuditServiceListDefaultsPagination(t *testing.T) {
	repo := &mockAuditRepo{entries: []*models.AuditLog{{ID: "a1", Action: models.AuditActionLoginSuccess}}}
	svc := NewAuditService(repo, zap.NewNop())

	entries, pagination, err := svc.List(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
