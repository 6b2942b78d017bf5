package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/srp-api/internal/models"
)

// ResultRepository manages persistence for examination results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// FindByID returns a result by identifier.
func (r *ResultRepository) FindByID(ctx context.Context, id string) (*models.Result, error) {
	const query = `SELECT id, matric, subject, score, grade, created_at, updated_at FROM results WHERE id = $1 LIMIT 1`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find result by id: %w", err)
	}
	return &result, nil
}

// ListAll returns every result row, newest upload first.
func (r *ResultRepository) ListAll(ctx context.Context) ([]models.Result, error) {
	const query = `SELECT id, matric, subject, score, grade, created_at, updated_at FROM results ORDER BY created_at DESC`
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// ListByMatric returns all results belonging to one student.
func (r *ResultRepository) ListByMatric(ctx context.Context, matric string) ([]models.Result, error) {
	const query = `SELECT id, matric, subject, score, grade, created_at, updated_at FROM results WHERE matric = $1 ORDER BY created_at DESC`
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, matric); err != nil {
		return nil, fmt.Errorf("list results by matric: %w", err)
	}
	return results, nil
}

// Create inserts a new result row.
func (r *ResultRepository) Create(ctx context.Context, result *models.Result) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now

	const query = `INSERT INTO results (id, matric, subject, score, grade, created_at, updated_at) VALUES (:id, :matric, :subject, :score, :grade, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// Update mutates subject, score and grade of an existing result.
func (r *ResultRepository) Update(ctx context.Context, result *models.Result) error {
	result.UpdatedAt = time.Now().UTC()
	const query = `UPDATE results SET subject = :subject, score = :score, grade = :grade, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, result); err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return nil
}

// Delete removes a result row by identifier.
func (r *ResultRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM results WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete result rows affected: %w", err)
	}
	return affected, nil
}
