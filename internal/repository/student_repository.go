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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByMatric returns a student by matric number.
func (r *StudentRepository) FindByMatric(ctx context.Context, matric string) (*models.Student, error) {
	const query = `SELECT id, name, matric, email, password_hash, created_at, updated_at FROM students WHERE matric = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, matric); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by matric: %w", err)
	}
	return &student, nil
}

// ExistsByMatricOrEmail reports whether either unique key is taken.
func (r *StudentRepository) ExistsByMatricOrEmail(ctx context.Context, matric, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM students WHERE matric = $1 OR email = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, matric, email); err != nil {
		return false, fmt.Errorf("check student uniqueness: %w", err)
	}
	return exists, nil
}

// List returns students ordered by registration time, newest first.
func (r *StudentRepository) List(ctx context.Context, page, pageSize int) ([]models.Student, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT id, name, matric, email, password_hash, created_at, updated_at FROM students ORDER BY created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// Create inserts a new student row.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, name, matric, email, password_hash, created_at, updated_at) VALUES (:id, :name, :matric, :email, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Delete removes a student by matric. Result rows cascade at the store.
func (r *StudentRepository) Delete(ctx context.Context, matric string) (int64, error) {
	const query = `DELETE FROM students WHERE matric = $1`
	res, err := r.db.ExecContext(ctx, query, matric)
	if err != nil {
		return 0, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete student rows affected: %w", err)
	}
	return affected, nil
}
