package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/srp-api/internal/models"
	"github.com/noah-isme/srp-api/internal/repository"
	appErrors "github.com/noah-isme/srp-api/pkg/errors"
)

type studentRepository interface {
	FindByMatric(ctx context.Context, matric string) (*models.Student, error)
	ExistsByMatricOrEmail(ctx context.Context, matric, email string) (bool, error)
	List(ctx context.Context, page, pageSize int) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, matric string) (int64, error)
}

// RegisterStudentRequest holds the payload for registering students.
type RegisterStudentRequest struct {
	Name     string `json:"name" validate:"required"`
	Matric   string `json:"matric" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// StudentService handles student registration and roster use-cases.
type StudentService struct {
	repo      studentRepository
	cache     resultCache
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service. cache may be nil when
// caching is disabled.
func NewStudentService(repo studentRepository, cache resultCache, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, cache: cache, audit: audit, validator: validate, logger: logger}
}

// Register creates a new student on behalf of an administrator.
func (s *StudentService) Register(ctx context.Context, actor *models.JWTClaims, req RegisterStudentRequest, meta models.RequestMeta) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing required fields")
	}

	exists, err := s.repo.ExistsByMatricOrEmail(ctx, req.Matric, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "matric number or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		Name:         req.Name,
		Matric:       req.Matric,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "matric number or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.audit.Record(ctx, models.AuditUserAdmin, actor.Identifier, models.AuditActionStudentRegistered, student.Matric, meta)

	return student, nil
}

// List returns the student roster with pagination metadata.
func (s *StudentService) List(ctx context.Context, page, pageSize int) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return students, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns one student by matric number.
func (s *StudentService) Get(ctx context.Context, matric string) (*models.Student, error) {
	student, err := s.repo.FindByMatric(ctx, matric)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Delete removes a student; their results cascade at the store.
func (s *StudentService) Delete(ctx context.Context, actor *models.JWTClaims, matric string, meta models.RequestMeta) error {
	affected, err := s.repo.Delete(ctx, matric)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	// The cascade removes the student's result rows, so every result
	// cache entry is stale from this point on.
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, repository.CacheKeyResultPattern); err != nil {
			s.logger.Warn("result cache invalidation failed", zap.Error(err))
		}
	}

	s.audit.Record(ctx, models.AuditUserAdmin, actor.Identifier, models.AuditActionStudentDeleted, matric, meta)

	return nil
}
