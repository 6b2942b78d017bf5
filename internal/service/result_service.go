package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/srp-api/internal/models"
	"github.com/noah-isme/srp-api/internal/repository"
	appErrors "github.com/noah-isme/srp-api/pkg/errors"
	"github.com/noah-isme/srp-api/pkg/export"
)

type resultRepository interface {
	FindByID(ctx context.Context, id string) (*models.Result, error)
	ListAll(ctx context.Context) ([]models.Result, error)
	ListByMatric(ctx context.Context, matric string) ([]models.Result, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id string) (int64, error)
}

type resultStudentLookup interface {
	FindByMatric(ctx context.Context, matric string) (*models.Student, error)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// UploadResultRequest holds the payload for uploading a result.
type UploadResultRequest struct {
	Matric  string   `json:"matric" validate:"required"`
	Subject string   `json:"subject" validate:"required"`
	Score   *float64 `json:"score" validate:"required"`
}

// UpdateResultRequest holds the partial payload for updating a result.
type UpdateResultRequest struct {
	Subject *string  `json:"subject"`
	Score   *float64 `json:"score"`
}

// StudentResults pairs a student profile with their result rows.
type StudentResults struct {
	Student models.StudentProfile `json:"student"`
	Results []models.Result       `json:"results"`
}

// ResultService handles examination result use-cases.
type ResultService struct {
	results   resultRepository
	students  resultStudentLookup
	cache     resultCache
	cacheTTL  time.Duration
	audit     auditRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewResultService constructs the result service. cache may be nil when
// caching is disabled.
func NewResultService(results resultRepository, students resultStudentLookup, cache resultCache, cacheTTL time.Duration, audit auditRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		results:   results,
		students:  students,
		cache:     cache,
		cacheTTL:  cacheTTL,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Upload creates a result row with its derived grade.
func (s *ResultService) Upload(ctx context.Context, actor *models.JWTClaims, req UploadResultRequest, meta models.RequestMeta) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing required fields")
	}
	if !models.ValidScore(*req.Score) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid score, must be between 0 and 100")
	}

	if _, err := s.students.FindByMatric(ctx, req.Matric); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	result := &models.Result{
		Matric:  req.Matric,
		Subject: req.Subject,
		Score:   *req.Score,
		Grade:   models.GradeForScore(*req.Score),
	}
	if err := s.results.Create(ctx, result); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create result")
	}

	s.invalidateCaches(ctx)
	s.audit.Record(ctx, models.AuditUserAdmin, actor.Identifier, models.AuditActionResultUploaded,
		fmt.Sprintf("%s - %s: %g", result.Matric, result.Subject, result.Score), meta)

	return result, nil
}

// Update mutates subject and/or score of an existing result, recomputing
// the grade whenever the score changes.
func (s *ResultService) Update(ctx context.Context, actor *models.JWTClaims, id string, req UpdateResultRequest, meta models.RequestMeta) (*models.Result, error) {
	if req.Score != nil && !models.ValidScore(*req.Score) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid score, must be between 0 and 100")
	}

	result, err := s.results.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}

	if req.Subject != nil {
		result.Subject = *req.Subject
	}
	if req.Score != nil {
		result.Score = *req.Score
		result.Grade = models.GradeForScore(*req.Score)
	}

	if err := s.results.Update(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
	}

	s.invalidateCaches(ctx)
	s.audit.Record(ctx, models.AuditUserAdmin, actor.Identifier, models.AuditActionResultUpdated,
		fmt.Sprintf("%s for %s", result.ID, result.Matric), meta)

	return result, nil
}

// Delete removes a result row.
func (s *ResultService) Delete(ctx context.Context, actor *models.JWTClaims, id string, meta models.RequestMeta) error {
	result, err := s.results.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}

	affected, err := s.results.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "result not found")
	}

	s.invalidateCaches(ctx)
	s.audit.Record(ctx, models.AuditUserAdmin, actor.Identifier, models.AuditActionResultDeleted,
		fmt.Sprintf("%s for %s - %s", id, result.Matric, result.Subject), meta)

	return nil
}

// ListAll returns every result row, served from cache when possible.
func (s *ResultService) ListAll(ctx context.Context) ([]models.Result, error) {
	if s.cache != nil {
		var cached []models.Result
		start := time.Now()
		err := s.cache.Get(ctx, repository.CacheKeyAllResults, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("result cache read failed", zap.Error(err))
		}
	}

	queryStart := time.Now()
	results, err := s.results.ListAll(ctx)
	s.metrics.ObserveDBQuery("results_list_all", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, repository.CacheKeyAllResults, results, s.cacheTTL); err != nil {
			s.logger.Warn("result cache write failed", zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}

	return results, nil
}

// ListForStudent returns a student's profile and results. The caller must
// already have passed the ownership check for the matric.
func (s *ResultService) ListForStudent(ctx context.Context, actor *models.JWTClaims, matric string, meta models.RequestMeta) (*StudentResults, error) {
	if s.cache != nil {
		var cached StudentResults
		start := time.Now()
		err := s.cache.Get(ctx, repository.MatricCacheKey(matric), &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			s.audit.Record(ctx, string(actor.Role), actor.Identifier, models.AuditActionResultsViewed, matric, meta)
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("result cache read failed", zap.Error(err))
		}
	}

	student, err := s.students.FindByMatric(ctx, matric)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	queryStart := time.Now()
	results, err := s.results.ListByMatric(ctx, matric)
	s.metrics.ObserveDBQuery("results_list_by_matric", time.Since(queryStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	payload := &StudentResults{Student: student.Profile(), Results: results}

	if s.cache != nil {
		start := time.Now()
		if err := s.cache.Set(ctx, repository.MatricCacheKey(matric), payload, s.cacheTTL); err != nil {
			s.logger.Warn("result cache write failed", zap.Error(err))
		}
		s.metrics.ObserveCacheWrite(time.Since(start))
	}

	s.audit.Record(ctx, string(actor.Role), actor.Identifier, models.AuditActionResultsViewed, matric, meta)

	return payload, nil
}

// Export renders all results as CSV or PDF.
func (s *ResultService) Export(ctx context.Context, actor *models.JWTClaims, format string, meta models.RequestMeta) ([]byte, string, error) {
	results, err := s.ListAll(ctx)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Matric", "Subject", "Score", "Grade", "Uploaded"},
	}
	for _, r := range results {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Matric":   r.Matric,
			"Subject":  r.Subject,
			"Score":    fmt.Sprintf("%g", r.Score),
			"Grade":    r.Grade,
			"Uploaded": r.CreatedAt.Format(time.RFC3339),
		})
	}

	var payload []byte
	var contentType string
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case "pdf":
		payload, err = s.pdf.Render(dataset, "Examination Results")
		contentType = "application/pdf"
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.audit.Record(ctx, models.AuditUserAdmin, actor.Identifier, models.AuditActionResultsExported, format, meta)

	return payload, contentType, nil
}

func (s *ResultService) invalidateCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, repository.CacheKeyResultPattern); err != nil {
		s.logger.Warn("result cache invalidation failed", zap.Error(err))
	}
}
