package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/srp-api/internal/middleware"
	"github.com/noah-isme/srp-api/internal/models"
	"github.com/noah-isme/srp-api/internal/service"
)

type stubResultRepo struct {
	byID    map[string]*models.Result
	all     []models.Result
	deleted int64
}

func (s *stubResultRepo) FindByID(ctx context.Context, id string) (*models.Result, error) {
	if r, ok := s.byID[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubResultRepo) ListAll(ctx context.Context) ([]models.Result, error) {
	return s.all, nil
}

func (s *stubResultRepo) ListByMatric(ctx context.Context, matric string) ([]models.Result, error) {
	var out []models.Result
	for _, r := range s.all {
		if r.Matric == matric {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResultRepo) Create(ctx context.Context, result *models.Result) error {
	s.all = append(s.all, *result)
	return nil
}

func (s *stubResultRepo) Update(ctx context.Context, result *models.Result) error {
	return nil
}

func (s *stubResultRepo) Delete(ctx context.Context, id string) (int64, error) {
	return s.deleted, nil
}

func newResultRouter(results *stubResultRepo, students *stubStudentRepo, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewResultService(results, students, nil, time.Minute, stubAudit{}, nil, nil, nil)
	h := NewResultHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, claims)
		c.Next()
	})
	router.POST("/admin/results", h.Upload)
	router.GET("/admin/results", h.ListAll)
	router.GET("/admin/results/export", h.Export)
	router.PUT("/admin/results/:id", h.Update)
	router.DELETE("/admin/results/:id", h.Delete)
	router.GET("/student/results/:matric", middleware.RequireAdminOrOwner("matric"), h.StudentResults)
	return router
}

func adminJWT() *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleAdmin, Identifier: "root", Name: "root"}
}

func TestResultHandlerUpload(t *testing.T) {
	students := &stubStudentRepo{students: map[string]*models.Student{
		"CSC001": {Matric: "CSC001", Name: "Ada", Email: "ada@example.com"},
	}}
	router := newResultRouter(&stubResultRepo{}, students, adminJWT())

	body, _ := json.Marshal(map[string]interface{}{
		"matric":  "CSC001",
		"subject": "Physics",
		"score":   85,
	})
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/results", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var envelope struct {
		Data models.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, "A", envelope.Data.Grade)
}

func TestResultHandlerUploadUnknownStudent(t *testing.T) {
	router := newResultRouter(&stubResultRepo{}, &stubStudentRepo{}, adminJWT())

	body, _ := json.Marshal(map[string]interface{}{
		"matric":  "CSC404",
		"subject": "Physics",
		"score":   85,
	})
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/results", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestResultHandlerUploadScoreOutOfRange(t *testing.T) {
	students := &stubStudentRepo{students: map[string]*models.Student{"CSC001": {Matric: "CSC001"}}}
	router := newResultRouter(&stubResultRepo{}, students, adminJWT())

	body, _ := json.Marshal(map[string]interface{}{
		"matric":  "CSC001",
		"subject": "Physics",
		"score":   120,
	})
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/results", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestResultHandlerExportCSV(t *testing.T) {
	results := &stubResultRepo{all: []models.Result{
		{ID: "r1", Matric: "CSC001", Subject: "Physics", Score: 70, Grade: "A"},
	}}
	router := newResultRouter(results, &stubStudentRepo{}, adminJWT())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/results/export?format=csv", nil)
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=results.csv", recorder.Header().Get("Content-Disposition"))
	assert.Contains(t, recorder.Body.String(), "CSC001,Physics,70,A")
}

func TestResultHandlerExportUnknownFormat(t *testing.T) {
	router := newResultRouter(&stubResultRepo{}, &stubStudentRepo{}, adminJWT())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/results/export?format=xlsx", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestResultHandlerStudentResultsOwner(t *testing.T) {
	students := &stubStudentRepo{students: map[string]*models.Student{
		"CSC001": {Matric: "CSC001", Name: "Ada", Email: "ada@example.com"},
	}}
	results := &stubResultRepo{all: []models.Result{
		{ID: "r1", Matric: "CSC001", Subject: "Physics", Score: 70, Grade: "A"},
	}}
	claims := &models.JWTClaims{Role: models.RoleStudent, Identifier: "CSC001", Name: "Ada"}
	router := newResultRouter(results, students, claims)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/student/results/CSC001", nil)
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"matric":"CSC001"`)
	assert.NotContains(t, recorder.Body.String(), "password")
}

func TestResultHandlerStudentResultsForeignMatric(t *testing.T) {
	claims := &models.JWTClaims{Role: models.RoleStudent, Identifier: "CSC001", Name: "Ada"}
	router := newResultRouter(&stubResultRepo{}, &stubStudentRepo{}, claims)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/student/results/CSC002", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestResultHandlerDelete(t *testing.T) {
	results := &stubResultRepo{
		byID:    map[string]*models.Result{"r1": {ID: "r1", Matric: "CSC001", Subject: "Physics"}},
		deleted: 1,
	}
	router := newResultRouter(results, &stubStudentRepo{}, adminJWT())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin/results/r1", nil)
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "result deleted")
}

func TestResultHandlerDeleteNotFound(t *testing.T) {
	router := newResultRouter(&stubResultRepo{}, &stubStudentRepo{}, adminJWT())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/admin/results/missing", nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
