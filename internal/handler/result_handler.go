package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/srp-api/internal/service"
	appErrors "github.com/noah-isme/srp-api/pkg/errors"
	"github.com/noah-isme/srp-api/pkg/response"
)

// ResultHandler exposes examination result endpoints.
type ResultHandler struct {
	results *service.ResultService
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// Upload godoc
// @Summary Upload result
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body service.UploadResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/results [post]
func (h *ResultHandler) Upload(c *gin.Context) {
	var req service.UploadResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.results.Upload(c.Request.Context(), claimsFromContext(c), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListAll godoc
// @Summary List all results
// @Tags Results
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/results [get]
func (h *ResultHandler) ListAll(c *gin.Context) {
	results, err := h.results.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Update godoc
// @Summary Update result
// @Tags Results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.UpdateResultRequest true "Result payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/results/{id} [put]
func (h *ResultHandler) Update(c *gin.Context) {
	var req service.UpdateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.results.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete result
// @Tags Results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/results/{id} [delete]
func (h *ResultHandler) Delete(c *gin.Context) {
	if err := h.results.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id"), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "result deleted"}, nil)
}

// Export godoc
// @Summary Export results
// @Description Render all results as CSV or PDF
// @Tags Results
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200
// @Failure 400 {object} response.Envelope
// @Router /admin/results/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.results.Export(c.Request.Context(), claimsFromContext(c), format, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results.%s", format))
	c.Data(http.StatusOK, contentType, payload)
}

// StudentResults godoc
// @Summary Get a student's results
// @Description Admins may view any student; students only their own
// @Tags Results
// @Produce json
// @Param matric path string true "Matric number"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/results/{matric} [get]
func (h *ResultHandler) StudentResults(c *gin.Context) {
	payload, err := h.results.ListForStudent(c.Request.Context(), claimsFromContext(c), c.Param("matric"), requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
