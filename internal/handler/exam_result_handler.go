package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goodlyheritage/entrex-backend/internal/middleware"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/repository"
	"github.com/goodlyheritage/entrex-backend/internal/response"
	"github.com/goodlyheritage/entrex-backend/internal/service"
	"github.com/goodlyheritage/entrex-backend/internal/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ExamResultHandler handles the exam attempt lifecycle endpoints.
type ExamResultHandler struct {
	sessionService *service.ExamSessionService
}

// NewExamResultHandler creates a new ExamResultHandler.
func NewExamResultHandler(sessionService *service.ExamSessionService) *ExamResultHandler {
	return &ExamResultHandler{sessionService: sessionService}
}

// Start godoc
// POST /api/v1/exam-results/start
// Opens a new attempt for the authenticated student.
func (h *ExamResultHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)

	started, err := h.sessionService.Start(c.Request.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOngoingExamExists):
			response.Fail(c, http.StatusConflict, response.ErrOngoingExam)
		case errors.Is(err, service.ErrNoQuestionsAvailable):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, started)
}

// Submit godoc
// POST /api/v1/exam-results/:id/submit
// Scores the attempt against its frozen snapshot.
func (h *ExamResultHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := resultID(c)
	if !ok {
		return
	}

	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), claims.UserID, id, req.Answers)
	if err != nil {
		failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Cancel godoc
// POST /api/v1/exam-results/:id/cancel
// Discards a non-completed attempt.
func (h *ExamResultHandler) Cancel(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := resultID(c)
	if !ok {
		return
	}

	if err := h.sessionService.Cancel(c.Request.Context(), claims.UserID, id); err != nil {
		failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Reset godoc
// POST /api/v1/exam-results/reset
// Removes all of the student's own non-completed attempts. Idempotent:
// resetting with nothing in progress succeeds with zero removed.
func (h *ExamResultHandler) Reset(c *gin.Context) {
	claims := middleware.GetClaims(c)

	removed, err := h.sessionService.ResetIncomplete(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// AdminReset godoc
// POST /api/v1/admin/exam-results/reset/:userId
// Removes a given student's non-completed attempts.
func (h *ExamResultHandler) AdminReset(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	removed, err := h.sessionService.ResetIncomplete(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if removed == 0 {
		response.Fail(c, http.StatusNotFound, response.ErrNoIncompleteExam)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}

// Get godoc
// GET /api/v1/exam-results/:id
// Returns a single attempt; students may only read their own.
func (h *ExamResultHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	id, ok := resultID(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Get(c.Request.Context(), claims.UserID, claims.Role, id)
	if err != nil {
		failResult(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListMine godoc
// GET /api/v1/exam-results
// Returns the authenticated student's attempts.
func (h *ExamResultHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)

	results, err := h.sessionService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.ScoredResult{}
	}

	response.Success(c, http.StatusOK, results)
}

// ListAll godoc
// GET /api/v1/admin/exam-results
// Returns every attempt joined with its owner.
func (h *ExamResultHandler) ListAll(c *gin.Context) {
	results, err := h.sessionService.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.ExamResultSummary{}
	}

	response.Success(c, http.StatusOK, results)
}

func resultID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failResult maps the shared lifecycle errors to HTTP responses.
func failResult(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotResultOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotResultOwner)
	case errors.Is(err, service.ErrExamAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrExamAlreadyDone)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
