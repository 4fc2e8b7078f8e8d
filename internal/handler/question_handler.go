package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/response"
	"github.com/goodlyheritage/entrex-backend/internal/service"
	"github.com/goodlyheritage/entrex-backend/internal/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QuestionHandler handles question-bank management endpoints. All routes are
// admin only; students only ever see questions through a started attempt.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/admin/questions
func (h *QuestionHandler) List(c *gin.Context) {
	page, perPage := parsePagination(c)

	questions, total, err := h.questionService.List(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.SuccessWithPagination(c, http.StatusOK, questions, paginationOf(page, perPage, total))
}

// ListBySubject godoc
// GET /api/v1/admin/questions/by-subject
func (h *QuestionHandler) ListBySubject(c *gin.Context) {
	groups, err := h.questionService.ListBySubject(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if groups == nil {
		groups = []model.SubjectGroup{}
	}

	response.Success(c, http.StatusOK, groups)
}

// Subjects godoc
// GET /api/v1/admin/questions/subjects
func (h *QuestionHandler) Subjects(c *gin.Context) {
	subjects, err := h.questionService.Subjects(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}

	response.Success(c, http.StatusOK, subjects)
}

// Get godoc
// GET /api/v1/admin/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	question, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, question)
}

// Create godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusCreated, question)
}

// Update godoc
// PUT /api/v1/admin/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, question)
}

// Delete godoc
// DELETE /api/v1/admin/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := questionID(c)
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failQuestion(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// BulkImport godoc
// POST /api/v1/admin/questions/bulk
func (h *QuestionHandler) BulkImport(c *gin.Context) {
	var req model.BulkImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	imported, err := h.questionService.BulkImport(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerNotInOptions) {
			response.Fail(c, http.StatusBadRequest, response.ErrAnswerNotInOptions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"imported": imported})
}

func questionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func failQuestion(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAnswerNotInOptions):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerNotInOptions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
