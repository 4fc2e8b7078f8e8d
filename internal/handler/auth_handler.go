package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goodlyheritage/entrex-backend/internal/middleware"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/repository"
	"github.com/goodlyheritage/entrex-backend/internal/response"
	"github.com/goodlyheritage/entrex-backend/internal/service"
	"github.com/goodlyheritage/entrex-backend/internal/validator"
)

// AuthHandler handles registration, login and account endpoints.
type AuthHandler struct {
	authService         *service.AuthService
	registrationService *service.RegistrationService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, registrationService *service.RegistrationService) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		registrationService: registrationService,
	}
}

// Register godoc
// POST /api/v1/auth/register
// Creates a student account and logs it straight in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.registrationService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateEmail)
		case errors.Is(err, service.ErrExamNumberExhausted):
			// Allocation failure is a server-side condition, not a
			// conflict the caller caused.
			response.Fail(c, http.StatusInternalServerError, response.ErrExamNumberExhausted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, model.LoginResponse{Token: token, User: user})
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates a student (exam number) or admin (email).
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Me godoc
// GET /api/v1/auth/me
// Returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.registrationService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// CreateAdmin godoc
// POST /api/v1/admin/users
// Creates an administrator account. Admin only; the very first admin is
// bootstrapped via the create-admin CLI instead.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.registrationService.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			response.Fail(c, http.StatusConflict, response.ErrDuplicateEmail)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, admin)
}

// ListStudents godoc
// GET /api/v1/admin/students
// Returns a page of registered students.
func (h *AuthHandler) ListStudents(c *gin.Context) {
	page, perPage := parsePagination(c)

	students, total, err := h.registrationService.ListStudents(c.Request.Context(), perPage, (page-1)*perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if students == nil {
		students = []model.User{}
	}

	response.SuccessWithPagination(c, http.StatusOK, students, paginationOf(page, perPage, total))
}

// RecomputeSchedule godoc
// POST /api/v1/admin/students/recompute-schedule
// Reassigns every student's exam group and slot from the current settings.
func (h *AuthHandler) RecomputeSchedule(c *gin.Context) {
	updated, err := h.registrationService.RecomputeSchedule(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}
