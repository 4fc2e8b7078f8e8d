package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goodlyheritage/entrex-backend/internal/middleware"
	"github.com/goodlyheritage/entrex-backend/internal/model"
	"github.com/goodlyheritage/entrex-backend/internal/response"
	"github.com/goodlyheritage/entrex-backend/internal/service"
	"github.com/goodlyheritage/entrex-backend/internal/validator"
)

// SettingsHandler handles the exam configuration endpoints.
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetPublic godoc
// GET /api/v1/public/settings
// Returns the student-visible subset; no authentication required so the
// registration page can show schedule details.
func (h *SettingsHandler) GetPublic(c *gin.Context) {
	settings, err := h.settingsService.GetPublic(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, settings)
}

// Get godoc
// GET /api/v1/admin/settings
// Returns the full configuration.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, settings)
}

// GetForRole godoc
// GET /api/v1/settings
// Authenticated read: admins receive the full configuration, students the
// same subset the public endpoint exposes.
func (h *SettingsHandler) GetForRole(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims != nil && claims.Role == model.RoleAdmin {
		h.Get(c)
		return
	}
	h.GetPublic(c)
}

// Update godoc
// PUT /api/v1/admin/settings
// Applies a partial update; omitted fields keep their current values.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, settings)
}
