package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goodlyheritage/entrex-backend/internal/response"
	"github.com/goodlyheritage/entrex-backend/internal/service"
)

// AdminHandler handles administrative maintenance endpoints.
type AdminHandler struct {
	archiveService *service.ArchiveService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(archiveService *service.ArchiveService) *AdminHandler {
	return &AdminHandler{archiveService: archiveService}
}

// ArchiveYear godoc
// POST /api/v1/admin/archive-year
// Streams a zip of all students and exam results, then wipes both tables.
// The wipe only happens once the archive has been fully assembled.
func (h *AdminHandler) ArchiveYear(c *gin.Context) {
	data, filename, err := h.archiveService.ArchiveYear(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", data)
}
