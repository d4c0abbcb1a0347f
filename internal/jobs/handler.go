package jobs

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
	"jobassist-backend/internal/shared/storage/scratch"
	"jobassist-backend/internal/shared/telemetry"
)

const maxCSVBytes = 2 << 20

type Handler struct {
	Svc     *Service
	Scratch *scratch.Store
}

func NewHandler(svc *Service, store *scratch.Store) *Handler {
	return &Handler{Svc: svc, Scratch: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.create)
	rg.GET("/jobs", h.list)
	rg.PUT("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		h.importCSV(c)
		return
	}

	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Add(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"message": "Job added successfully", "job": job})
}

func (h *Handler) importCSV(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	header, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}
	src, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}
	saved, err := h.Scratch.Save(c.Request.Context(), userID, header.Filename, src, maxCSVBytes)
	_ = src.Close()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to import jobs", nil)
		return
	}
	defer scratch.Remove(saved.Path)

	if !strings.HasPrefix(saved.DetectedMIME, "text/") {
		h.writeError(c, ErrNotCSV)
		return
	}

	f, err := os.Open(saved.Path)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to import jobs", nil)
		return
	}
	defer f.Close()

	n, err := h.Svc.Import(c.Request.Context(), userID, f)
	if err != nil {
		telemetry.Warn("jobs.import_failed", map[string]any{"user_id": userID, "error": err.Error()})
		respond.Error(c, http.StatusBadRequest, "validation_error", "Failed to import jobs", nil)
		return
	}
	telemetry.Info("jobs.imported", map[string]any{"user_id": userID, "count": n})
	respond.JSON(c, http.StatusCreated, gin.H{"message": "Jobs imported successfully", "imported": n})
}

func (h *Handler) list(c *gin.Context) {
	jobs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch jobs", nil)
		return
	}
	respond.JSON(c, http.StatusOK, jobs)
}

func (h *Handler) update(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Status       *string `json:"status"`
		ReminderDate *string `json:"reminderDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), jobID, req.Status, req.ReminderDate)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "Job updated successfully", "job": job})
}

func (h *Handler) remove(c *gin.Context) {
	jobID, ok := jobIDParam(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), jobID); err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

// jobIDParam reads :id. Ids are UUIDs, so anything else cannot name a job.
func jobIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "Job not found", nil)
		return "", false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Title and company are required", nil)
	case errors.Is(err, ErrInvalidStatus):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid status", nil)
	case errors.Is(err, ErrInvalidDate):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid reminder date", nil)
	case errors.Is(err, ErrNotCSV):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Only CSV files are allowed", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Job not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Server error", nil)
	}
}
