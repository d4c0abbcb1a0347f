package resumecheck

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
	"jobassist-backend/internal/shared/storage/scratch"
	"jobassist-backend/internal/shared/telemetry"
)

// multipart framing allowance on top of the file cap
const formOverhead = 1 << 20

// Handler accepts resume uploads and runs the pipeline.
type Handler struct {
	Pipeline       *Pipeline
	Scratch        *scratch.Store
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(p *Pipeline, store *scratch.Store, maxUploadBytes int64) *Handler {
	return &Handler{Pipeline: p, Scratch: store, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches the upload route to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/resume/check", append(mw, h.check)...)
}

func (h *Handler) check(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverhead)
	}

	req := Request{UserID: userID, JobDescription: c.PostForm("jobDescription")}
	fileHeader, err := c.FormFile("resume")
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile):
	default:
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File is too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", msgNoFile, nil)
		return
	}
	if fileHeader != nil {
		if h.MaxUploadBytes > 0 && fileHeader.Size > h.MaxUploadBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "File is too large", nil)
			return
		}
		src, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", msgNoFile, nil)
			return
		}
		saved, err := h.Scratch.Save(c.Request.Context(), userID, fileHeader.Filename, src, h.MaxUploadBytes)
		_ = src.Close()
		if err != nil {
			telemetry.Error("resume.upload.failed", map[string]any{"user_id": userID, "error": err.Error()})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze", nil)
			return
		}
		req.File = &Upload{
			Path:         saved.Path,
			DeclaredMIME: fileHeader.Header.Get("Content-Type"),
			Size:         saved.Size,
		}
		telemetry.Info("resume.upload", map[string]any{
			"user_id":       userID,
			"declared_mime": req.File.DeclaredMIME,
			"detected_mime": saved.DetectedMIME,
			"size":          saved.Size,
		})
	}

	validated, err := Validate(req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", verr.Message, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze", nil)
		return
	}

	// A client disconnect does not abort a run that has started.
	result, err := h.Pipeline.Run(context.WithoutCancel(c.Request.Context()), validated)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "analysis_failed", "failed to analyze", nil)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
