package resumecheck

import (
	"strings"

	"jobassist-backend/internal/extract"
	"jobassist-backend/internal/shared/storage/scratch"
)

const (
	msgNoFile        = "No file uploaded"
	msgBadType       = "Only PDF, DOCX, JPG, and PNG files are allowed"
	msgNoDescription = "Job description is required"
)

// ValidationError is bad input. Its message is safe to show the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Upload is a file already written to scratch space by the transport.
type Upload struct {
	Path         string
	DeclaredMIME string
	Size         int64
}

// Request is one resume check before validation.
type Request struct {
	UserID         string
	File           *Upload
	JobDescription string
}

// Validated is a request the pipeline may run.
type Validated struct {
	UserID         string
	JobDescription string
	Doc            extract.Document
}

// Validate checks the upload and the job description. A rejected upload is
// deleted before returning.
func Validate(req Request) (Validated, error) {
	if req.File == nil || req.File.Path == "" {
		return Validated{}, &ValidationError{Message: msgNoFile}
	}

	kind, ok := extract.KindFromMIME(req.File.DeclaredMIME)
	if !ok {
		_ = scratch.Remove(req.File.Path)
		return Validated{}, &ValidationError{Message: msgBadType}
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		_ = scratch.Remove(req.File.Path)
		return Validated{}, &ValidationError{Message: msgNoDescription}
	}

	return Validated{
		UserID:         req.UserID,
		JobDescription: req.JobDescription,
		Doc: extract.Document{
			Path: req.File.Path,
			MIME: req.File.DeclaredMIME,
			Kind: kind,
		},
	}, nil
}
