package resumecheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/extract"
)

func tempUpload(t *testing.T, mime string) *Upload {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	return &Upload{Path: path, DeclaredMIME: mime, Size: 4}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := Validate(Request{UserID: "u", JobDescription: "jd"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "No file uploaded", verr.Message)
}

func TestValidateRejectsUnsupportedTypesAndDeletesFile(t *testing.T) {
	for _, mime := range []string{"text/plain", "application/msword", "image/gif", "", "application/zip"} {
		t.Run(mime, func(t *testing.T) {
			up := tempUpload(t, mime)
			_, err := Validate(Request{UserID: "u", File: up, JobDescription: "jd"})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Only PDF, DOCX, JPG, and PNG files are allowed", verr.Message)
			assert.NoFileExists(t, up.Path)
		})
	}
}

func TestValidateMissingJobDescriptionDeletesFile(t *testing.T) {
	for _, mime := range []string{extract.MIMEPDF, extract.MIMEDOCX, extract.MIMEJPEG, extract.MIMEPNG} {
		t.Run(mime, func(t *testing.T) {
			up := tempUpload(t, mime)
			_, err := Validate(Request{UserID: "u", File: up, JobDescription: " \n "})

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "Job description is required", verr.Message)
			assert.NoFileExists(t, up.Path)
		})
	}
}

func TestValidateAcceptsSupportedUpload(t *testing.T) {
	up := tempUpload(t, "application/pdf; charset=binary")
	v, err := Validate(Request{UserID: "u", File: up, JobDescription: "Go engineer"})
	require.NoError(t, err)
	assert.Equal(t, extract.KindPDF, v.Doc.Kind)
	assert.Equal(t, up.Path, v.Doc.Path)
	assert.FileExists(t, up.Path)
}
