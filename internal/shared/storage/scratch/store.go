package scratch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"jobassist-backend/internal/shared/util"
)

// File is an uploaded file persisted to scratch space for one request.
type File struct {
	Path         string
	Size         int64
	DetectedMIME string
}

// Store hands out request-scoped files and directories under a base directory.
// Every name is unique so concurrent requests never share a path.
type Store struct {
	baseDir string
}

// New creates a scratch store rooted at baseDir.
func New(baseDir string) *Store {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "jobassist-uploads")
	}
	return &Store{baseDir: baseDir}
}

// Save copies r into a new file under the user's namespace.
// At most limit bytes are written when limit is positive.
func (s *Store) Save(ctx context.Context, userID, fileName string, r io.Reader, limit int64) (File, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return File{}, fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	dirPath := filepath.Join(s.baseDir, util.HashUserKey(userID))
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return File{}, fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(dirPath, uuid.NewString()+"_"+sanitizedName)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return File{}, fmt.Errorf("open file: %w", err)
	}

	if limit > 0 {
		r = io.LimitReader(r, limit)
	}
	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(fullPath)
		return File{}, fmt.Errorf("write body: %w", errors.Join(copyErr, closeErr))
	}

	detected := "application/octet-stream"
	if mt, err := mimetype.DetectFile(fullPath); err == nil {
		detected = mt.String()
	}

	return File{Path: fullPath, Size: written, DetectedMIME: detected}, nil
}

// Dir creates a fresh, uniquely named directory. The returned cleanup removes
// it and everything below it and is safe to call more than once.
func (s *Store) Dir(prefix string) (string, func(), error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir: %w", err)
	}
	dir, err := os.MkdirTemp(s.baseDir, prefix+"-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("mkdir temp: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// Remove deletes path. A path that is already gone is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
