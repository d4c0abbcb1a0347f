package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/extract"
	"jobassist-backend/internal/extract/extracttest"
	"jobassist-backend/internal/shared/storage/scratch"
)

// fakeRunner imitates the rasterizer by writing page files and the OCR
// engine by echoing the image name.
type fakeRunner struct {
	mu        sync.Mutex
	pages     int
	rasterErr error
	engineErr error
	delay     func(image string) time.Duration
	calls     []string
	active    int
	maxActive int
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	r.mu.Unlock()

	switch name {
	case "convert":
		if r.rasterErr != nil {
			return nil, r.rasterErr
		}
		pattern := args[len(args)-1]
		for i := 0; i < r.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf(pattern, i), []byte("jpg"), 0o600); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case "tesseract":
		r.mu.Lock()
		r.active++
		if r.active > r.maxActive {
			r.maxActive = r.active
		}
		r.mu.Unlock()
		defer func() {
			r.mu.Lock()
			r.active--
			r.mu.Unlock()
		}()
		image := args[0]
		if r.delay != nil {
			time.Sleep(r.delay(image))
		}
		if r.engineErr != nil {
			return nil, r.engineErr
		}
		if _, err := os.Stat(image); err != nil {
			return nil, err
		}
		return []byte("text:" + filepath.Base(image) + "\n\f"), nil
	}
	return nil, fmt.Errorf("unexpected command %s", name)
}

func engineCalls(r *fakeRunner) int {
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, "tesseract") {
			n++
		}
	}
	return n
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch artifacts left behind")
}

func TestPDFJoinsPagesInPageOrder(t *testing.T) {
	base := t.TempDir()
	runner := &fakeRunner{
		pages: 12,
		delay: func(image string) time.Duration {
			// later pages finish first
			if strings.Contains(image, "page-1.") {
				return 20 * time.Millisecond
			}
			return time.Millisecond
		},
	}
	fb := New(Config{Concurrency: 4}, runner, scratch.New(base))

	text, err := fb.PDF(context.Background(), "/uploads/resume.pdf")
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 12)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("text:page-%d.jpg", i), line)
	}
	assert.LessOrEqual(t, runner.maxActive, 4)
	assert.Contains(t, runner.calls[0], "convert -density 300 /uploads/resume.pdf")
	assertEmptyDir(t, base)
}

func TestPDFSequentialByDefault(t *testing.T) {
	runner := &fakeRunner{pages: 3, delay: func(string) time.Duration { return time.Millisecond }}
	fb := New(Config{}, runner, scratch.New(t.TempDir()))

	_, err := fb.PDF(context.Background(), "in.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, runner.maxActive)
	assert.Equal(t, 3, engineCalls(runner))
}

func TestPDFRasterFailureYieldsEmptyText(t *testing.T) {
	base := t.TempDir()
	runner := &fakeRunner{rasterErr: errors.New("convert: no images defined")}
	fb := New(Config{}, runner, scratch.New(base))

	text, err := fb.PDF(context.Background(), "empty.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, 0, engineCalls(runner))
	assertEmptyDir(t, base)
}

func TestEngineFailureYieldsEmptyTextAndCleansUp(t *testing.T) {
	base := t.TempDir()
	runner := &fakeRunner{pages: 2, engineErr: errors.New("tesseract: not found")}
	fb := New(Config{}, runner, scratch.New(base))

	text, err := fb.PDF(context.Background(), "in.pdf")
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assertEmptyDir(t, base)
}

func TestImageRecognizesFileDirectly(t *testing.T) {
	path := extracttest.WriteFile(t, "scan.png", extracttest.PNG())
	runner := &fakeRunner{}
	fb := New(Config{Lang: "deu"}, runner, scratch.New(t.TempDir()))

	text, err := fb.Image(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "text:scan.png", text)
	assert.Equal(t, []string{"tesseract " + path + " stdout -l deu"}, runner.calls)
}

func TestDOCXUsesRawTextBeforeImages(t *testing.T) {
	path := extracttest.WriteFile(t, "cv.docx", extracttest.DOCX([]string{"Raw body"}, extracttest.PNG()))
	runner := &fakeRunner{}
	fb := New(Config{}, runner, scratch.New(t.TempDir()))

	text, err := fb.DOCX(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Raw body", text)
	assert.Equal(t, 0, engineCalls(runner))
}

func TestDOCXFallsBackToEmbeddedImages(t *testing.T) {
	base := t.TempDir()
	path := extracttest.WriteFile(t, "scan.docx", extracttest.DOCX(nil, extracttest.PNG(), extracttest.PNG()))
	runner := &fakeRunner{}
	fb := New(Config{}, runner, scratch.New(base))

	text, err := fb.DOCX(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "text:image-0.png\ntext:image-1.png", text)
	assertEmptyDir(t, base)
}

func TestStrategyRemovesSourceFile(t *testing.T) {
	path := extracttest.WriteFile(t, "scan.png", extracttest.PNG())
	s := Strategy{Fallback: New(Config{}, &fakeRunner{}, scratch.New(t.TempDir()))}

	res := s.Extract(context.Background(), extract.Document{Path: path, Kind: extract.KindImage})
	assert.Equal(t, extract.OutcomeText, res.Outcome)
	assert.Equal(t, "text:scan.png", res.Text)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPageImagesSortsNumerically(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.jpg", "page-2.jpg", "page-0.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	pages, err := pageImages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, "page-0.jpg", filepath.Base(pages[0]))
	assert.Equal(t, "page-2.jpg", filepath.Base(pages[1]))
	assert.Equal(t, "page-10.jpg", filepath.Base(pages[2]))
}
