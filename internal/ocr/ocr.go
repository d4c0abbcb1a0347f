package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"jobassist-backend/internal/extract"
	"jobassist-backend/internal/shared/storage/scratch"
	"jobassist-backend/internal/shared/telemetry"
)

// Config names the external tools and their settings.
type Config struct {
	RasterCmd   string
	EngineCmd   string
	Lang        string
	Density     int
	Concurrency int
}

func (c Config) withDefaults() Config {
	if c.RasterCmd == "" {
		c.RasterCmd = "convert"
	}
	if c.EngineCmd == "" {
		c.EngineCmd = "tesseract"
	}
	if c.Lang == "" {
		c.Lang = "eng"
	}
	if c.Density <= 0 {
		c.Density = 300
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	return c
}

// Dirs hands out request-scoped scratch directories.
type Dirs interface {
	Dir(prefix string) (string, func(), error)
}

// Fallback recovers text from documents structured extraction could not read.
// Engine failures are logged and yield empty text. Every scratch artifact is
// removed before a method returns.
type Fallback struct {
	cfg    Config
	runner Runner
	dirs   Dirs
}

func New(cfg Config, runner Runner, dirs Dirs) *Fallback {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Fallback{cfg: cfg.withDefaults(), runner: runner, dirs: dirs}
}

// Recognize runs the OCR engine over one image.
func (f *Fallback) Recognize(ctx context.Context, imagePath string) string {
	out, err := f.runner.Run(ctx, f.cfg.EngineCmd, imagePath, "stdout", "-l", f.cfg.Lang)
	if err != nil {
		telemetry.Warn("resume.ocr.engine_failed", map[string]any{
			"image": filepath.Base(imagePath),
			"error": err.Error(),
		})
	}
	return strings.TrimSpace(string(out))
}

// PDF rasterizes each page and recognizes the pages, joining them in page order.
func (f *Fallback) PDF(ctx context.Context, path string) (string, error) {
	dir, cleanup, err := f.dirs.Dir("ocr")
	if err != nil {
		return "", err
	}
	defer cleanup()

	pattern := filepath.Join(dir, "page-%d.jpg")
	if _, err := f.runner.Run(ctx, f.cfg.RasterCmd, "-density", strconv.Itoa(f.cfg.Density), path, pattern); err != nil {
		telemetry.Warn("resume.ocr.raster_failed", map[string]any{"error": err.Error()})
	}

	pages, err := pageImages(dir)
	if err != nil {
		return "", err
	}
	return f.recognizeAll(ctx, pages), nil
}

// DOCX re-reads the document body and, when that is still empty, recognizes
// the embedded images.
func (f *Fallback) DOCX(ctx context.Context, path string) (string, error) {
	if text, err := extract.DOCXRawText(path); err == nil && text != "" {
		return text, nil
	}

	dir, cleanup, err := f.dirs.Dir("ocr")
	if err != nil {
		return "", err
	}
	defer cleanup()

	images, err := extract.DOCXImages(path, dir)
	if err != nil {
		telemetry.Warn("resume.ocr.docx_images_failed", map[string]any{"error": err.Error()})
	}
	return f.recognizeAll(ctx, images), nil
}

// Image recognizes a raster image directly.
func (f *Fallback) Image(ctx context.Context, path string) (string, error) {
	return f.Recognize(ctx, path), nil
}

// recognizeAll recognizes images with bounded parallelism. Each image is
// deleted once recognized; output keeps the order of images.
func (f *Fallback) recognizeAll(ctx context.Context, images []string) string {
	texts := make([]string, len(images))
	var g errgroup.Group
	g.SetLimit(f.cfg.Concurrency)
	for i, img := range images {
		g.Go(func() error {
			texts[i] = f.Recognize(ctx, img)
			_ = scratch.Remove(img)
			return nil
		})
	}
	_ = g.Wait()

	parts := texts[:0]
	for _, t := range texts {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// pageImages lists rasterized pages sorted by page number.
func pageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}
	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "page-") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), filepath.Ext(name)))
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(dir, name)})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
