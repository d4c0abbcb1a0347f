package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nguyenthenguyen/docx"
)

const docxBody = "word/document.xml"

// DOCXText reads the body text of a Word document.
type DOCXText struct{}

func (DOCXText) Name() string { return "docx-text" }

func (DOCXText) Extract(ctx context.Context, doc Document) Result {
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}
	r, err := docx.ReadDocxFile(doc.Path)
	if err != nil {
		return Failed(fmt.Errorf("open docx: %w", err))
	}
	defer r.Close()

	text, err := stripDocxXML(r.Editable().GetContent())
	if err != nil {
		return Failed(fmt.Errorf("parse docx body: %w", err))
	}
	return Text(text)
}

// DOCXRawText reads word/document.xml straight from the archive, without the
// docx library's run merging.
func DOCXRawText(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := body.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	text, err := stripDocxXML(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}
	return Normalize(text), nil
}

// DOCXImages writes the raster images embedded under word/media into dir and
// returns their paths in archive order. Entries that are not images are skipped.
func DOCXImages(filePath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var out []string
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if !strings.HasPrefix(name, "word/media/") || f.FileInfo().IsDir() {
			continue
		}
		target, err := writeImage(f, dir, len(out))
		if err != nil {
			return out, fmt.Errorf("extract %s: %w", path.Base(name), err)
		}
		if target != "" {
			out = append(out, target)
		}
	}
	return out, nil
}

func writeImage(f *zip.File, dir string, idx int) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", nil
	}
	target := filepath.Join(dir, fmt.Sprintf("image-%d%s", idx, mt.Extension()))
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", err
	}
	return target, nil
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
