package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/extract/extracttest"
)

func TestDOCXTextReadsParagraphs(t *testing.T) {
	path := extracttest.WriteFile(t, "cv.docx", extracttest.DOCX([]string{"Jane Doe", "", "Go & SQL"}))

	res := DOCXText{}.Extract(context.Background(), Document{Path: path, Kind: KindDOCX})
	require.Equal(t, OutcomeText, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, "Jane Doe\nGo & SQL", res.Text)
}

func TestDOCXTextEmptyBody(t *testing.T) {
	path := extracttest.WriteFile(t, "blank.docx", extracttest.DOCX(nil))

	res := DOCXText{}.Extract(context.Background(), Document{Path: path, Kind: KindDOCX})
	assert.Equal(t, OutcomeEmpty, res.Outcome)
}

func TestDOCXTextNotAZip(t *testing.T) {
	path := extracttest.WriteFile(t, "fake.docx", []byte("plain text"))

	res := DOCXText{}.Extract(context.Background(), Document{Path: path, Kind: KindDOCX})
	assert.Equal(t, OutcomeError, res.Outcome)
}

func TestDOCXTextMalformedBodyIsError(t *testing.T) {
	path := extracttest.WriteFile(t, "broken.docx",
		extracttest.DOCXBody(`<w:p><w:r><w:t>Jane Doe</w:r></w:p>`))

	res := DOCXText{}.Extract(context.Background(), Document{Path: path, Kind: KindDOCX})
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Error(t, res.Err)
	assert.Empty(t, res.Text)

	_, err := DOCXRawText(path)
	assert.Error(t, err)
}

func TestDOCXRawText(t *testing.T) {
	path := extracttest.WriteFile(t, "cv.docx", extracttest.DOCX([]string{"Line one", "Line two"}))

	text, err := DOCXRawText(path)
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", text)
}

func TestDOCXImagesWritesOnlyImages(t *testing.T) {
	path := extracttest.WriteFile(t, "scan.docx",
		extracttest.DOCX(nil, extracttest.PNG(), []byte("not an image"), extracttest.PNG()))
	dir := t.TempDir()

	images, err := DOCXImages(path, dir)
	require.NoError(t, err)
	require.Len(t, images, 2)
	for _, img := range images {
		assert.Equal(t, dir, filepath.Dir(img))
		assert.Equal(t, ".png", filepath.Ext(img))
		_, err := os.Stat(img)
		assert.NoError(t, err)
	}
}
