package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobassist-backend/internal/extract/extracttest"
)

func TestPDFTextJoinsPagesWithNewlines(t *testing.T) {
	path := extracttest.WriteFile(t, "resume.pdf", extracttest.PDF("Jane Doe", "Backend Engineer"))

	res := PDFText{}.Extract(context.Background(), Document{Path: path, Kind: KindPDF})
	require.Equal(t, OutcomeText, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, "Jane Doe\nBackend Engineer", res.Text)
}

func TestPDFTextPagesHaveNoLeadingSpace(t *testing.T) {
	path := extracttest.WriteFile(t, "resume.pdf",
		extracttest.PDF("Jane Doe", "Backend Engineer", "Three Words Here"))

	res := PDFText{}.Extract(context.Background(), Document{Path: path, Kind: KindPDF})
	require.Equal(t, OutcomeText, res.Outcome, "err: %v", res.Err)
	assert.Equal(t, "Jane Doe\nBackend Engineer\nThree Words Here", res.Text)
}

func TestJoinTokensDropsBlankTokens(t *testing.T) {
	assert.Equal(t, "Go Postgres", joinTokens([]string{"", "Go", " ", "Postgres", ""}))
	assert.Equal(t, "", joinTokens([]string{"", " "}))
	assert.Equal(t, "", joinTokens(nil))
}

func TestPDFTextJoinsTokensWithSpaces(t *testing.T) {
	path := extracttest.WriteFile(t, "resume.pdf", extracttest.PDF("Skills\nGo Postgres"))

	res := PDFText{}.Extract(context.Background(), Document{Path: path, Kind: KindPDF})
	require.Equal(t, OutcomeText, res.Outcome, "err: %v", res.Err)
	assert.Contains(t, res.Text, "Skills")
	assert.Contains(t, res.Text, "Go Postgres")
	assert.NotContains(t, res.Text, "\n")
}

func TestPDFTextWithoutTextLayerIsEmpty(t *testing.T) {
	path := extracttest.WriteFile(t, "scan.pdf", extracttest.PDF(""))

	res := PDFText{}.Extract(context.Background(), Document{Path: path, Kind: KindPDF})
	assert.Equal(t, OutcomeEmpty, res.Outcome)
}

func TestPDFTextZeroBytesIsError(t *testing.T) {
	path := extracttest.WriteFile(t, "empty.pdf", nil)

	res := PDFText{}.Extract(context.Background(), Document{Path: path, Kind: KindPDF})
	assert.Equal(t, OutcomeError, res.Outcome)
	assert.Error(t, res.Err)
}
