package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText reads the text layer of a PDF. Tokens on a page are joined with
// single spaces and pages with newlines.
type PDFText struct{}

func (PDFText) Name() string { return "pdf-text" }

func (PDFText) Extract(ctx context.Context, doc Document) Result {
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}
	text, err := readPDF(doc.Path)
	if err != nil {
		return Failed(err)
	}
	return Text(text)
}

func readPDF(path string) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		var tokens []string
		for _, row := range rows {
			for _, word := range row.Content {
				tokens = append(tokens, word.S)
			}
		}
		pages = append(pages, joinTokens(tokens))
	}
	return strings.Join(pages, "\n"), nil
}

// joinTokens joins a page's words with single spaces. The reader emits blank
// tokens at row starts; those are dropped.
func joinTokens(tokens []string) string {
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			words = append(words, tok)
		}
	}
	return strings.Join(words, " ")
}
