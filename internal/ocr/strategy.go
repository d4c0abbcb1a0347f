package ocr

import (
	"context"

	"jobassist-backend/internal/extract"
	"jobassist-backend/internal/shared/storage/scratch"
)

// Strategy exposes the fallback as the terminal step of an extraction chain.
// The source file is removed once recognition finishes.
type Strategy struct {
	Fallback *Fallback
}

func (Strategy) Name() string { return "ocr" }

func (s Strategy) Extract(ctx context.Context, doc extract.Document) extract.Result {
	defer scratch.Remove(doc.Path)

	var (
		text string
		err  error
	)
	switch doc.Kind {
	case extract.KindPDF:
		text, err = s.Fallback.PDF(ctx, doc.Path)
	case extract.KindDOCX:
		text, err = s.Fallback.DOCX(ctx, doc.Path)
	default:
		text, err = s.Fallback.Image(ctx, doc.Path)
	}
	if err != nil {
		return extract.Failed(err)
	}
	return extract.Text(text)
}
