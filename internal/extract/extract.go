package extract

import (
	"context"
	"fmt"
	"strings"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

// Kind is the family of an uploaded document.
type Kind int

const (
	KindUnknown Kind = iota
	KindPDF
	KindDOCX
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindDOCX:
		return "docx"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// KindFromMIME maps a declared MIME type to a document kind.
// Only PDF, DOCX, JPEG and PNG are accepted.
func KindFromMIME(mimeType string) (Kind, bool) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MIMEPDF:
		return KindPDF, true
	case MIMEDOCX:
		return KindDOCX, true
	case MIMEJPEG, MIMEPNG:
		return KindImage, true
	default:
		return KindUnknown, false
	}
}

// Document is a file on disk awaiting extraction.
type Document struct {
	Path string
	MIME string
	Kind Kind
}

// Outcome tags the result of one extraction strategy.
type Outcome int

const (
	OutcomeText Outcome = iota
	OutcomeEmpty
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeText:
		return "text"
	case OutcomeEmpty:
		return "empty"
	default:
		return "error"
	}
}

// Result is what a strategy produced: non-empty text, nothing, or an error.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

// Text builds a result from normalized text, tagging it empty when there is none.
func Text(s string) Result {
	s = Normalize(s)
	if s == "" {
		return Empty()
	}
	return Result{Outcome: OutcomeText, Text: s}
}

func Empty() Result {
	return Result{Outcome: OutcomeEmpty}
}

func Failed(err error) Result {
	return Result{Outcome: OutcomeError, Err: err}
}

// Strategy is one way of turning a document into text.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc Document) Result
}

// Attempt records the outcome of one strategy in a run.
type Attempt struct {
	Strategy string
	Outcome  Outcome
	Err      error
}

// Report is the outcome of Run.
type Report struct {
	Text     string
	Attempts []Attempt
}

// UsedFallback reports whether any strategy after the first was consulted.
func (r Report) UsedFallback() bool {
	return len(r.Attempts) > 1
}

// Run tries strategies in order and stops at the first that yields text.
// Empty and error outcomes advance to the next strategy; when the list is
// exhausted the text is empty. Strategy errors are wrapped in ExtractionError
// and recorded, never returned. Only a cancelled context stops the run early.
func Run(ctx context.Context, doc Document, strategies ...Strategy) (Report, error) {
	var report Report
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := s.Extract(ctx, doc)
		attempt := Attempt{Strategy: s.Name(), Outcome: res.Outcome}
		if res.Outcome == OutcomeError {
			attempt.Err = &ExtractionError{Strategy: s.Name(), Kind: doc.Kind, Err: res.Err}
		}
		report.Attempts = append(report.Attempts, attempt)
		if res.Outcome == OutcomeText {
			report.Text = res.Text
			return report, nil
		}
	}
	return report, nil
}

// ExtractionError is a structured parse failure. It is recovered by falling
// through to the next strategy.
type ExtractionError struct {
	Strategy string
	Kind     Kind
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s via %s: %v", e.Kind, e.Strategy, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
