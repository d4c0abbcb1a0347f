package resumecheck

import (
	"context"
	"errors"
	"time"

	"jobassist-backend/internal/analyses"
	"jobassist-backend/internal/extract"
	"jobassist-backend/internal/llm"
	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/storage/scratch"
	"jobassist-backend/internal/shared/telemetry"
)

// Scorer rates resume text against a job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (analyses.Result, error)
}

// Persister stores a finished analysis.
type Persister interface {
	Persist(ctx context.Context, userID, jobDescription string, result analyses.Result) (analyses.Record, error)
}

// Pipeline runs extraction, scoring and persistence for one upload.
type Pipeline struct {
	PDF    extract.Strategy
	DOCX   extract.Strategy
	OCR    extract.Strategy
	Scorer Scorer
	Store  Persister
	Now    func() time.Time
}

// NewPipeline wires the structured extractors in front of ocr.
func NewPipeline(ocr extract.Strategy, scorer Scorer, store Persister) *Pipeline {
	return &Pipeline{
		PDF:    extract.PDFText{},
		DOCX:   extract.DOCXText{},
		OCR:    ocr,
		Scorer: scorer,
		Store:  store,
		Now:    time.Now,
	}
}

// Strategies returns the extraction chain for a document kind. OCR is always last.
func (p *Pipeline) Strategies(kind extract.Kind) []extract.Strategy {
	switch kind {
	case extract.KindPDF:
		return []extract.Strategy{p.PDF, p.OCR}
	case extract.KindDOCX:
		return []extract.Strategy{p.DOCX, p.OCR}
	default:
		return []extract.Strategy{p.OCR}
	}
}

// Run executes one pipeline run. The uploaded file is gone when Run returns,
// and either a persisted Result or an error comes back, never both.
func (p *Pipeline) Run(ctx context.Context, v Validated) (analyses.Result, error) {
	defer scratch.Remove(v.Doc.Path)

	start := p.Now()
	metrics.IncPipelineStarted()

	res, err := p.run(ctx, v)
	metrics.ObservePipelineDurationMs(float64(p.Now().Sub(start).Milliseconds()))
	if err != nil {
		metrics.IncPipelineFailed()
		telemetry.Error("resume.pipeline.failed", map[string]any{
			"user_id": v.UserID,
			"kind":    v.Doc.Kind.String(),
			"stage":   failureStage(err),
			"error":   err.Error(),
		})
		return analyses.Result{}, err
	}
	metrics.IncPipelineCompleted()
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, v Validated) (analyses.Result, error) {
	report, err := extract.Run(ctx, v.Doc, p.Strategies(v.Doc.Kind)...)
	if err != nil {
		return analyses.Result{}, err
	}
	for _, a := range report.Attempts {
		fields := map[string]any{"user_id": v.UserID, "strategy": a.Strategy, "outcome": a.Outcome.String()}
		if a.Err != nil {
			fields["error"] = a.Err.Error()
		}
		telemetry.Info("resume.extract", fields)
		if a.Strategy == p.OCR.Name() {
			metrics.IncOCRFallback()
			telemetry.Info("resume.ocr", map[string]any{"user_id": v.UserID, "chars": len(report.Text)})
		}
	}

	result, err := p.Scorer.Score(ctx, report.Text, v.JobDescription)
	if err != nil {
		return analyses.Result{}, err
	}

	rec, err := p.Store.Persist(ctx, v.UserID, v.JobDescription, result)
	if err != nil {
		return analyses.Result{}, err
	}
	telemetry.Info("resume.analysis.saved", map[string]any{
		"user_id":     v.UserID,
		"analysis_id": rec.ID,
		"match_score": rec.Analysis.MatchScore,
	})
	return rec.Analysis, nil
}

func failureStage(err error) string {
	var (
		upstream *llm.UpstreamAnalysisError
		persist  *analyses.PersistenceError
	)
	switch {
	case errors.As(err, &upstream):
		return "scoring"
	case errors.As(err, &persist):
		return "persistence"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
