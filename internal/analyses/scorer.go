package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"jobassist-backend/internal/llm"
)

// Completer asks a ranked list of models for a reply that accept takes.
type Completer interface {
	Complete(ctx context.Context, prompt string, accept func(reply string) error) (string, error)
}

// Scorer turns extracted resume text and a job description into a Result.
type Scorer struct {
	LLM Completer
}

// Score builds the analysis prompt and returns the first reply that parses.
// Exhausting every model yields an *llm.UpstreamAnalysisError.
func (s *Scorer) Score(ctx context.Context, resumeText, jobDescription string) (Result, error) {
	var parsed Result
	_, err := s.LLM.Complete(ctx, llm.AnalysisPrompt(resumeText, jobDescription), func(reply string) error {
		r, err := ParseResult(reply)
		if err != nil {
			return err
		}
		parsed = r
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return parsed, nil
}

type rawResult struct {
	MatchScore            *float64  `json:"matchScore"`
	Strengths             *[]string `json:"strengths"`
	Gaps                  *[]string `json:"gaps"`
	Improvements          *[]string `json:"improvements"`
	OptimizedSection      *string   `json:"optimizedSection"`
	BeforeAfterComparison *string   `json:"beforeAfterComparison"`
	KeywordMatchScore     *float64  `json:"keywordMatchScore"`
}

// ParseResult decodes a model reply, optionally wrapped in a markdown fence.
// Every field must be present; scores are rounded and clamped to 0..100.
func ParseResult(reply string) (Result, error) {
	var raw rawResult
	if err := json.Unmarshal([]byte(llm.StripFences(reply)), &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: missing %s", ErrMalformed, field)
	}
	switch {
	case raw.MatchScore == nil:
		return Result{}, missing("matchScore")
	case raw.Strengths == nil:
		return Result{}, missing("strengths")
	case raw.Gaps == nil:
		return Result{}, missing("gaps")
	case raw.Improvements == nil:
		return Result{}, missing("improvements")
	case raw.OptimizedSection == nil:
		return Result{}, missing("optimizedSection")
	case raw.BeforeAfterComparison == nil:
		return Result{}, missing("beforeAfterComparison")
	case raw.KeywordMatchScore == nil:
		return Result{}, missing("keywordMatchScore")
	}

	return Result{
		MatchScore:            clampScore(*raw.MatchScore),
		Strengths:             *raw.Strengths,
		Gaps:                  *raw.Gaps,
		Improvements:          *raw.Improvements,
		OptimizedSection:      *raw.OptimizedSection,
		BeforeAfterComparison: *raw.BeforeAfterComparison,
		KeywordMatchScore:     clampScore(*raw.KeywordMatchScore),
	}, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
