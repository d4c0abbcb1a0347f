package llm

import (
	"context"
	"errors"
	"fmt"

	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/telemetry"
)

// Generator sends one prompt to one model of a provider and returns the reply text.
// Providers wrap ErrQuotaExceeded when the model refuses for rate or quota reasons.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

var (
	// ErrQuotaExceeded marks a rate-limit or quota response.
	ErrQuotaExceeded = errors.New("model quota exceeded")
	// ErrNoModels is returned when the ranked list is empty.
	ErrNoModels = errors.New("no models configured")
)

// ModelRef binds a model identifier to the provider that serves it.
type ModelRef struct {
	Name string
	Gen  Generator
}

// UpstreamAnalysisError is returned once every ranked model has been tried.
type UpstreamAnalysisError struct {
	Model string
	Err   error
}

func (e *UpstreamAnalysisError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("all models exhausted: %v", e.Err)
	}
	return fmt.Sprintf("all models exhausted, last %s: %v", e.Model, e.Err)
}

func (e *UpstreamAnalysisError) Unwrap() error {
	return e.Err
}

// Ranked tries an ordered list of models, each exactly once.
type Ranked struct {
	Models []ModelRef
}

// Complete asks each model in order until one returns a reply that accept
// takes. A quota response moves on silently. Any other failure, including a
// reply accept rejects, is remembered and also moves on. When no model is
// left the last failure is returned inside an UpstreamAnalysisError.
// A nil accept takes every reply.
func (r *Ranked) Complete(ctx context.Context, prompt string, accept func(reply string) error) (string, error) {
	if r == nil || len(r.Models) == 0 {
		return "", &UpstreamAnalysisError{Err: ErrNoModels}
	}

	var (
		lastErr   error
		lastModel string
	)
	for i, m := range r.Models {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if i > 0 {
			metrics.IncModelFallback()
		}
		lastModel = m.Name

		telemetry.Info("llm.attempt", map[string]any{"model": m.Name, "rank": i})
		reply, err := m.Gen.Generate(ctx, m.Name, prompt)
		if err != nil {
			if errors.Is(err, ErrQuotaExceeded) {
				telemetry.Warn("llm.fallback", map[string]any{"model": m.Name, "reason": "quota"})
				lastErr = err
				continue
			}
			telemetry.Warn("llm.fallback", map[string]any{"model": m.Name, "reason": "error", "error": err.Error()})
			lastErr = fmt.Errorf("failed with %s: %w", m.Name, err)
			continue
		}
		if accept != nil {
			if err := accept(reply); err != nil {
				telemetry.Warn("llm.fallback", map[string]any{"model": m.Name, "reason": "malformed", "error": err.Error()})
				lastErr = fmt.Errorf("failed with %s: %w", m.Name, err)
				continue
			}
		}
		return reply, nil
	}
	return "", &UpstreamAnalysisError{Model: lastModel, Err: lastErr}
}
