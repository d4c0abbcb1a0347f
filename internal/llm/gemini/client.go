package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"jobassist-backend/internal/llm"
	"jobassist-backend/internal/shared/telemetry"
)

// Client implements llm.Generator over the Gemini API.
type Client struct {
	client *genai.Client
}

// NewClient builds a Gemini client. baseURL overrides the API endpoint when set.
func NewClient(ctx context.Context, apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// Generate sends prompt to model and returns the reply text.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		if isQuota(err) {
			return "", fmt.Errorf("%w: gemini %s: %v", llm.ErrQuotaExceeded, model, err)
		}
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini %s: nil response", model)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini %s: no text content in response", model)
	}

	fields := map[string]any{"provider": "gemini", "model": model}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
	return text, nil
}

// isQuota reports whether err is a rate-limit or quota response.
func isQuota(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED"
	}
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429")
}

var _ llm.Generator = (*Client)(nil)
