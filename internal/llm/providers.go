package llm

import (
	"fmt"
	"strings"
)

// ParseModels turns configured entries such as "gemini-2.0-flash" or
// "openai:gpt-4o-mini" into a ranked list. An entry's prefix selects the
// provider; entries without one use defaultProvider.
func ParseModels(entries []string, defaultProvider string, providers map[string]Generator) ([]ModelRef, error) {
	out := make([]ModelRef, 0, len(entries))
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		provider, name := defaultProvider, entry
		if p, n, ok := strings.Cut(entry, ":"); ok {
			provider, name = strings.ToLower(strings.TrimSpace(p)), strings.TrimSpace(n)
		}
		gen, ok := providers[provider]
		if !ok || gen == nil {
			return nil, fmt.Errorf("model %q: provider %q not configured", entry, provider)
		}
		out = append(out, ModelRef{Name: name, Gen: gen})
	}
	if len(out) == 0 {
		return nil, ErrNoModels
	}
	return out, nil
}
