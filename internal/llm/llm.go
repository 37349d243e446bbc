// Package llm holds the narrative-generation providers. The pipeline never
// touches these; they consume its finished ProcessingResult via the report
// layer.
package llm

import (
	"context"
	"strings"

	"tweetlens/internal/config"
)

// Provider generates one narrative completion for a prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// FromConfig picks a provider. "none" (and anything unrecognized) returns
// nil, which callers treat as narrative-sections-disabled.
func FromConfig(cfg config.LLMConfig) Provider {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey)
	case "anthropic":
		return NewAnthropic(cfg.Model, cfg.APIKey)
	}
	return nil
}
