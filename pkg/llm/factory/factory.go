package factory

import (
	"fmt"
	"time"

	"hearth-chat-be/pkg/llm"
	"hearth-chat-be/pkg/llm/gemini"
	"hearth-chat-be/pkg/llm/gradio"
	"hearth-chat-be/pkg/llm/lily"
	"hearth-chat-be/pkg/llm/media"
)

// Config carries everything the adapters need at construction time.
type Config struct {
	GeminiAPIBase string
	GeminiAPIKey  string
	GeminiModel   string
	LilyAPIURL    string
	GradioAPIURL  string

	// MediaBaseURL resolves relative /media/... image references.
	MediaBaseURL string

	ProviderTimeout time.Duration
	ImageTimeout    time.Duration
}

// Factory maps wire-level provider names onto constructed adapters. Unknown
// names are rejected at the edge.
type Factory struct {
	cfg     Config
	fetcher *media.Fetcher
}

func New(cfg Config) *Factory {
	if cfg.ProviderTimeout == 0 {
		cfg.ProviderTimeout = 20 * time.Minute
	}
	if cfg.ImageTimeout == 0 {
		cfg.ImageTimeout = 2 * time.Minute
	}
	return &Factory{
		cfg:     cfg,
		fetcher: media.NewFetcher(cfg.MediaBaseURL, cfg.ImageTimeout),
	}
}

// Resolve returns the adapter for a provider name. lilyBaseURL, when
// non-empty, overrides the configured Lily endpoint for this call (client
// supplied lilyApiUrl).
func (f *Factory) Resolve(provider, lilyBaseURL string) (llm.Provider, error) {
	switch provider {
	case llm.ProviderGemini:
		return gemini.NewProvider(f.cfg.GeminiAPIBase, f.cfg.GeminiAPIKey, f.cfg.GeminiModel,
			f.cfg.ProviderTimeout, f.fetcher), nil
	case llm.ProviderLily:
		base := f.cfg.LilyAPIURL
		if lilyBaseURL != "" {
			base = lilyBaseURL
		}
		return lily.NewProvider(base, "", f.cfg.ProviderTimeout, f.fetcher), nil
	case llm.ProviderGradio:
		return gradio.NewProvider(f.cfg.GradioAPIURL, "", f.cfg.ProviderTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %q", provider)
	}
}

// Supports reports whether the provider can consume document references.
func Supports(provider string, documents bool) bool {
	if !documents {
		return true
	}
	return provider == llm.ProviderLily
}
