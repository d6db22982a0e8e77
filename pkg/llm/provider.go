package llm

import "context"

// Request is the provider-agnostic description of one generation call.
type Request struct {
	Prompt    string
	ImageURLs []string
	Documents []Document
	UserID    string

	Model       string
	MaxTokens   int
	Temperature float64
}

// Document is an uploaded-document reference, resolved by RAG-capable
// providers only.
type Document struct {
	DocumentID string `json:"document_id"`
}

// Result is a successful generation.
type Result struct {
	Text        string
	ProviderTag string
	DisplayName string
	Kind        string
}

// Provider is the uniform call surface over the LLM backends.
type Provider interface {
	Invoke(ctx context.Context, req Request) (*Result, error)
}

const (
	ProviderGemini = "gemini"
	ProviderLily   = "lily"
	ProviderGradio = "gradio"

	// ProviderError tags the synthesized reply persisted when an adapter
	// call fails.
	ProviderError = "error"
)

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.7
)

// MaxTokensOrDefault returns the requested token budget or the shared
// default.
func (r *Request) MaxTokensOrDefault() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

// TemperatureOrDefault returns the requested temperature or the shared
// default.
func (r *Request) TemperatureOrDefault() float64 {
	if r.Temperature > 0 {
		return r.Temperature
	}
	return defaultTemperature
}
