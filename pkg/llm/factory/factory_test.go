package factory

import (
	"testing"
	"time"

	"hearth-chat-be/pkg/llm"
)

func TestResolve(t *testing.T) {
	f := New(Config{
		GeminiAPIBase: "http://gemini.local",
		GeminiAPIKey:  "k",
		LilyAPIURL:    "http://lily.local",
		GradioAPIURL:  "http://gradio.local",
		MediaBaseURL:  "http://media.local",
	})

	for _, name := range []string{llm.ProviderGemini, llm.ProviderLily, llm.ProviderGradio} {
		if _, err := f.Resolve(name, ""); err != nil {
			t.Errorf("Resolve(%q) error = %v", name, err)
		}
	}

	if _, err := f.Resolve("claude", ""); err == nil {
		t.Error("Resolve() accepted an unknown provider")
	}
}

func TestNewAppliesDefaultTimeouts(t *testing.T) {
	f := New(Config{})
	if f.cfg.ProviderTimeout != 20*time.Minute {
		t.Errorf("ProviderTimeout = %v", f.cfg.ProviderTimeout)
	}
	if f.cfg.ImageTimeout != 2*time.Minute {
		t.Errorf("ImageTimeout = %v", f.cfg.ImageTimeout)
	}
}

func TestSupports(t *testing.T) {
	tests := []struct {
		provider  string
		documents bool
		want      bool
	}{
		{llm.ProviderLily, true, true},
		{llm.ProviderGemini, true, false},
		{llm.ProviderGradio, true, false},
		{llm.ProviderGemini, false, true},
	}
	for _, tt := range tests {
		if got := Supports(tt.provider, tt.documents); got != tt.want {
			t.Errorf("Supports(%q, %v) = %v, want %v", tt.provider, tt.documents, got, tt.want)
		}
	}
}
