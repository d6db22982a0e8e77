package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hearth-chat-be/pkg/llm"
	"hearth-chat-be/pkg/llm/media"
)

// Provider calls the hosted generateContent endpoint. Exactly one inline
// image (the first of the list) is supported per call.
type Provider struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
	Client       *http.Client
	Fetcher      *media.Fetcher
}

var _ llm.Provider = &Provider{}

func NewProvider(baseURL, apiKey, defaultModel string, timeout time.Duration, fetcher *media.Fetcher) *Provider {
	return &Provider{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		Client: &http.Client{
			Timeout: timeout,
		},
		Fetcher: fetcher,
	}
}

// --- Request/Response structs (internal to this package) ---

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *Provider) Invoke(ctx context.Context, req llm.Request) (*llm.Result, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel
	}

	parts := []part{{Text: req.Prompt}}
	if len(req.ImageURLs) > 0 {
		images := p.Fetcher.FetchAll(ctx, req.ImageURLs[:1])
		if len(images) > 0 {
			parts = append(parts, part{InlineData: &inlineData{
				MimeType: images[0].MIME,
				Data:     base64.StdEncoding.EncodeToString(images[0].Data),
			}})
		}
	}

	payload := generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: req.MaxTokensOrDefault(),
			Temperature:     req.TemperatureOrDefault(),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.BaseURL, model, p.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, llm.ClassifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.UpstreamError{Status: resp.StatusCode, Detail: llm.TrimDetail(respBody)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformed, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates", llm.ErrMalformed)
	}

	return &llm.Result{
		Text:        parsed.Candidates[0].Content.Parts[0].Text,
		ProviderTag: llm.ProviderGemini,
		DisplayName: "Gemini",
		Kind:        "google",
	}, nil
}
