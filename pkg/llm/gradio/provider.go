package gradio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hearth-chat-be/pkg/llm"
)

// Provider calls a Gradio-style remote inference hub through its
// /api/predict endpoint. Images and documents are not supported; the prompt
// composer explains that to the user instead.
type Provider struct {
	BaseURL      string
	DefaultModel string
	Client       *http.Client
}

var _ llm.Provider = &Provider{}

func NewProvider(baseURL, defaultModel string, timeout time.Duration) *Provider {
	return &Provider{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		DefaultModel: defaultModel,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type predictRequest struct {
	Data []interface{} `json:"data"`
}

type predictResponse struct {
	Data []json.RawMessage `json:"data"`
}

func (p *Provider) Invoke(ctx context.Context, req llm.Request) (*llm.Result, error) {
	model := req.Model
	if model == "" {
		model = p.DefaultModel
	}

	payload := predictRequest{
		Data: []interface{}{
			req.Prompt,
			model,
			req.MaxTokensOrDefault(), // max_new_tokens
			req.TemperatureOrDefault(),
			0.9,  // top_p
			1.1,  // repetition_penalty
			true, // do_sample
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/predict", bytes.NewBuffer(body))
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

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformed, err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("%w: empty data", llm.ErrMalformed)
	}

	var text string
	if err := json.Unmarshal(parsed.Data[0], &text); err != nil {
		return nil, fmt.Errorf("%w: first data element is not text", llm.ErrMalformed)
	}

	return &llm.Result{
		Text:        text,
		ProviderTag: llm.ProviderGradio,
		DisplayName: "AI Hub",
		Kind:        "gradio",
	}, nil
}
