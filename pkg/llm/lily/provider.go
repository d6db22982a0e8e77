package lily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hearth-chat-be/pkg/llm"
	"hearth-chat-be/pkg/llm/media"
)

// Provider calls a self-hosted Lily LLM server. Plain generation goes
// through /generate as multipart (all images attached); when the request
// carries documents the /rag/generate form endpoint is used instead.
type Provider struct {
	BaseURL      string
	DefaultModel string
	Client       *http.Client
	Fetcher      *media.Fetcher
}

var _ llm.Provider = &Provider{}

func NewProvider(baseURL, defaultModel string, timeout time.Duration, fetcher *media.Fetcher) *Provider {
	return &Provider{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		DefaultModel: defaultModel,
		Client: &http.Client{
			Timeout: timeout,
		},
		Fetcher: fetcher,
	}
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

type ragResponse struct {
	Response string `json:"response"`
}

func (p *Provider) Invoke(ctx context.Context, req llm.Request) (*llm.Result, error) {
	if len(req.Documents) > 0 {
		return p.invokeRAG(ctx, req)
	}
	return p.invokeGenerate(ctx, req)
}

func (p *Provider) invokeGenerate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	_ = writer.WriteField("prompt", req.Prompt)
	_ = writer.WriteField("max_length", strconv.Itoa(req.MaxTokensOrDefault()))
	_ = writer.WriteField("temperature", formatFloat(req.TemperatureOrDefault()))

	for i, img := range p.Fetcher.FetchAll(ctx, req.ImageURLs) {
		part, err := writer.CreateFormFile(fmt.Sprintf("image%d", i+1), img.Name)
		if err != nil {
			return nil, fmt.Errorf("create image part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, fmt.Errorf("write image part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/generate", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	respBody, err := p.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformed, err)
	}
	if parsed.GeneratedText == "" {
		return nil, fmt.Errorf("%w: empty generated_text", llm.ErrMalformed)
	}

	return &llm.Result{
		Text:        parsed.GeneratedText,
		ProviderTag: llm.ProviderLily,
		DisplayName: "Lily LLM",
		Kind:        "lily",
	}, nil
}

func (p *Provider) invokeRAG(ctx context.Context, req llm.Request) (*llm.Result, error) {
	form := url.Values{}
	form.Set("query", req.Prompt)
	form.Set("user_id", req.UserID)
	form.Set("document_id", req.Documents[0].DocumentID)
	form.Set("max_length", strconv.Itoa(req.MaxTokensOrDefault()))
	form.Set("temperature", formatFloat(req.TemperatureOrDefault()))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/rag/generate",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	respBody, err := p.do(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	var parsed ragResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrMalformed, err)
	}
	if parsed.Response == "" {
		return nil, fmt.Errorf("%w: empty response", llm.ErrMalformed)
	}

	return &llm.Result{
		Text:        parsed.Response,
		ProviderTag: llm.ProviderLily,
		DisplayName: "Lily LLM (RAG)",
		Kind:        "lily",
	}, nil
}

func (p *Provider) do(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, llm.ClassifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.UpstreamError{Status: resp.StatusCode, Detail: llm.TrimDetail(body)}
	}
	return body, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
