package gradio

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hearth-chat-be/pkg/llm"
)

func TestInvoke(t *testing.T) {
	var gotReq predictRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/predict" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`{"data":["생성된 텍스트", 0.12]}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "my-model", time.Second)

	res, err := p.Invoke(context.Background(), llm.Request{Prompt: "안녕"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(gotReq.Data) != 7 {
		t.Fatalf("data slots = %d, want 7", len(gotReq.Data))
	}
	if gotReq.Data[0] != "안녕" || gotReq.Data[1] != "my-model" {
		t.Errorf("prompt/model slots = %v, %v", gotReq.Data[0], gotReq.Data[1])
	}

	if res.Text != "생성된 텍스트" || res.ProviderTag != llm.ProviderGradio || res.DisplayName != "AI Hub" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestInvokeEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "m", time.Second)
	_, err := p.Invoke(context.Background(), llm.Request{Prompt: "hi"})
	if !errors.Is(err, llm.ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}

func TestInvokeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "m", time.Second)
	_, err := p.Invoke(context.Background(), llm.Request{Prompt: "hi"})

	var upstream *llm.UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusBadGateway {
		t.Errorf("error = %v, want upstream 502", err)
	}
}
