package lily

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hearth-chat-be/pkg/llm"
	"hearth-chat-be/pkg/llm/media"
)

func TestInvokeGenerate(t *testing.T) {
	var gotPrompt, gotMaxLength, gotTemperature string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			http.NotFound(w, r)
			return
		}
		r.ParseMultipartForm(1 << 20)
		gotPrompt = r.FormValue("prompt")
		gotMaxLength = r.FormValue("max_length")
		gotTemperature = r.FormValue("temperature")
		w.Write([]byte(`{"generated_text":"답변"}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "", time.Second, media.NewFetcher(srv.URL, time.Second))

	res, err := p.Invoke(context.Background(), llm.Request{Prompt: "질문"})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if gotPrompt != "질문" || gotMaxLength != "1024" || gotTemperature != "0.7" {
		t.Errorf("form fields = (%q, %q, %q)", gotPrompt, gotMaxLength, gotTemperature)
	}
	if res.Text != "답변" || res.DisplayName != "Lily LLM" || res.ProviderTag != llm.ProviderLily {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestInvokeGenerateAttachesAllImages(t *testing.T) {
	var imageGets int
	var imageFields []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/a.png", "/media/b.png":
			imageGets++
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("img"))
		case "/generate":
			r.ParseMultipartForm(1 << 20)
			for name := range r.MultipartForm.File {
				imageFields = append(imageFields, name)
			}
			w.Write([]byte(`{"generated_text":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "", time.Second, media.NewFetcher(srv.URL, time.Second))
	_, err := p.Invoke(context.Background(), llm.Request{
		Prompt:    "설명",
		ImageURLs: []string{"/media/a.png", "/media/b.png"},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if imageGets != 2 {
		t.Errorf("image GETs = %d, want both images fetched", imageGets)
	}
	if len(imageFields) != 2 {
		t.Fatalf("image parts = %v, want image1 and image2", imageFields)
	}
	found := map[string]bool{}
	for _, f := range imageFields {
		found[f] = true
	}
	if !found["image1"] || !found["image2"] {
		t.Errorf("image parts = %v, want image1 and image2", imageFields)
	}
}

func TestInvokeRAG(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rag/generate" {
			http.NotFound(w, r)
			return
		}
		r.ParseForm()
		gotForm = map[string]string{
			"query":       r.FormValue("query"),
			"user_id":     r.FormValue("user_id"),
			"document_id": r.FormValue("document_id"),
			"max_length":  r.FormValue("max_length"),
		}
		w.Write([]byte(`{"response":"문서 기반 답변"}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "", time.Second, media.NewFetcher(srv.URL, time.Second))

	res, err := p.Invoke(context.Background(), llm.Request{
		Prompt:    "요약해줘",
		UserID:    "42",
		Documents: []llm.Document{{DocumentID: "doc42"}},
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if gotForm["query"] != "요약해줘" || gotForm["user_id"] != "42" || gotForm["document_id"] != "doc42" || gotForm["max_length"] != "1024" {
		t.Errorf("form = %v", gotForm)
	}
	if res.DisplayName != "Lily LLM (RAG)" || res.Text != "문서 기반 답변" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestInvokeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "", time.Second, media.NewFetcher(srv.URL, time.Second))
	_, err := p.Invoke(context.Background(), llm.Request{Prompt: "hi"})

	var upstream *llm.UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusServiceUnavailable {
		t.Errorf("error = %v, want upstream 503", err)
	}
}

func TestInvokeMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text":""}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "", time.Second, media.NewFetcher(srv.URL, time.Second))
	_, err := p.Invoke(context.Background(), llm.Request{Prompt: "hi"})
	if !errors.Is(err, llm.ErrMalformed) {
		t.Errorf("error = %v, want ErrMalformed", err)
	}
}
