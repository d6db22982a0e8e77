package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	f := NewFetcher("http://example.com", time.Second)

	tests := []struct {
		raw  string
		want string
	}{
		{"http://other.com/a.png", "http://other.com/a.png"},
		{"https://other.com/a.png", "https://other.com/a.png"},
		{"/media/a.png", "http://example.com/media/a.png"},
		{"media/a.png", "http://example.com/media/a.png"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := f.Resolve(tt.raw); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/a.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second)

	img, err := f.Fetch(context.Background(), "/media/a.png")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if img.Name != "a.png" || img.MIME != "image/png" || string(img.Data) != "png-bytes" {
		t.Errorf("unexpected image: %+v", img)
	}

	if _, err := f.Fetch(context.Background(), "/media/missing.png"); err == nil {
		t.Error("Fetch() of a 404 target must fail")
	}
}

func TestFetchAllSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/media/bad.png" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Second)

	images := f.FetchAll(context.Background(), []string{"/media/a.png", "/media/bad.png", "", "/media/b.png"})
	if len(images) != 2 {
		t.Fatalf("FetchAll() returned %d images, want 2", len(images))
	}
	if images[0].Name != "a.png" || images[1].Name != "b.png" {
		t.Errorf("unexpected ordering: %s, %s", images[0].Name, images[1].Name)
	}
}
