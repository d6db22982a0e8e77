package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Image is a dereferenced attachment ready to forward to a provider.
type Image struct {
	Name string
	MIME string
	Data []byte
}

// Fetcher dereferences message image URLs. Relative /media/... paths are
// resolved against the configured base URL before fetching.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewFetcher(baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Resolve turns a possibly-relative image URL into an absolute one.
func (f *Fetcher) Resolve(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if u, err := url.Parse(rawURL); err == nil && u.IsAbs() {
		return rawURL
	}
	if strings.HasPrefix(rawURL, "/") {
		return f.BaseURL + rawURL
	}
	return f.BaseURL + "/" + rawURL
}

// Fetch downloads a single image.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	target := f.Resolve(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image %s: status %d", target, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", target, err)
	}

	return &Image{
		Name: path.Base(target),
		MIME: imageMIME(resp.Header.Get("Content-Type"), target),
		Data: data,
	}, nil
}

// FetchAll downloads every reachable image; failures skip that image so the
// provider call can proceed with what remains.
func (f *Fetcher) FetchAll(ctx context.Context, rawURLs []string) []*Image {
	images := make([]*Image, 0, len(rawURLs))
	for _, u := range rawURLs {
		if u == "" {
			continue
		}
		img, err := f.Fetch(ctx, u)
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images
}

func imageMIME(contentType, target string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			return mt
		}
	}
	if mt := mime.TypeByExtension(path.Ext(target)); mt != "" {
		return mt
	}
	return "image/png"
}
