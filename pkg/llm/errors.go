package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	// ErrTimeout marks a provider call that exceeded its deadline.
	ErrTimeout = errors.New("provider timeout")

	// ErrNetwork marks DNS/TCP level failures before any HTTP status was
	// received.
	ErrNetwork = errors.New("provider network failure")

	// ErrMalformed marks an undecodable or empty provider response body.
	ErrMalformed = errors.New("malformed provider response")
)

// UpstreamError is a non-2xx HTTP response from a provider. 4xx responses
// are never retried; retry policy for 5xx is the orchestrator's call.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider upstream error: status %d: %s", e.Status, e.Detail)
}

// TrimDetail shortens an upstream error body to something safe to echo to
// a client.
func TrimDetail(body []byte) string {
	const maxDetail = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxDetail {
		return s[:maxDetail]
	}
	return s
}

// ClassifyTransportError maps an http.Client error to the provider error
// taxonomy, preferring the call context's own verdict.
func ClassifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
