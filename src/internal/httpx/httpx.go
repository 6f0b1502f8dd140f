package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Doer is the minimal HTTP client interface used across packages.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// UserAgent identifies shelf to the bibliographic APIs.
const UserAgent = "shelf/0.1 (personal book catalog; +https://openlibrary.org/developers/api)"

// SetUA sets the UserAgent header on the request.
func SetUA(req *http.Request) {
	if req != nil {
		req.Header.Set("User-Agent", UserAgent)
	}
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("http %d: %s", e.Code, e.Body) }

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher performs rate-limited JSON GETs with bounded retries.
type Fetcher struct {
	Client  Doer
	Limiter *rate.Limiter
	Retries int
	// Backoff is the wait before the first retry; it doubles after each attempt.
	Backoff time.Duration
}

// NewFetcher returns a Fetcher allowing rps requests per second. rps <= 0 disables limiting.
func NewFetcher(client Doer, rps float64, retries int) *Fetcher {
	lim := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{Client: client, Limiter: lim, Retries: retries, Backoff: time.Second}
}

// GetJSON fetches endpoint and decodes the body into target.
func (f *Fetcher) GetJSON(ctx context.Context, endpoint string, target any) error {
	body, err := f.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// Get fetches endpoint and returns the raw body of a 200 response.
func (f *Fetcher) Get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= f.Retries; i++ {
		if i > 0 {
			wait := f.Backoff * time.Duration(1<<uint(i-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if f.Limiter != nil {
			if err := f.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		body, err := f.once(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if se, ok := err.(*StatusError); ok && !se.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", f.Retries, lastErr)
}

func (f *Fetcher) once(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	SetUA(req)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	return io.ReadAll(resp.Body)
}
