package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 10 * time.Second

// MaxBodySize caps a fetched document.
const MaxBodySize = 8 << 20

var (
	// ErrNotFound is returned for a 404 response.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and unexpected statuses.
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a body exceeds MaxBodySize.
	ErrTooLarge = errors.New("document too large")
)

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// document is the cached form of a fetched body.
type document struct {
	URL       string    `json:"url"`
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fetcher downloads documents with retries. A nil cache disables caching.
type Fetcher struct {
	http    *http.Client
	cache   *Cache
	headers map[string]string
}

// NewFetcher creates a Fetcher backed by cache.
func NewFetcher(cache *Cache) *Fetcher {
	return &Fetcher{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   cache,
		headers: map[string]string{"Accept": "application/json"},
	}
}

// WithClient replaces the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.http = c
	return f
}

// Fetch returns the body at rawURL. Cached bodies are returned unless
// refresh is set; fresh bodies are cached on success.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, refresh bool) ([]byte, error) {
	if !IsURL(rawURL) {
		return nil, fmt.Errorf("not an http(s) url: %q", rawURL)
	}

	var doc document
	if f.cache != nil && !refresh {
		if ok, _ := f.cache.Get(rawURL, &doc); ok {
			return doc.Body, nil
		}
	}

	err := RetryWithBackoff(ctx, func() error {
		body, err := f.get(ctx, rawURL)
		if err != nil {
			return err
		}
		doc = document{URL: rawURL, Body: body, FetchedAt: time.Now()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		_ = f.cache.Set(rawURL, doc)
	}
	return doc.Body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	if len(body) > MaxBodySize {
		return nil, ErrTooLarge
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
