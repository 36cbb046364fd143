// Google Books API documentation: https://developers.google.com/books/docs/v1/using
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"

	// Google Books allows roughly 1 request per second per user without
	// an API key; keep a small burst for concurrent request handlers.
	rateLimit = 5
	rateBurst = 10
)

var (
	// ErrNotFound means the catalog has no entry for the ISBN. Absence,
	// not failure: callers must not treat it as retryable and must not
	// cache it either.
	ErrNotFound = errors.New("book not found in catalog")

	// ErrUnavailable means the catalog could not be reached or answered
	// with a transient failure. Callers may retry on the next request.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Client performs ISBN lookups against the Google Books volumes API.
// Lookups are pure reads: the client never mutates external state.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a catalog client with a bounded per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Lookup fetches metadata for a single ISBN. The ISBN is normalized
// before the request. Outcomes map onto the error taxonomy:
//   - match found        -> Metadata, nil
//   - catalog has no entry -> nil, ErrNotFound
//   - network/timeout/429/5xx -> nil, ErrUnavailable (wrapped)
func (c *Client) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	normalized, err := NormalizeISBN(isbn)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ErrUnavailable, err)
	}

	params := url.Values{}
	params.Set("q", "isbn:"+normalized)
	fullURL := c.baseURL + "/volumes?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "BookHub/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// covers connection failures and client timeouts
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var response volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %v", ErrUnavailable, err)
	}

	if response.TotalItems == 0 || len(response.Items) == 0 {
		return nil, ErrNotFound
	}

	return metadataFromVolume(normalized, response.Items[0].VolumeInfo), nil
}
