package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/helixir/citation-contact-service/internal/domain"
)

const (
	// DefaultFetchTimeout bounds a single page fetch.
	DefaultFetchTimeout = 12 * time.Second

	// fetchUserAgent identifies the service when scraping result pages.
	fetchUserAgent = "Mozilla/5.0 (compatible; Helixir-ContactDiscovery/1.0)"

	// maxPageBytes bounds how much of a fetched page is read.
	maxPageBytes = 2 << 20
)

// PageFetcher retrieves the body of a search result page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPPageFetcher fetches pages over HTTP with a bounded timeout and a
// fixed identifying User-Agent.
type HTTPPageFetcher struct {
	client *http.Client
}

// NewHTTPPageFetcher creates a page fetcher. A zero timeout uses
// DefaultFetchTimeout.
func NewHTTPPageFetcher(timeout time.Duration) *HTTPPageFetcher {
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPPageFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch implements PageFetcher.
func (f *HTTPPageFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewExternalAPIError("page", resp.StatusCode, pageURL, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}
