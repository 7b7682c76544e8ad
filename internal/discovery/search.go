package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/helixir/citation-contact-service/internal/domain"
)

const (
	// DefaultSearchBaseURL is the Google Custom Search endpoint.
	DefaultSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

	// DefaultSearchTimeout bounds a single search request.
	DefaultSearchTimeout = 12 * time.Second

	// DefaultResultsPerQuery is the number of results requested per query.
	DefaultResultsPerQuery = 5

	searchProviderName = "CustomSearch"

	maxSearchResponseBytes = 10 << 20
)

// SearchItem is one result returned by the search provider.
type SearchItem struct {
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// searchResponse is the provider's response envelope.
type searchResponse struct {
	Items []SearchItem `json:"items"`
}

// SearchClient issues queries against a Custom Search-style provider.
type SearchClient struct {
	baseURL    string
	apiKey     string
	engineID   string
	httpClient *http.Client
}

// SearchClientConfig configures a SearchClient.
type SearchClientConfig struct {
	// BaseURL is the provider endpoint. Defaults to DefaultSearchBaseURL.
	BaseURL string

	// APIKey is the provider API key.
	APIKey string

	// EngineID is the custom search engine identifier.
	EngineID string

	// Timeout bounds each request. Defaults to DefaultSearchTimeout.
	Timeout time.Duration
}

// NewSearchClient creates a search client.
func NewSearchClient(cfg SearchClientConfig) *SearchClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultSearchBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultSearchTimeout
	}
	return &SearchClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Configured reports whether both the API key and the engine id are set.
// An unconfigured client disables discovery rather than failing it.
func (c *SearchClient) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

// Search runs one query and returns the result items. numResults is
// clamped to the provider's 1-10 range.
func (c *SearchClient) Search(ctx context.Context, query string, numResults int) ([]SearchItem, error) {
	if numResults < 1 {
		numResults = 1
	}
	if numResults > 10 {
		numResults = 10
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(numResults))
	params.Set("safe", "off")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxSearchResponseBytes))
		return nil, domain.NewExternalAPIError(searchProviderName, resp.StatusCode, string(body), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result.Items, nil
}
