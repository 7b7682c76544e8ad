// Package crossref implements the metasources.AuthorSource interface for
// the Crossref works API.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/metasources"
)

const (
	// DefaultBaseURL is the default Crossref API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// Crossref's polite pool (with a mailto in the User-Agent) tolerates this.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 10 << 20

	// sourceName is the human-readable name for this source.
	sourceName = "Crossref"
)

// Config holds configuration for the Crossref client.
type Config struct {
	// BaseURL is the Crossref API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Email is the contact email advertised in the User-Agent for the
	// polite pool.
	Email string

	// Timeout is the request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client implements the metasources.AuthorSource interface for Crossref.
type Client struct {
	config     Config
	httpClient *metasources.HTTPClient
}

// Compile-time check that Client implements AuthorSource.
var _ metasources.AuthorSource = (*Client)(nil)

// New creates a new Crossref client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "Helixir-CitationContactService/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return &Client{
		config: cfg,
		httpClient: metasources.NewHTTPClient(metasources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: userAgent,
		}),
	}
}

// NewWithHTTPClient creates a new Crossref client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *metasources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// CanResolve reports true for every identifier kind: PMID lookups key the
// works endpoint with their "PMID:<digits>" form and come back empty, which
// lets the resolver chain fall through to PubMed.
func (c *Client) CanResolve(domain.Identifier) bool {
	return true
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// Lookup fetches the work keyed by the identifier and returns its author
// list in source order.
func (c *Client) Lookup(ctx context.Context, id domain.Identifier) ([]domain.AuthorRecord, error) {
	lookupURL := c.config.BaseURL + "/works/" + url.PathEscape(id.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var works worksResponse
	if err := json.Unmarshal(body, &works); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	authors := make([]domain.AuthorRecord, 0, len(works.Message.Author))
	for _, a := range works.Message.Author {
		record := domain.AuthorRecord{
			Given:  a.Given,
			Family: a.Family,
			Email:  a.Email,
		}
		for _, aff := range a.Affiliation {
			if aff.Name != "" {
				record.Affiliations = append(record.Affiliations, aff.Name)
			}
		}
		authors = append(authors, record)
	}

	return authors, nil
}
