// Package pubmed implements the metasources.AuthorSource interface for the
// NCBI E-utilities efetch endpoint.
//
// The efetch body is scanned with regular expressions rather than parsed as
// XML: this source is a best-effort fallback for PMIDs that Crossref cannot
// resolve, and the extraction is deliberately kept behind the AuthorSource
// interface so a structured parser could replace it without changing callers.
package pubmed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/metasources"
)

const (
	// DefaultBaseURL is the base URL for NCBI E-utilities API.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRateLimit is the rate limit without an API key (3 requests/second).
	// With an API key, the limit increases to 10 requests/second.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 10 << 20

	// sourceName is the human-readable name for this source.
	sourceName = "PubMed"
)

// electronicAddressRe matches the corresponding-author email line that
// MEDLINE embeds in affiliation text.
var electronicAddressRe = regexp.MustCompile(`Electronic address:\s*(\S+@\S+)`)

// authorBlockRe matches repeated last-name/first-name/affiliation triples
// in the efetch body.
var authorBlockRe = regexp.MustCompile(`(?s)<Author[^>]*>.*?<LastName>([^<]+)</LastName>.*?<ForeName>([^<]+)</ForeName>.*?<AffiliationInfo>.*?<Affiliation>([^<]+)</Affiliation>`)

// Config holds the configuration for the PubMed client.
type Config struct {
	// BaseURL is the base URL for the E-utilities API.
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the NCBI API key for higher rate limits. Optional.
	APIKey string

	// Timeout is the request timeout. Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	// Defaults to DefaultRateLimit (3 req/sec) if zero.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int
}

// applyDefaults applies default values to the config.
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

// Client implements the metasources.AuthorSource interface for PubMed.
type Client struct {
	config     Config
	httpClient *metasources.HTTPClient
}

// Compile-time check that Client implements AuthorSource.
var _ metasources.AuthorSource = (*Client)(nil)

// New creates a new PubMed client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: metasources.NewHTTPClient(metasources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: "Helixir-CitationContactService/1.0 (mailto:support@helixir.io)",
		}),
	}
}

// NewWithHTTPClient creates a new PubMed client with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *metasources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// CanResolve reports true only for PMID identifiers.
func (c *Client) CanResolve(id domain.Identifier) bool {
	return id.Kind == domain.IdentifierPMID
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// Lookup fetches the article for the PMID and extracts author records.
// An "Electronic address" email yields a single synthetic record carrying
// only the email; otherwise one record per author block is synthesized.
func (c *Client) Lookup(ctx context.Context, id domain.Identifier) ([]domain.AuthorRecord, error) {
	if id.Kind != domain.IdentifierPMID {
		return nil, nil
	}

	body, err := c.efetch(ctx, id.Value)
	if err != nil {
		return nil, err
	}

	if m := electronicAddressRe.FindStringSubmatch(body); m != nil {
		return []domain.AuthorRecord{{Email: m[1]}}, nil
	}

	blocks := authorBlockRe.FindAllStringSubmatch(body, -1)
	authors := make([]domain.AuthorRecord, 0, len(blocks))
	for _, m := range blocks {
		last, first, affiliation := m[1], m[2], m[3]
		// The flattened "<fore> <last>" given name mirrors what the
		// MEDLINE records carry for display purposes.
		authors = append(authors, domain.AuthorRecord{
			Given:        first + " " + last,
			Family:       last,
			Affiliations: []string{affiliation},
		})
	}

	return authors, nil
}

// efetch retrieves the raw article body for the given PMID.
func (c *Client) efetch(ctx context.Context, pmid string) (string, error) {
	u, err := url.Parse(c.config.BaseURL + "/efetch.fcgi")
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("db", "pubmed")
	q.Set("id", pmid)
	q.Set("retmode", "xml")
	if c.config.APIKey != "" {
		q.Set("api_key", c.config.APIKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return "", domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}
