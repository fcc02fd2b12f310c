// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed searches and fetches article records from the NCBI
// E-utilities endpoints and parses the efetch XML into ArticleRecords.
package pubmed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/evidence-review/pkg/types"
)

// eutilsBase is the E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const (
	database       = "pubmed"
	searchEndpoint = "esearch.fcgi"
	fetchEndpoint  = "efetch.fcgi"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 32 << 20
)

// Client talks to the E-utilities search and fetch endpoints. Each method
// makes at most one HTTP attempt; retry policy belongs to the caller.
type Client struct {
	http      *http.Client
	apiKey    string
	userAgent string
	logger    *slog.Logger
}

// NewClient returns a Client for cfg. A zero timeout is replaced with
// types.DefaultHTTPTimeout so no request can block forever. A nil logger
// uses slog.Default().
func NewClient(cfg types.LiteratureConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultHTTPTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		apiKey:    cfg.APIKey,
		userAgent: ua,
		logger:    logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests and by
// callers that share a transport.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc.Timeout <= 0 {
		hc.Timeout = types.DefaultHTTPTimeout
	}
	c.http = hc
	return c
}

// esearch XML structures.
type searchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDs     []string `xml:"IdList>Id"`
	Error   string   `xml:"ERROR"`
}

// Search returns up to limit article ids matching query, in the order the
// backend ranks them. An empty query returns no ids without a network call;
// zero hits is a normal, non-error outcome.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = types.DefaultMaxResults
	}

	params := url.Values{
		"db":      {database},
		"term":    {query},
		"retmode": {"xml"},
		"retmax":  {strconv.Itoa(limit)},
	}

	body, err := c.get(ctx, searchEndpoint, params)
	if err != nil {
		return nil, err
	}

	var sr searchResult
	if err := xml.Unmarshal(body, &sr); err != nil {
		return nil, &ParseError{Endpoint: searchEndpoint, Err: err}
	}
	if sr.Error != "" {
		c.logger.Warn("esearch reported an error", "error", sr.Error, "query", query)
	}

	ids := make([]string, 0, len(sr.IDs))
	for _, id := range sr.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	c.logger.Debug("esearch complete", "query", query, "count", sr.Count, "returned", len(ids))
	return ids, nil
}

// Fetch retrieves the raw efetch XML for ids in a single batched request.
// An empty id list returns nil without a network call, so the backend is
// never asked for a default result set.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"db":      {database},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	return c.get(ctx, fetchEndpoint, params)
}

// get issues one GET against endpoint and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := eutilsBase + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RetrievalError{Endpoint: endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("eutils request", "endpoint", endpoint, "url", reqURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetrievalError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &RetrievalError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &RetrievalError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}
