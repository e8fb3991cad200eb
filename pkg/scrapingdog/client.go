// Package scrapingdog provides a client for the Scrapingdog Google SERP API.
package scrapingdog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.scrapingdog.com"

// Client performs Google SERP lookups through the Scrapingdog proxy.
type Client interface {
	GoogleSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest describes a single SERP query.
type SearchRequest struct {
	Query    string
	Num      int
	Country  string // gl
	Language string // hl
}

// SearchResponse is the subset of the SERP payload we use.
type SearchResponse struct {
	OrganicResults []OrganicResult `json:"organic_results"`
}

// OrganicResult is a single organic hit.
type OrganicResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Scrapingdog client. SERP scraping is slow, so the
// default HTTP timeout is longer than the other search clients.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GoogleSearch(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", sr.Query)
	params.Set("device", "desktop")
	if sr.Num > 0 {
		params.Set("num", strconv.Itoa(sr.Num))
	}
	if sr.Country != "" {
		params.Set("gl", sr.Country)
	}
	if sr.Language != "" {
		params.Set("hl", sr.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/google?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrapingdog: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrapingdog: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "scrapingdog: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("scrapingdog: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "scrapingdog: unmarshal response")
	}

	return &result, nil
}
