// Package brave provides a client for the Brave Search web search API.
package brave

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

const defaultBaseURL = "https://api.search.brave.com/res/v1"

// maxCount is the largest page size the web search endpoint accepts.
const maxCount = 20

// Client performs Brave web searches.
type Client interface {
	WebSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest describes a single web search.
type SearchRequest struct {
	Query      string
	Count      int    // 1..20; out of range values are clamped
	Country    string // e.g. "jp"
	SearchLang string // e.g. "ja"
}

// SearchResponse is the subset of the Brave response we use.
type SearchResponse struct {
	Web *WebResults `json:"web,omitempty"`
}

// WebResults holds the organic web results.
type WebResults struct {
	Results []WebResult `json:"results"`
}

// WebResult is a single organic hit.
type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Results returns the organic web results, or nil when the section is absent.
func (r *SearchResponse) Results() []WebResult {
	if r == nil || r.Web == nil {
		return nil
	}
	return r.Web.Results
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

// NewClient creates a Brave Search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) WebSearch(ctx context.Context, sr SearchRequest) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("q", sr.Query)
	params.Set("count", strconv.Itoa(clampCount(sr.Count)))
	if sr.Country != "" {
		params.Set("country", sr.Country)
	}
	if sr.SearchLang != "" {
		params.Set("search_lang", sr.SearchLang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/web/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "brave: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "brave: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "brave: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("brave: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "brave: unmarshal response")
	}

	return &result, nil
}

func clampCount(n int) int {
	switch {
	case n <= 0:
		return 10
	case n > maxCount:
		return maxCount
	default:
		return n
	}
}
