// Package fetch downloads candidate pages for scoring.
package fetch

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/resilience"
)

// DefaultUserAgent mimics a desktop browser; many corporate sites refuse
// obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const (
	defaultTimeout       = 15 * time.Second
	defaultMaxBodyBytes  = 512 * 1024
	defaultMaxConcurrent = 10
)

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	MaxBodyBytes  int64
	MaxConcurrent int
	// RateLimitRPS is the initial cap on requests per second across all
	// fetches; it adapts to 429 responses. Zero disables limiting.
	RateLimitRPS float64
}

// Fetcher retrieves raw page bodies over HTTP.
type Fetcher struct {
	client  *http.Client
	opts    Options
	limiter *adaptiveLimiter
}

// New creates a Fetcher. A nil client gets a dedicated transport with
// dial and TLS handshake timeouts.
func New(opts Options, client *http.Client) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	f := &Fetcher{client: client, opts: opts}
	if opts.RateLimitRPS > 0 {
		f.limiter = newAdaptiveLimiter(opts.RateLimitRPS)
	}
	return f
}

// Fetch returns the body of targetURL decoded to UTF-8, or "" on any
// failure. Failures are logged, never returned.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) string {
	body, err := resilience.WithTimeout(ctx, "fetch: "+targetURL, f.opts.Timeout, func(ctx context.Context) (string, error) {
		return f.get(ctx, targetURL)
	})
	if err != nil {
		zap.L().Debug("fetch: page unavailable",
			zap.String("url", targetURL),
			zap.Bool("timeout", resilience.IsTimeout(err)),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return ""
	}
	return body
}

func (f *Fetcher) get(ctx context.Context, targetURL string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "fetch: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch: send request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetch: read body")
	}
	block := detectBlock(resp.StatusCode, resp.Header, raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if f.limiter != nil && resp.StatusCode == http.StatusTooManyRequests {
			f.limiter.onRateLimit()
		}
		if block != blockNone {
			return "", eris.Errorf("fetch: unexpected status %d (%s)", resp.StatusCode, block)
		}
		return "", eris.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}
	if f.limiter != nil {
		f.limiter.onSuccess()
	}
	if block != blockNone {
		zap.L().Debug("fetch: page looks like a bot challenge",
			zap.String("url", targetURL),
			zap.String("block", string(block)),
		)
	}

	return decode(raw, resp.Header.Get("Content-Type")), nil
}

// decode converts body to UTF-8 using the Content-Type charset or a
// <meta> declaration. Undecodable bodies are returned unchanged.
func decode(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(out)
}

// FetchAll fetches every result concurrently and waits for all of them.
// The returned pages are in the same order as results; a failed fetch
// leaves that page's Content empty.
func (f *Fetcher) FetchAll(ctx context.Context, results []model.SearchResult) []model.Page {
	pages := make([]model.Page, len(results))

	var g errgroup.Group
	g.SetLimit(f.opts.MaxConcurrent)

	for i, r := range results {
		pages[i].SearchResult = r
		g.Go(func() error {
			pages[i].Content = f.Fetch(ctx, r.URL)
			return nil
		})
	}
	_ = g.Wait()

	fetched := 0
	for _, p := range pages {
		if p.HasContent() {
			fetched++
		}
	}
	zap.L().Debug("fetch: pages fetched",
		zap.Int("requested", len(results)),
		zap.Int("fetched", fetched),
	)
	return pages
}
