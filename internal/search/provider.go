// Package search adapts web-search APIs to a uniform Provider interface.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sitefinder/internal/cost"
	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/resilience"
	"github.com/sells-group/sitefinder/internal/sanitize"
)

// DefaultQuerySuffix is appended to every company name ("company profile").
const DefaultQuerySuffix = "会社概要"

// Provider returns candidate URLs for a company from one search backend.
// A failed call returns an error; callers treat it as zero results.
type Provider interface {
	Name() string
	Search(ctx context.Context, company model.Company) ([]model.SearchResult, error)
}

// Options holds settings shared by every adapter.
type Options struct {
	QuerySuffix string
	Language    string // e.g. "ja"
	Country     string // e.g. "jp"
	Timeout     time.Duration
	Costs       *cost.Calculator
}

func (o Options) suffix() string {
	if o.QuerySuffix == "" {
		return DefaultQuerySuffix
	}
	return o.QuerySuffix
}

// BuildQuery composes "<name> <suffix> [<address>]" from sanitized inputs.
func BuildQuery(company model.Company, suffix string) string {
	parts := make([]string, 0, 3)
	if name := strings.TrimSpace(sanitize.CompanyName(company.Name)); name != "" {
		parts = append(parts, name)
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		parts = append(parts, suffix)
	}
	if addr := sanitize.Address(company.Address); addr != "" {
		parts = append(parts, addr)
	}
	return strings.Join(parts, " ")
}

// queryFunc runs one backend request for query.
type queryFunc func(ctx context.Context, query string) ([]model.SearchResult, error)

// run wraps a backend call with the shared query shape, timeout, result
// cleanup, cost attribution, and logging.
func run(ctx context.Context, name string, opts Options, company model.Company, fn queryFunc) ([]model.SearchResult, error) {
	query := BuildQuery(company, opts.suffix())
	log := zap.L().With(zap.String("provider", name), zap.String("query", query))

	start := time.Now()
	raw, err := resilience.WithTimeout(ctx, "search: "+name, opts.Timeout, func(ctx context.Context) ([]model.SearchResult, error) {
		return fn(ctx, query)
	})
	if err != nil {
		log.Warn("search: provider call failed",
			zap.Bool("timeout", resilience.IsTimeout(err)),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	results := clean(raw)
	log.Debug("search: results",
		zap.Int("returned", len(raw)),
		zap.Int("usable", len(results)),
		zap.Float64("cost_usd", opts.Costs.SearchQuery(name)),
		zap.Duration("elapsed", time.Since(start)),
	)
	for i, r := range results {
		log.Debug("search: result",
			zap.Int("rank", i+1),
			zap.String("url", r.URL),
			zap.String("title", r.Title),
		)
	}
	return results, nil
}

// clean drops items without a URL and fills a missing title with the URL.
func clean(raw []model.SearchResult) []model.SearchResult {
	out := make([]model.SearchResult, 0, len(raw))
	for _, r := range raw {
		r.URL = strings.TrimSpace(r.URL)
		if r.URL == "" {
			continue
		}
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			r.Title = r.URL
		}
		r.Snippet = strings.TrimSpace(r.Snippet)
		out = append(out, r)
	}
	return out
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
