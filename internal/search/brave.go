package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/pkg/brave"
)

// Brave searches through the Brave Web Search API.
type Brave struct {
	client brave.Client
	count  int
	opts   Options
}

// NewBrave creates the Brave provider.
func NewBrave(client brave.Client, count int, opts Options) *Brave {
	return &Brave{client: client, count: count, opts: opts}
}

// Name implements Provider.
func (b *Brave) Name() string { return "brave" }

// Search implements Provider.
func (b *Brave) Search(ctx context.Context, company model.Company) ([]model.SearchResult, error) {
	return run(ctx, b.Name(), b.opts, company, func(ctx context.Context, query string) ([]model.SearchResult, error) {
		resp, err := b.client.WebSearch(ctx, brave.SearchRequest{
			Query:      query,
			Count:      b.count,
			Country:    strings.ToUpper(b.opts.Country),
			SearchLang: b.opts.Language,
		})
		if err != nil {
			return nil, eris.Wrap(err, "search: brave")
		}
		results := resp.Results()
		out := make([]model.SearchResult, 0, len(results))
		for _, r := range results {
			out = append(out, model.SearchResult{
				Title:   r.Title,
				URL:     r.URL,
				Snippet: r.Description,
			})
		}
		return out, nil
	})
}
