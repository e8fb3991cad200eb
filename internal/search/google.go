package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/pkg/google"
)

// Google searches through the Custom Search JSON API.
type Google struct {
	client google.Client
	num    int
	opts   Options
}

// NewGoogle creates the Google provider.
func NewGoogle(client google.Client, num int, opts Options) *Google {
	return &Google{client: client, num: num, opts: opts}
}

// Name implements Provider.
func (g *Google) Name() string { return "google" }

// Search implements Provider.
func (g *Google) Search(ctx context.Context, company model.Company) ([]model.SearchResult, error) {
	return run(ctx, g.Name(), g.opts, company, func(ctx context.Context, query string) ([]model.SearchResult, error) {
		resp, err := g.client.Search(ctx, google.SearchRequest{
			Query:    query,
			Num:      g.num,
			Language: g.opts.Language,
			Country:  g.opts.Country,
		})
		if err != nil {
			return nil, eris.Wrap(err, "search: google")
		}
		if resp == nil {
			return nil, nil
		}
		out := make([]model.SearchResult, 0, len(resp.Items))
		for _, it := range resp.Items {
			out = append(out, model.SearchResult{
				Title:   it.Title,
				URL:     it.Link,
				Snippet: firstNonEmpty(it.Snippet, it.HTMLSnippet),
			})
		}
		return out, nil
	})
}
