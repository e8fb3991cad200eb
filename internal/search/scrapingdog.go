package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/pkg/scrapingdog"
)

// ScrapingDog searches Google SERPs through the Scrapingdog API.
type ScrapingDog struct {
	client scrapingdog.Client
	num    int
	opts   Options
}

// NewScrapingDog creates the Scrapingdog provider.
func NewScrapingDog(client scrapingdog.Client, num int, opts Options) *ScrapingDog {
	return &ScrapingDog{client: client, num: num, opts: opts}
}

// Name implements Provider.
func (s *ScrapingDog) Name() string { return "scrapingdog" }

// Search implements Provider.
func (s *ScrapingDog) Search(ctx context.Context, company model.Company) ([]model.SearchResult, error) {
	return run(ctx, s.Name(), s.opts, company, func(ctx context.Context, query string) ([]model.SearchResult, error) {
		resp, err := s.client.GoogleSearch(ctx, scrapingdog.SearchRequest{
			Query:    query,
			Num:      s.num,
			Country:  s.opts.Country,
			Language: s.opts.Language,
		})
		if err != nil {
			return nil, eris.Wrap(err, "search: scrapingdog")
		}
		if resp == nil {
			return nil, nil
		}
		out := make([]model.SearchResult, 0, len(resp.OrganicResults))
		for _, r := range resp.OrganicResults {
			out = append(out, model.SearchResult{
				Title:   r.Title,
				URL:     r.Link,
				Snippet: firstNonEmpty(r.Snippet, r.Description),
			})
		}
		return out, nil
	})
}
