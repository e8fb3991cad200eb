package search

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/pkg/jina"
)

// Jina searches through Jina AI Search.
type Jina struct {
	client jina.Client
	num    int
	opts   Options
}

// NewJina creates the Jina provider.
func NewJina(client jina.Client, num int, opts Options) *Jina {
	return &Jina{client: client, num: num, opts: opts}
}

// Name implements Provider.
func (j *Jina) Name() string { return "jina" }

// Search implements Provider.
func (j *Jina) Search(ctx context.Context, company model.Company) ([]model.SearchResult, error) {
	return run(ctx, j.Name(), j.opts, company, func(ctx context.Context, query string) ([]model.SearchResult, error) {
		var sopts []jina.SearchOption
		if j.opts.Country != "" {
			sopts = append(sopts, jina.WithCountry(j.opts.Country))
		}
		if j.opts.Language != "" {
			sopts = append(sopts, jina.WithLanguage(j.opts.Language))
		}
		if j.num > 0 {
			sopts = append(sopts, jina.WithNum(j.num))
		}

		resp, err := j.client.Search(ctx, query, sopts...)
		if err != nil {
			return nil, eris.Wrap(err, "search: jina")
		}
		if resp == nil {
			return nil, nil
		}
		out := make([]model.SearchResult, 0, len(resp.Data))
		for _, r := range resp.Data {
			out = append(out, model.SearchResult{
				Title:   r.Title,
				URL:     r.URL,
				Snippet: r.Description,
			})
		}
		return out, nil
	})
}
