package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/scorer"
)

// --- Provider fake ---

type fakeProvider struct {
	name    string
	results []model.SearchResult
	err     error
	panics  bool

	mu    sync.Mutex
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(_ context.Context, _ model.Company) ([]model.SearchResult, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.panics {
		panic("provider exploded")
	}
	return p.results, p.err
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func provider(name string, urls ...string) *fakeProvider {
	p := &fakeProvider{name: name}
	for _, u := range urls {
		p.results = append(p.results, model.SearchResult{Title: u, URL: u})
	}
	return p
}

func failingProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, err: errors.New(name + ": unexpected status 500")}
}

// --- Fetcher fake ---

type fakeFetcher struct {
	content map[string]string

	mu    sync.Mutex
	calls int
	urls  []string
}

func (f *fakeFetcher) FetchAll(_ context.Context, results []model.SearchResult) []model.Page {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	pages := make([]model.Page, len(results))
	for i, r := range results {
		f.mu.Lock()
		f.urls = append(f.urls, r.URL)
		f.mu.Unlock()
		pages[i] = model.Page{SearchResult: r, Content: f.content[r.URL]}
	}
	return pages
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- Scorer fake ---

// fakeScorer returns a fixed score per URL; unknown URLs get 0.
type fakeScorer struct {
	scores map[string]float64
	panics bool

	mu    sync.Mutex
	calls int
}

func (s *fakeScorer) Score(_ context.Context, _ model.Company, pages []model.Page) []model.ScoredURL {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panics {
		panic("scorer exploded")
	}

	out := make([]model.ScoredURL, len(pages))
	for i, p := range pages {
		out[i] = model.ScoredURL{URL: p.URL, Score: s.scores[p.URL], Reason: "fake"}
	}
	return out
}

func (s *fakeScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// failingModel is a scorer.Model whose every call errors.
type failingModel struct{}

func (failingModel) Name() string { return "failing" }

func (failingModel) Complete(_ context.Context, _ string) (*scorer.Completion, error) {
	return nil, errors.New("model unavailable")
}
