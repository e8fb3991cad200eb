// Package pipeline runs the ordered provider fallback that picks a
// company's official website.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/search"
	"github.com/sells-group/sitefinder/internal/urlnorm"
)

// DefaultThreshold is the confidence above which the search stops early.
const DefaultThreshold = 0.7

// Fetcher downloads every candidate page. Failed fetches yield pages with
// empty Content.
type Fetcher interface {
	FetchAll(ctx context.Context, results []model.SearchResult) []model.Page
}

// Scorer rates every page; it never fails.
type Scorer interface {
	Score(ctx context.Context, company model.Company, pages []model.Page) []model.ScoredURL
}

// Finder holds read-only collaborators, so one Finder may serve
// concurrent lookups.
type Finder struct {
	providers []search.Provider
	fetcher   Fetcher
	scorer    Scorer
	threshold float64
}

// Option configures a Finder.
type Option func(*Finder)

// WithThreshold sets the early-stop confidence threshold.
func WithThreshold(t float64) Option {
	return func(f *Finder) { f.threshold = t }
}

// NewFinder creates a Finder that tries providers in the given order.
func NewFinder(providers []search.Provider, fetcher Fetcher, scorer Scorer, opts ...Option) *Finder {
	f := &Finder{
		providers: providers,
		fetcher:   fetcher,
		scorer:    scorer,
		threshold: DefaultThreshold,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// FindBestURL queries providers in order and returns the highest-scoring
// canonical URL seen. A later provider replaces the current best only
// with a strictly higher score, and iteration stops as soon as the best
// score is strictly above the threshold. The second return is false when
// no provider produced a candidate.
func (f *Finder) FindBestURL(ctx context.Context, company model.Company) (*model.Outcome, bool) {
	log := zap.L().With(
		zap.String("lookup_id", uuid.NewString()),
		zap.String("company", company.Name),
	)
	start := time.Now()
	log.Info("pipeline: lookup started", zap.Int("providers", len(f.providers)))

	var best *model.Outcome
	for i, p := range f.providers {
		if ctx.Err() != nil {
			log.Warn("pipeline: context done, stopping", zap.Error(ctx.Err()))
			break
		}

		candidate := f.evaluate(ctx, log, p, company)
		if candidate == nil {
			log.Info("pipeline: provider produced no candidate", zap.String("provider", p.Name()))
			continue
		}

		log.Info("pipeline: provider candidate",
			zap.String("provider", p.Name()),
			zap.String("url", candidate.URL),
			zap.Float64("score", candidate.Score),
		)

		if best == nil || candidate.Score > best.Score {
			best = &model.Outcome{ScoredURL: *candidate, Provider: p.Name()}
		}

		if candidate.Score > f.threshold {
			log.Info("pipeline: confidence threshold exceeded, stopping",
				zap.String("provider", p.Name()),
				zap.Float64("threshold", f.threshold),
				zap.Int("skipped", len(f.providers)-i-1),
			)
			break
		}
	}

	if best == nil {
		log.Info("pipeline: no suitable website found", zap.Duration("elapsed", time.Since(start)))
		return nil, false
	}

	log.Info("pipeline: best website",
		zap.String("url", best.URL),
		zap.Float64("score", best.Score),
		zap.String("provider", best.Provider),
		zap.Duration("elapsed", time.Since(start)),
	)
	return best, true
}

// evaluate runs search, fetch, and scoring for one provider and returns
// its top candidate with the URL in canonical origin form, or nil. A
// panic anywhere in the stage counts as no candidate.
func (f *Finder) evaluate(ctx context.Context, log *zap.Logger, p search.Provider, company model.Company) (out *model.ScoredURL) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline: provider stage panicked",
				zap.String("provider", p.Name()),
				zap.String("panic", fmt.Sprint(r)),
			)
			out = nil
		}
	}()

	results, err := p.Search(ctx, company)
	if err != nil {
		log.Warn("pipeline: search failed, treating as no results",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
		return nil
	}

	results = usable(results)
	if len(results) == 0 {
		return nil
	}

	pages := f.fetcher.FetchAll(ctx, results)
	scored := f.scorer.Score(ctx, company, pages)

	top, ok := highest(scored)
	if !ok {
		return nil
	}
	top.URL = urlnorm.Origin(top.URL)
	if top.URL == "" {
		return nil
	}
	return &top
}

// usable drops results without a URL.
func usable(results []model.SearchResult) []model.SearchResult {
	out := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// highest returns the entry with the maximum score, keeping the first on
// ties.
func highest(scored []model.ScoredURL) (model.ScoredURL, bool) {
	var (
		top   model.ScoredURL
		found bool
	)
	for _, s := range scored {
		if strings.TrimSpace(s.URL) == "" {
			continue
		}
		s.Score = model.ClampScore(s.Score)
		if !found || s.Score > top.Score {
			top = s
			found = true
		}
	}
	return top, found
}
