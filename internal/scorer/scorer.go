// Package scorer rates candidate pages as the official website of a
// company, using a language model with a deterministic fallback.
package scorer

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sitefinder/internal/cost"
	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/resilience"
)

const unscoredReason = "URL not scored by model."

// Completion is a model reply with its token usage.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Model sends a single prompt to a language model backend.
type Model interface {
	Name() string
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// Options configures a Scorer.
type Options struct {
	Timeout time.Duration
	Costs   *cost.Calculator
}

// Scorer produces exactly one score per candidate page.
type Scorer struct {
	model Model
	opts  Options
}

// New creates a Scorer backed by m.
func New(m Model, opts Options) *Scorer {
	return &Scorer{model: m, opts: opts}
}

// Score rates every page. The result has one entry per page, in page
// order, with scores in [0,1]. Backend failures and unparsable replies
// fall back to heuristic scores; Score never fails.
func (s *Scorer) Score(ctx context.Context, company model.Company, pages []model.Page) []model.ScoredURL {
	if len(pages) == 0 {
		return nil
	}

	log := zap.L().With(zap.String("backend", s.model.Name()), zap.Int("pages", len(pages)))

	prompt := buildPrompt(company, pages)
	comp, err := resilience.WithTimeout(ctx, "scorer: "+s.model.Name(), s.opts.Timeout, func(ctx context.Context) (*Completion, error) {
		return s.model.Complete(ctx, prompt)
	})
	if err != nil {
		log.Error("scorer: model call failed, using heuristic",
			zap.Bool("timeout", resilience.IsTimeout(err)),
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return heuristic(company, pages)
	}
	if extractText(comp) == "" {
		log.Warn("scorer: empty completion, using heuristic")
		return heuristic(company, pages)
	}

	log.Info("scorer: token usage",
		zap.String("model", comp.Model),
		zap.Int64("input_tokens", comp.InputTokens),
		zap.Int64("output_tokens", comp.OutputTokens),
		zap.Int64("total_tokens", comp.InputTokens+comp.OutputTokens),
		zap.Float64("cost_usd", s.opts.Costs.Tokens(comp.Model, comp.InputTokens, comp.OutputTokens)),
	)

	entries, err := parseResponse(extractText(comp))
	if err != nil {
		log.Warn("scorer: response could not be parsed, using heuristic", zap.Error(err))
		return heuristic(company, pages)
	}

	return fill(pages, entries)
}

// fill maps parsed entries onto pages. Pages the model did not score get 0.
func fill(pages []model.Page, entries []model.ScoredURL) []model.ScoredURL {
	out := make([]model.ScoredURL, len(pages))
	for i, p := range pages {
		if e, ok := match(p.URL, entries); ok {
			out[i] = model.ScoredURL{URL: p.URL, Score: model.ClampScore(e.Score), Reason: e.Reason}
			continue
		}
		out[i] = model.ScoredURL{URL: p.URL, Score: 0, Reason: unscoredReason}
	}
	return out
}

// match returns the first entry for url. An exact match wins; otherwise a
// trailing slash difference is tolerated.
func match(url string, entries []model.ScoredURL) (model.ScoredURL, bool) {
	for _, e := range entries {
		if e.URL == url {
			return e, true
		}
	}
	want := trimSlash(url)
	for _, e := range entries {
		if trimSlash(e.URL) == want {
			return e, true
		}
	}
	return model.ScoredURL{}, false
}

func trimSlash(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
