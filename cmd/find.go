package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sitefinder/internal/config"
	"github.com/sells-group/sitefinder/internal/cost"
	"github.com/sells-group/sitefinder/internal/fetch"
	"github.com/sells-group/sitefinder/internal/model"
	"github.com/sells-group/sitefinder/internal/pipeline"
	"github.com/sells-group/sitefinder/internal/scorer"
	"github.com/sells-group/sitefinder/internal/search"
	anthropicpkg "github.com/sells-group/sitefinder/pkg/anthropic"
	"github.com/sells-group/sitefinder/pkg/brave"
	"github.com/sells-group/sitefinder/pkg/gemini"
	"github.com/sells-group/sitefinder/pkg/google"
	"github.com/sells-group/sitefinder/pkg/jina"
	"github.com/sells-group/sitefinder/pkg/scrapingdog"
)

func runFind(cmd *cobra.Command, c *config.Config) error {
	company := model.Company{
		Name:        strings.TrimSpace(flagName),
		Address:     strings.TrimSpace(flagAddress),
		Description: strings.TrimSpace(flagDescription),
	}
	if company.Name == "" {
		return eris.New("--name must not be blank")
	}
	format := strings.ToLower(strings.TrimSpace(flagFormat))
	if format != formatJSON && format != formatYAML {
		return eris.Errorf("unsupported --format %q (json or yaml)", flagFormat)
	}

	if err := c.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	finder, err := buildFinder(ctx, c)
	if err != nil {
		return err
	}

	outcome, ok := finder.FindBestURL(ctx, company)
	return writeOutcome(cmd.OutOrStdout(), outcome, ok, format)
}

// buildFinder wires providers, fetcher, and scorer from configuration.
func buildFinder(ctx context.Context, c *config.Config) (*pipeline.Finder, error) {
	costs := cost.NewCalculator(c.Pricing)

	providers, err := buildProviders(c, costs)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(fetch.Options{
		UserAgent:     c.Fetch.UserAgent,
		Timeout:       seconds(c.Fetch.TimeoutSecs),
		MaxBodyBytes:  c.Fetch.MaxBodyBytes,
		MaxConcurrent: c.Fetch.MaxConcurrent,
		RateLimitRPS:  c.Fetch.RateLimitRPS,
	}, nil)

	m, err := buildModel(ctx, c)
	if err != nil {
		return nil, err
	}
	sc := scorer.New(m, scorer.Options{
		Timeout: seconds(c.Scorer.TimeoutSecs),
		Costs:   costs,
	})

	return pipeline.NewFinder(providers, fetcher, sc,
		pipeline.WithThreshold(c.Pipeline.ConfidenceThreshold),
	), nil
}

// buildProviders returns providers in configured order. Per-call deadlines
// come from search.timeout_secs, so the HTTP clients carry none.
func buildProviders(c *config.Config, costs *cost.Calculator) ([]search.Provider, error) {
	opts := search.Options{
		QuerySuffix: c.Search.QuerySuffix,
		Language:    c.Search.Language,
		Country:     c.Search.Country,
		Timeout:     seconds(c.Search.TimeoutSecs),
		Costs:       costs,
	}
	hc := &http.Client{}

	providers := make([]search.Provider, 0, len(c.Search.Providers))
	for _, name := range c.Search.Providers {
		switch name {
		case config.ProviderGoogle:
			gopts := []google.Option{google.WithHTTPClient(hc)}
			if c.Google.BaseURL != "" {
				gopts = append(gopts, google.WithBaseURL(c.Google.BaseURL))
			}
			providers = append(providers, search.NewGoogle(
				google.NewClient(c.Google.APIKey, c.Google.CSEID, gopts...), c.Google.ResultCount, opts))
		case config.ProviderBrave:
			bopts := []brave.Option{brave.WithHTTPClient(hc)}
			if c.Brave.BaseURL != "" {
				bopts = append(bopts, brave.WithBaseURL(c.Brave.BaseURL))
			}
			providers = append(providers, search.NewBrave(
				brave.NewClient(c.Brave.APIKey, bopts...), c.Brave.ResultCount, opts))
		case config.ProviderScrapingDog:
			sopts := []scrapingdog.Option{scrapingdog.WithHTTPClient(hc)}
			if c.ScrapingDog.BaseURL != "" {
				sopts = append(sopts, scrapingdog.WithBaseURL(c.ScrapingDog.BaseURL))
			}
			providers = append(providers, search.NewScrapingDog(
				scrapingdog.NewClient(c.ScrapingDog.APIKey, sopts...), c.ScrapingDog.ResultCount, opts))
		case config.ProviderJina:
			jopts := []jina.Option{jina.WithHTTPClient(hc)}
			if c.Jina.SearchBaseURL != "" {
				jopts = append(jopts, jina.WithSearchBaseURL(c.Jina.SearchBaseURL))
			}
			providers = append(providers, search.NewJina(
				jina.NewClient(c.Jina.APIKey, jopts...), c.Jina.ResultCount, opts))
		default:
			return nil, eris.Errorf("unknown search provider %q", name)
		}
	}
	return providers, nil
}

func buildModel(ctx context.Context, c *config.Config) (scorer.Model, error) {
	switch c.Scorer.Backend {
	case config.BackendAnthropic:
		var aopts []anthropicpkg.Option
		if c.Anthropic.BaseURL != "" {
			aopts = append(aopts, anthropicpkg.WithBaseURL(c.Anthropic.BaseURL))
		}
		client := anthropicpkg.NewClient(c.Anthropic.Key, aopts...)
		return scorer.NewAnthropicModel(client, c.Anthropic.Model, c.Anthropic.MaxTokens), nil
	case config.BackendGemini, "":
		var gopts []gemini.Option
		if c.Gemini.BaseURL != "" {
			gopts = append(gopts, gemini.WithBaseURL(c.Gemini.BaseURL))
		}
		client, err := gemini.NewClient(ctx, c.Gemini.APIKey, gopts...)
		if err != nil {
			return nil, eris.Wrap(err, "init gemini client")
		}
		return scorer.NewGeminiModel(client, c.Gemini.Model), nil
	default:
		return nil, eris.Errorf("unknown scorer backend %q", c.Scorer.Backend)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
