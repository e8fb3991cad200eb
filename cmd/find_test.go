package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sitefinder/internal/config"
)

// fakeAPIs serves Brave search results, the candidate pages, and a Gemini
// generateContent endpoint from one server.
type fakeAPIs struct {
	srv         *httptest.Server
	braveCalls  atomic.Int32
	geminiCalls atomic.Int32
	braveBody   func(base string) string
	geminiScore float64
}

func newFakeAPIs(t *testing.T) *fakeAPIs {
	t.Helper()
	f := &fakeAPIs{geminiScore: 0.9}
	f.braveBody = func(base string) string {
		return fmt.Sprintf(`{"web":{"results":[
			{"title":"Acme Corp","url":"%s/site/about","description":"Acme Corp official site"},
			{"title":"Directory","url":"%s/dir/acme","description":"listing"}
		]}}`, base, base)
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/web/search"):
			f.braveCalls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, f.braveBody(f.srv.URL))
		case strings.Contains(r.URL.Path, ":generateContent"):
			f.geminiCalls.Add(1)
			text := fmt.Sprintf(`{"urls":[{"url":"%s/site/about","score":%v,"reason":"official"}]}`, f.srv.URL, f.geminiScore)
			body, _ := json.Marshal(map[string]any{
				"candidates": []any{map[string]any{
					"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
				}},
				"usageMetadata": map[string]any{"promptTokenCount": 100, "candidatesTokenCount": 10, "totalTokenCount": 110},
			})
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		case r.URL.Path == "/site/about":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = fmt.Fprint(w, "<html><body><h1>Acme Corp</h1><p>会社概要</p></body></html>")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPIs) config() *config.Config {
	return &config.Config{
		Brave:    config.BraveConfig{APIKey: "brave-key", ResultCount: 10, BaseURL: f.srv.URL + "/res/v1"},
		Gemini:   config.GeminiConfig{APIKey: "gem-key", Model: "gemini-2.5-pro", BaseURL: f.srv.URL},
		Search:   config.SearchConfig{Providers: []string{"brave"}, QuerySuffix: "会社概要", Language: "ja", Country: "jp", TimeoutSecs: 5},
		Fetch:    config.FetchConfig{TimeoutSecs: 5, MaxBodyBytes: 512 * 1024, MaxConcurrent: 4},
		Scorer:   config.ScorerConfig{Backend: config.BackendGemini, TimeoutSecs: 5},
		Pipeline: config.PipelineConfig{ConfidenceThreshold: 0.7},
	}
}

func setFlags(t *testing.T, name, address, format string) {
	t.Helper()
	flagName, flagAddress, flagDescription, flagFormat = name, address, "", format
	t.Cleanup(func() {
		flagName, flagAddress, flagDescription, flagFormat = "", "", "", formatJSON
	})
}

func testCmd(out *bytes.Buffer) *cobra.Command {
	c := &cobra.Command{}
	c.SetOut(out)
	c.SetContext(context.Background())
	return c
}

func TestRunFind_JSON(t *testing.T) {
	apis := newFakeAPIs(t)
	setFlags(t, "Acme Corp", "", formatJSON)

	var out bytes.Buffer
	require.NoError(t, runFind(testCmd(&out), apis.config()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, apis.srv.URL+"/", got["url"])
	assert.InDelta(t, 0.9, got["score"], 1e-9)
	assert.Equal(t, "official", got["reason"])
	assert.Equal(t, "brave", got["provider"])
	assert.Equal(t, int32(1), apis.braveCalls.Load())
	assert.Equal(t, int32(1), apis.geminiCalls.Load())
}

func TestRunFind_YAML(t *testing.T) {
	apis := newFakeAPIs(t)
	setFlags(t, "Acme Corp", "", "YAML")

	var out bytes.Buffer
	require.NoError(t, runFind(testCmd(&out), apis.config()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, apis.srv.URL+"/", got["url"])
	assert.Equal(t, "brave", got["provider"])
}

func TestRunFind_NoResults(t *testing.T) {
	apis := newFakeAPIs(t)
	apis.braveBody = func(string) string { return `{"web":{"results":[]}}` }
	setFlags(t, "Unknown Inc", "", formatJSON)

	var out bytes.Buffer
	require.NoError(t, runFind(testCmd(&out), apis.config()))
	assert.Equal(t, notFoundMessage+"\n", out.String())
	assert.Zero(t, apis.geminiCalls.Load())
}

func TestRunFind_BlankName(t *testing.T) {
	apis := newFakeAPIs(t)
	setFlags(t, "   ", "", formatJSON)

	var out bytes.Buffer
	err := runFind(testCmd(&out), apis.config())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name")
	assert.Zero(t, apis.braveCalls.Load())
}

func TestRunFind_BadFormat(t *testing.T) {
	apis := newFakeAPIs(t)
	setFlags(t, "Acme", "", "xml")

	var out bytes.Buffer
	err := runFind(testCmd(&out), apis.config())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported --format")
}

func TestRunFind_InvalidConfig(t *testing.T) {
	apis := newFakeAPIs(t)
	setFlags(t, "Acme", "", formatJSON)

	c := apis.config()
	c.Brave.APIKey = ""
	var out bytes.Buffer
	err := runFind(testCmd(&out), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BRAVE_API_KEY")
	assert.Zero(t, apis.braveCalls.Load())
}

func TestBuildProviders_Order(t *testing.T) {
	c := &config.Config{Search: config.SearchConfig{Providers: []string{"scrapingdog", "jina", "google", "brave"}}}
	providers, err := buildProviders(c, nil)
	require.NoError(t, err)

	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	assert.Equal(t, []string{"scrapingdog", "jina", "google", "brave"}, names)

	c.Search.Providers = []string{"bing"}
	_, err = buildProviders(c, nil)
	require.Error(t, err)
}

func TestBuildModel(t *testing.T) {
	m, err := buildModel(context.Background(), &config.Config{
		Scorer:    config.ScorerConfig{Backend: config.BackendAnthropic},
		Anthropic: config.AnthropicConfig{Key: "k", Model: "claude-haiku-4-5-20251001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", m.Name())

	m, err = buildModel(context.Background(), &config.Config{
		Scorer: config.ScorerConfig{Backend: config.BackendGemini},
		Gemini: config.GeminiConfig{APIKey: "k", Model: "gemini-2.5-pro"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini", m.Name())

	_, err = buildModel(context.Background(), &config.Config{Scorer: config.ScorerConfig{Backend: "other"}})
	require.Error(t, err)
}
