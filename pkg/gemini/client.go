// Package gemini wraps the Gemini generateContent API for plain text prompts.
package gemini

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// Client generates text completions from a Gemini model.
type Client interface {
	GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error)
}

// TextRequest is a single-turn prompt.
type TextRequest struct {
	Model       string
	Prompt      string
	Temperature *float32
	// JSON requests an application/json response body.
	JSON bool
}

// TextResponse carries the generated text and token usage.
type TextResponse struct {
	Text  string
	Model string
	Usage Usage
}

// Usage mirrors the usage metadata reported by the API.
type Usage struct {
	PromptTokens    int64
	CandidateTokens int64
	TotalTokens     int64
}

type config struct {
	baseURL string
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

type sdkClient struct {
	client *genai.Client
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, eris.New("gemini: api key is required")
	}
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.baseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.baseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: client}, nil
}

func (c *sdkClient) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, eris.New("gemini: model is required")
	}

	gc := &genai.GenerateContentConfig{
		CandidateCount: 1,
		Temperature:    req.Temperature,
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: generate content")
	}

	out := &TextResponse{
		Text:  resp.Text(),
		Model: req.Model,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:    int64(u.PromptTokenCount),
			CandidateTokens: int64(u.CandidatesTokenCount),
			TotalTokens:     int64(u.TotalTokenCount),
		}
	}
	return out, nil
}
