package scorer

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sitefinder/pkg/anthropic"
	"github.com/sells-group/sitefinder/pkg/gemini"
)

// GeminiModel scores through the Gemini API.
type GeminiModel struct {
	client gemini.Client
	model  string
}

// NewGeminiModel creates a Model backed by client using the named model.
func NewGeminiModel(client gemini.Client, model string) *GeminiModel {
	return &GeminiModel{client: client, model: model}
}

// Name implements Model.
func (g *GeminiModel) Name() string { return "gemini" }

// Complete implements Model.
func (g *GeminiModel) Complete(ctx context.Context, prompt string) (*Completion, error) {
	temp := float32(0)
	resp, err := g.client.GenerateText(ctx, gemini.TextRequest{
		Model:       g.model,
		Prompt:      prompt,
		Temperature: &temp,
		JSON:        true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "scorer: gemini")
	}
	return &Completion{
		Text:         resp.Text,
		Model:        g.model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CandidateTokens,
	}, nil
}

// AnthropicModel scores through the Anthropic Messages API.
type AnthropicModel struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicModel creates a Model backed by client. maxTokens <= 0
// selects 4096.
func NewAnthropicModel(client anthropic.Client, model string, maxTokens int64) *AnthropicModel {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicModel{client: client, model: model, maxTokens: maxTokens}
}

// Name implements Model.
func (a *AnthropicModel) Name() string { return "anthropic" }

// Complete implements Model.
func (a *AnthropicModel) Complete(ctx context.Context, prompt string) (*Completion, error) {
	temp := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "scorer: anthropic")
	}
	return &Completion{
		Text:         resp.Text(),
		Model:        a.model,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}
