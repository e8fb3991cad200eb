package scorer

import (
	"context"
	"sync"
)

// fakeModel returns a canned completion or error and records prompts.
type fakeModel struct {
	mu      sync.Mutex
	text    string
	err     error
	block   bool
	prompts []string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Complete(ctx context.Context, prompt string) (*Completion, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &Completion{Text: f.text, Model: "fake-model", InputTokens: 100, OutputTokens: 20}, nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}
