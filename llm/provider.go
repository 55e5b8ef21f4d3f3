package llm

import (
	"context"
	"strings"

	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/provider"
)

// Provider is the interface that completion backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Stream sends a completion request and returns a channel of streamed chunks.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
}

// NewRegistry creates a provider registry for completion backends.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// CompleteText runs a single-prompt completion and returns the trimmed
// text, the shape every transcript transform needs.
func CompleteText(ctx context.Context, p Provider, prompt string) (string, error) {
	resp, err := p.Complete(ctx, CompletionRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", apperrors.BackendUnavailable(p.Name()).WithDetail("reason", "empty completion")
	}
	return text, nil
}
