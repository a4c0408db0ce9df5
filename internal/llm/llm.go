package llm

import (
	"context"
	"errors"
)

// Client abstracts chat-completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is a single completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completion is the first choice returned by the provider.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ErrEmptyCompletion is returned when the provider answers with no text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// UserPrompt builds a request with a single user message.
func UserPrompt(model, prompt string, temperature float32, maxTokens int) Request {
	return Request{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
