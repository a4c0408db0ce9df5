package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"createkit-backend/internal/llm"
	"createkit-backend/internal/shared/breaker"
	"createkit-backend/internal/shared/metrics"
	"createkit-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Client implements llm.Client against an OpenAI-compatible Chat Completions API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *breaker.Breaker
}

// NewClient constructs a client. An empty baseURL targets the Gemini
// OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration, cb *breaker.Breaker) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: cb,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// errUpstream marks failures that should count against the breaker.
type errUpstream struct {
	status int
	msg    string
}

func (e *errUpstream) Error() string {
	return fmt.Sprintf("llm upstream status %d: %s", e.status, e.msg)
}

// Complete sends one chat completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, in llm.Request) (llm.Completion, error) {
	if strings.TrimSpace(in.Model) == "" {
		return llm.Completion{}, fmt.Errorf("llm model is required")
	}
	out, err := breaker.Run(c.breaker, func() (llm.Completion, error) {
		return c.completeOnce(ctx, in)
	})
	switch {
	case err == nil:
		metrics.IncProviderCall("llm", "ok")
	case errors.Is(err, breaker.ErrOpen):
		metrics.IncProviderCall("llm", "breaker_open")
	default:
		metrics.IncProviderCall("llm", "error")
	}
	return out, err
}

func (c *Client) completeOnce(ctx context.Context, in llm.Request) (llm.Completion, error) {
	msgs := make([]chatMessage, 0, len(in.Messages))
	for _, m := range in.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	temp := in.Temperature
	payload, err := json.Marshal(chatRequest{
		Model:       in.Model,
		Messages:    msgs,
		Temperature: &temp,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return llm.Completion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.Completion{}, fmt.Errorf("llm request timeout: %w", err)
		}
		return llm.Completion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Completion{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return llm.Completion{}, &errUpstream{status: resp.StatusCode, msg: truncate(string(body), 200)}
		}
		return llm.Completion{}, fmt.Errorf("llm response parse: %w", err)
	}
	if parsed.Error != nil {
		return llm.Completion{}, &errUpstream{status: resp.StatusCode, msg: parsed.Error.Message}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return llm.Completion{}, &errUpstream{status: resp.StatusCode, msg: http.StatusText(resp.StatusCode)}
	}
	if len(parsed.Choices) == 0 {
		return llm.Completion{}, llm.ErrEmptyCompletion
	}

	out := llm.Completion{
		Content: strings.TrimSpace(parsed.Choices[0].Message.Content),
		Model:   parsed.Model,
	}
	if parsed.Usage != nil {
		out.PromptTokens = parsed.Usage.PromptTokens
		out.CompletionTokens = parsed.Usage.CompletionTokens
	}
	telemetry.Info("llm.response", map[string]any{
		"model":             in.Model,
		"prompt_tokens":     out.PromptTokens,
		"completion_tokens": out.CompletionTokens,
	})
	if out.Content == "" {
		return out, llm.ErrEmptyCompletion
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ llm.Client = (*Client)(nil)
