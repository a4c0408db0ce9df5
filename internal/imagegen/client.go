package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"createkit-backend/internal/shared/breaker"
	"createkit-backend/internal/shared/metrics"
)

const (
	defaultBaseURL = "https://api.krea.ai"
	submitPath     = "/generate/image/bfl/flux-1-dev"

	// ImageSize is the fixed edge length requested for every job.
	ImageSize = 1024
)

// Status is the provider-side job state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job is one status observation.
type Job struct {
	ID        string
	Status    Status
	ResultURL string
	Error     string
}

// Client submits and inspects image synthesis jobs.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *breaker.Breaker
}

// NewClient builds a Client authenticated with a bearer API key.
func NewClient(baseURL, apiKey string, timeout time.Duration, cb *breaker.Breaker) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("IMAGE_API_KEY is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: strings.TrimSpace(apiKey),
		TokenType:   "Bearer",
	}))
	hc.Timeout = timeout
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: hc,
		breaker:    cb,
	}, nil
}

type submitRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type submitResponse struct {
	ID    string `json:"id"`
	JobID string `json:"job_id"`
}

type jobResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	CompletedAt *string `json:"completed_at"`
	Result      *struct {
		URLs []string `json:"urls"`
	} `json:"result"`
	Error json.RawMessage `json:"error"`
}

// Submit starts a 1024x1024 job for prompt and returns its id.
func (c *Client) Submit(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(submitRequest{Prompt: prompt, Width: ImageSize, Height: ImageSize})
	if err != nil {
		return "", err
	}
	var out submitResponse
	err = c.call(ctx, http.MethodPost, c.baseURL+submitPath, payload, &out)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(out.ID)
	if id == "" {
		id = strings.TrimSpace(out.JobID)
	}
	if id == "" {
		return "", ErrNoJobID
	}
	return id, nil
}

// Status fetches the current state of jobID.
func (c *Client) Status(ctx context.Context, jobID string) (Job, error) {
	var out jobResponse
	endpoint := c.baseURL + "/jobs/" + url.PathEscape(jobID)
	if err := c.call(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return Job{}, err
	}
	return out.toJob(jobID), nil
}

func (r jobResponse) toJob(jobID string) Job {
	job := Job{ID: jobID, Status: StatusPending}
	if r.CompletedAt != nil && *r.CompletedAt != "" && r.Result != nil && len(r.Result.URLs) > 0 {
		job.Status = StatusCompleted
		job.ResultURL = r.Result.URLs[0]
		return job
	}
	if strings.EqualFold(r.Status, string(StatusFailed)) {
		job.Status = StatusFailed
		job.Error = errorText(r.Error)
	}
	return job
}

// errorText accepts either a bare string or an object with a message field.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "Unknown error"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

func (c *Client) call(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	_, err := breaker.Run(c.breaker, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, method, endpoint, payload, out)
	})
	switch {
	case err == nil:
		metrics.IncProviderCall("imagegen", "ok")
	case errors.Is(err, breaker.ErrOpen):
		metrics.IncProviderCall("imagegen", "breaker_open")
	default:
		metrics.IncProviderCall("imagegen", "error")
	}
	return err
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("imagegen %s %s: status %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("imagegen response parse: %w", err)
	}
	return nil
}
