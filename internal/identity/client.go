package identity

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

	"createkit-backend/internal/shared/telemetry"
)

const freeUsageKey = "free_usage"

var (
	ErrUserNotFound  = errors.New("identity user not found")
	ErrNotConfigured = errors.New("identity secret key not configured")
)

// Client talks to the identity provider's backend API. It only reads and
// writes the free-usage counter kept in a user's private metadata.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client authenticated with the provider secret key.
func NewClient(baseURL, secretKey string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: strings.TrimSpace(secretKey),
		TokenType:   "Bearer",
	}))
	hc.Timeout = timeout
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}, nil
}

type userResponse struct {
	ID              string                     `json:"id"`
	PrivateMetadata map[string]json.RawMessage `json:"private_metadata"`
}

type metadataUpdate struct {
	PrivateMetadata map[string]int `json:"private_metadata"`
}

// FreeUsage returns the stored counter. ok is false when the user has never
// had one written.
func (c *Client) FreeUsage(ctx context.Context, userID string) (remaining int, ok bool, err error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false, err
	}

	var user userResponse
	if err := c.do(req, &user); err != nil {
		return 0, false, err
	}

	raw, present := user.PrivateMetadata[freeUsageKey]
	if !present || string(raw) == "null" {
		return 0, false, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		telemetry.Warn("identity.free_usage_malformed", map[string]any{
			"user_id": userID,
			"raw":     string(raw),
		})
		return 0, false, nil
	}
	if n < 0 {
		n = 0
	}
	return int(n), true, nil
}

// SetFreeUsage merges the counter into the user's private metadata.
func (c *Client) SetFreeUsage(ctx context.Context, userID string, remaining int) error {
	payload, err := json.Marshal(metadataUpdate{PrivateMetadata: map[string]int{freeUsageKey: remaining}})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v1/users/%s/metadata", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("identity response parse: %w", err)
	}
	return nil
}
