package generation

import (
	"bytes"
	"encoding/json"
	"math"
)

type articleRequest struct {
	Prompt string          `json:"prompt"`
	Length json.RawMessage `json:"length"`
}

// length returns the requested word count only when it was sent as a JSON
// number. Strings and other values fall back to the default.
func (r articleRequest) length() *float64 {
	raw := bytes.TrimSpace(r.Length)
	if len(raw) == 0 || raw[0] == '"' {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil || math.IsNaN(n) {
		return nil
	}
	return &n
}

type blogTitleRequest struct {
	Prompt string `json:"prompt"`
}

type imageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

type articleResponse struct {
	Success bool   `json:"success"`
	Article string `json:"article"`
}

type blogTitleResponse struct {
	Success   bool   `json:"success"`
	BlogTitle string `json:"blogTitle"`
}

type imageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
}

type contentResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}
