package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitPostsFixedSize(t *testing.T) {
	var body submitRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, submitPath, r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"job_id":"abc-123"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "krea-key", time.Second, nil)
	require.NoError(t, err)
	id, err := c.Submit(context.Background(), "a lighthouse at dusk")
	require.NoError(t, err)

	assert.Equal(t, "abc-123", id)
	assert.Equal(t, "Bearer krea-key", auth)
	assert.Equal(t, submitRequest{Prompt: "a lighthouse at dusk", Width: 1024, Height: 1024}, body)
}

func TestSubmitWithoutJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "k", time.Second, nil)
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoJobID)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Job
	}{
		{
			name: "completed",
			body: `{"id":"j","status":"completed","completed_at":"2026-01-01T00:00:00Z","result":{"urls":["https://cdn/a.png","https://cdn/b.png"]}}`,
			want: Job{ID: "j", Status: StatusCompleted, ResultURL: "https://cdn/a.png"},
		},
		{
			name: "completed without urls stays pending",
			body: `{"id":"j","status":"completed","completed_at":"2026-01-01T00:00:00Z","result":{"urls":[]}}`,
			want: Job{ID: "j", Status: StatusPending},
		},
		{
			name: "failed with string error",
			body: `{"id":"j","status":"failed","error":"content policy"}`,
			want: Job{ID: "j", Status: StatusFailed, Error: "content policy"},
		},
		{
			name: "failed without error",
			body: `{"id":"j","status":"failed"}`,
			want: Job{ID: "j", Status: StatusFailed, Error: "Unknown error"},
		},
		{
			name: "processing",
			body: `{"id":"j","status":"processing"}`,
			want: Job{ID: "j", Status: StatusPending},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/jobs/j", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL, "k", time.Second, nil)
			require.NoError(t, err)
			got, err := c.Status(context.Background(), "j")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`oops`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "k", time.Second, nil)
	require.NoError(t, err)
	_, err = c.Status(context.Background(), "j")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("", "", time.Second, nil)
	assert.Error(t, err)
}
