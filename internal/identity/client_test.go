package identity

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

func TestFreeUsageReadsPrivateMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/users/user_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"user_1","private_metadata":{"free_usage":4}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test", time.Second)
	require.NoError(t, err)

	n, ok, err := c.FreeUsage(context.Background(), "user_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}

func TestFreeUsageUnset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"user_1","private_metadata":{}}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test", time.Second)
	require.NoError(t, err)

	_, ok, err := c.FreeUsage(context.Background(), "user_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFreeUsageUnknownUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test", time.Second)
	require.NoError(t, err)

	_, _, err = c.FreeUsage(context.Background(), "user_x")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetFreeUsagePatchesMetadata(t *testing.T) {
	var got map[string]map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/users/user_1/metadata", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"user_1"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "sk_test", time.Second)
	require.NoError(t, err)

	require.NoError(t, c.SetFreeUsage(context.Background(), "user_1", 0))
	n, present := got["private_metadata"]["free_usage"]
	assert.True(t, present)
	assert.Equal(t, 0, n)
}

func TestNewClientRequiresSecret(t *testing.T) {
	_, err := NewClient("https://api.example.com", " ", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
