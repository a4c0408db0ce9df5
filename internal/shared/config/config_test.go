package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("FREE_USAGE_LIMIT", "")
	t.Setenv("IMAGE_POLL_INTERVAL", "")
	t.Setenv("IMAGE_POLL_ATTEMPTS", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 10, cfg.FreeUsageLimit)
	assert.Equal(t, 2*time.Second, cfg.ImagePollInterval)
	assert.Equal(t, 30, cfg.ImagePollAttempts)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai", cfg.LLMBaseURL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("QUOTA_SOURCE", "PG")
	t.Setenv("MEDIA_BACKEND", "s3")
	t.Setenv("LLM_TIMEOUT_SECONDS", "15")
	t.Setenv("IMAGE_POLL_INTERVAL", "500ms")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "postgres", cfg.QuotaSource)
	assert.Equal(t, "s3", cfg.MediaBackend)
	assert.Equal(t, 15*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.ImagePollInterval)
}

func TestIsDevLike(t *testing.T) {
	assert.True(t, IsDevLike("dev"))
	assert.True(t, IsDevLike("local"))
	assert.False(t, IsDevLike("production"))
	assert.False(t, IsDevLike("test"))
}
