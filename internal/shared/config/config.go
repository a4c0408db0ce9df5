package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port             string
	Env              string
	LogLevel         string
	CORSAllowOrigins []string
	PublicBaseURL    string
	MaxUploadBytes   int64

	DatabaseURL string
	RedisURL    string

	RateLimitRPS   float64
	RateLimitBurst int

	FreeUsageLimit int
	QuotaSource    string

	IdentityAPIURL       string
	IdentitySecretKey    string
	IdentityJWTPublicKey string
	JWTSecret            string

	LLMBaseURL      string
	LLMAPIKey       string
	LLMArticleModel string
	LLMTitleModel   string
	LLMTimeout      time.Duration

	ImageAPIURL       string
	ImageAPIKey       string
	ImagePollInterval time.Duration
	ImagePollAttempts int

	MediaBackend    string
	CloudinaryURL   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
	LocalMediaDir   string
}

// Load reads configuration from environment variables, falling back to an
// optional .env file and then to defaults.
func Load() Config {
	v := viper.New()
	setDefaults(v)
	loadEnvFiles(v, ".env", "cmd/.env")
	v.AutomaticEnv()

	return Config{
		Port:             v.GetString("PORT"),
		Env:              normalizeEnv(v.GetString("ENV")),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		CORSAllowOrigins: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		PublicBaseURL:    strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		MaxUploadBytes:   v.GetInt64("MAX_UPLOAD_BYTES"),

		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		FreeUsageLimit: v.GetInt("FREE_USAGE_LIMIT"),
		QuotaSource:    normalizeQuotaSource(v.GetString("QUOTA_SOURCE")),

		IdentityAPIURL:       strings.TrimRight(v.GetString("IDENTITY_API_URL"), "/"),
		IdentitySecretKey:    v.GetString("IDENTITY_SECRET_KEY"),
		IdentityJWTPublicKey: v.GetString("IDENTITY_JWT_PUBLIC_KEY"),
		JWTSecret:            v.GetString("JWT_SECRET"),

		LLMBaseURL:      strings.TrimRight(v.GetString("LLM_BASE_URL"), "/"),
		LLMAPIKey:       v.GetString("LLM_API_KEY"),
		LLMArticleModel: v.GetString("LLM_ARTICLE_MODEL"),
		LLMTitleModel:   v.GetString("LLM_TITLE_MODEL"),
		LLMTimeout:      time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second,

		ImageAPIURL:       strings.TrimRight(v.GetString("IMAGE_API_URL"), "/"),
		ImageAPIKey:       v.GetString("IMAGE_API_KEY"),
		ImagePollInterval: v.GetDuration("IMAGE_POLL_INTERVAL"),
		ImagePollAttempts: v.GetInt("IMAGE_POLL_ATTEMPTS"),

		MediaBackend:    normalizeMediaBackend(v.GetString("MEDIA_BACKEND")),
		CloudinaryURL:   v.GetString("CLOUDINARY_URL"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		S3PublicBaseURL: strings.TrimRight(v.GetString("S3_PUBLIC_BASE_URL"), "/"),
		LocalMediaDir:   v.GetString("LOCAL_MEDIA_DIR"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)

	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("FREE_USAGE_LIMIT", 10)
	v.SetDefault("QUOTA_SOURCE", "identity")

	v.SetDefault("IDENTITY_API_URL", "https://api.clerk.com")

	v.SetDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("LLM_ARTICLE_MODEL", "gemini-3-flash-preview")
	v.SetDefault("LLM_TITLE_MODEL", "gemini-2.5-flash-lite")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)

	v.SetDefault("IMAGE_API_URL", "https://api.krea.ai")
	v.SetDefault("IMAGE_POLL_INTERVAL", 2*time.Second)
	v.SetDefault("IMAGE_POLL_ATTEMPTS", 30)

	v.SetDefault("MEDIA_BACKEND", "cloudinary")
	v.SetDefault("LOCAL_MEDIA_DIR", "./data/media")
}

// loadEnvFiles merges simple KEY=VALUE files into v. Real environment
// variables still win because AutomaticEnv is consulted first.
func loadEnvFiles(v *viper.Viper, paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.MergeInConfig()
	}
}

// IsDevLike reports whether env permits in-memory fallbacks.
func IsDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeQuotaSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return "identity"
	}
}

func normalizeMediaBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "cloudinary"
	}
}
