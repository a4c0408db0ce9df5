package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"createkit-backend/internal/creations"
	"createkit-backend/internal/generation"
	"createkit-backend/internal/identity"
	"createkit-backend/internal/imagegen"
	"createkit-backend/internal/llm"
	openai "createkit-backend/internal/llm/openai"
	"createkit-backend/internal/media"
	"createkit-backend/internal/quota"
	"createkit-backend/internal/shared/auth"
	"createkit-backend/internal/shared/breaker"
	"createkit-backend/internal/shared/config"
	"createkit-backend/internal/shared/server"
	"createkit-backend/internal/shared/server/middleware"
	"createkit-backend/internal/shared/storage/db"
	"createkit-backend/internal/shared/storage/object"
	localstore "createkit-backend/internal/shared/storage/object/local"
	s3store "createkit-backend/internal/shared/storage/object/s3"
	"createkit-backend/internal/shared/telemetry"
)

const (
	defaultS3Region    = "us-east-1"
	defaultMediaFolder = "createkit"
	mediaRoute         = "/media"
)

var errProviderNotConfigured = errors.New("provider not configured")

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Redis             *redis.Client
	Gate              *quota.Gate
	Media             media.Store
	CreationsRepo     creations.Repo
	CreationsService  *creations.Service
	GenerationService *generation.Service
	CreationsHandler  *creations.Handler
	GenerationHandler *generation.Handler
	localMediaDir     string
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB}

	verifier, err := auth.NewVerifier(cfg.IdentityJWTPublicKey, cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("auth verifier: %w", err)
	}

	limiter, err := app.buildLimiter(ctx)
	if err != nil {
		return nil, err
	}

	src, err := buildQuotaSource(cfg, sqlDB)
	if err != nil {
		return nil, err
	}
	app.Gate = quota.NewGate(src, cfg.FreeUsageLimit)

	app.Media, err = app.buildMedia(ctx)
	if err != nil {
		return nil, err
	}

	if err := app.buildServices(); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Verifier:          verifier,
		Limiter:           limiter,
		CreationsHandler:  app.CreationsHandler,
		GenerationHandler: app.GenerationHandler,
		MediaDir:          app.localMediaDir,
	})

	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{
				"fallback": "memory",
				"error":    err,
			})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func (a *App) buildLimiter(ctx context.Context) (middleware.Limiter, error) {
	raw := strings.TrimSpace(a.Config.RedisURL)
	if raw == "" {
		return middleware.NewRateLimiter(nil), nil
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if config.IsDevLike(a.Config.Env) {
			telemetry.Warn("bootstrap.redis_unreachable", map[string]any{
				"fallback": "memory",
				"error":    err,
			})
			return middleware.NewRateLimiter(nil), nil
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	a.Redis = client
	return middleware.NewRedisRateLimiter(client, nil), nil
}

// buildQuotaSource picks where free balances live. Without credentials for
// the configured source it falls back to postgres, then memory (dev only).
func buildQuotaSource(cfg config.Config, sqlDB *sql.DB) (quota.Source, error) {
	if cfg.QuotaSource == "identity" {
		client, err := identity.NewClient(cfg.IdentityAPIURL, cfg.IdentitySecretKey, 10*time.Second)
		if err == nil {
			return quota.NewIdentitySource(client), nil
		}
		if !config.IsDevLike(cfg.Env) {
			return nil, fmt.Errorf("identity quota source: %w", err)
		}
		telemetry.Warn("bootstrap.identity_unconfigured", map[string]any{"error": err})
	}
	if cfg.QuotaSource != "memory" && sqlDB != nil {
		return quota.NewPGSource(sqlDB), nil
	}
	if cfg.QuotaSource == "postgres" && !config.IsDevLike(cfg.Env) {
		return nil, fmt.Errorf("QUOTA_SOURCE=postgres requires DATABASE_URL")
	}
	return quota.NewMemorySource(), nil
}

func (a *App) buildMedia(ctx context.Context) (media.Store, error) {
	cfg := a.Config
	switch cfg.MediaBackend {
	case "cloudinary":
		cb := breaker.New(breaker.Settings{Name: "cloudinary"})
		store, err := media.NewCloudinary(cfg.CloudinaryURL, defaultMediaFolder, cb)
		if err == nil {
			return store, nil
		}
		if !config.IsDevLike(cfg.Env) {
			return nil, err
		}
		telemetry.Warn("bootstrap.cloudinary_unconfigured", map[string]any{
			"fallback": "local",
			"error":    err,
		})
	case "s3":
		region := cfg.AWSRegion
		if strings.TrimSpace(region) == "" {
			region = defaultS3Region
		}
		store, err := s3store.New(ctx, region, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return media.NewObjectStore(store, 0), nil
	}
	return media.NewObjectStore(a.buildLocalStore(), 0), nil
}

func (a *App) buildLocalStore() object.ObjectStore {
	a.localMediaDir = a.Config.LocalMediaDir
	return localstore.New(a.localMediaDir, a.Config.PublicBaseURL+mediaRoute)
}

func (a *App) buildServices() error {
	cfg := a.Config

	if a.DB != nil {
		a.CreationsRepo = &creations.PGRepo{DB: a.DB}
	} else {
		a.CreationsRepo = creations.NewMemoryRepo()
	}
	a.CreationsService = creations.NewService(a.CreationsRepo)

	var chat llm.Client
	chatClient, err := openai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout,
		breaker.New(breaker.Settings{Name: "llm"}))
	switch {
	case err == nil:
		chat = chatClient
	case config.IsDevLike(cfg.Env):
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"error": err})
		chat = unconfiguredLLM{}
	default:
		return err
	}

	var images generation.ImageGenerator
	imageClient, err := imagegen.NewClient(cfg.ImageAPIURL, cfg.ImageAPIKey, 30*time.Second,
		breaker.New(breaker.Settings{Name: "imagegen"}))
	switch {
	case err == nil:
		images = imagegen.NewPoller(imageClient, cfg.ImagePollInterval, cfg.ImagePollAttempts)
	case config.IsDevLike(cfg.Env):
		telemetry.Warn("bootstrap.imagegen_unconfigured", map[string]any{"error": err})
		images = unconfiguredImages{}
	default:
		return err
	}

	a.GenerationService = &generation.Service{
		Gate: a.Gate,
		LLM:  chat,
		Models: generation.Models{
			Article:   cfg.LLMArticleModel,
			BlogTitle: cfg.LLMTitleModel,
			Review:    cfg.LLMArticleModel,
		},
		Images:    images,
		Media:     a.Media,
		Creations: a.CreationsService,
	}

	a.CreationsHandler = creations.NewHandler(a.CreationsService)
	a.GenerationHandler = generation.NewHandler(a.GenerationService, cfg.MaxUploadBytes)
	return nil
}

type unconfiguredLLM struct{}

func (unconfiguredLLM) Complete(context.Context, llm.Request) (llm.Completion, error) {
	return llm.Completion{}, fmt.Errorf("llm: %w", errProviderNotConfigured)
}

type unconfiguredImages struct{}

func (unconfiguredImages) Generate(context.Context, string) (imagegen.Result, error) {
	return imagegen.Result{}, fmt.Errorf("imagegen: %w", errProviderNotConfigured)
}
