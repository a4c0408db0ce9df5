package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"createkit-backend/internal/shared/config"
	"createkit-backend/internal/shared/metrics"
	"createkit-backend/internal/shared/server/middleware"
	"createkit-backend/internal/shared/server/respond"
)

const (
	healthText = "CreateKit Server is running"

	groupAI      = "AI"
	groupDefault = "DEFAULT"
	groupFeed    = "FEED"
)

// RouteRegistrar attaches a feature's routes to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter wires.
type RouterDeps struct {
	Config            config.Config
	Verifier          middleware.TokenVerifier
	Limiter           middleware.Limiter
	CreationsHandler  RouteRegistrar
	GenerationHandler RouteRegistrar
	// MediaDir, when set, is served at /media for the local media backend.
	MediaDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !config.IsDevLike(deps.Config.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigins),
	)

	r.GET("/api/health", func(c *gin.Context) {
		respond.Text(c, http.StatusOK, healthText)
	})
	r.GET("/metrics", metrics.Handler())
	if deps.MediaDir != "" {
		r.Static("/media", deps.MediaDir)
	}

	api := r.Group("/api")
	api.Use(
		middleware.Auth(deps.Verifier),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rateLimitRules(deps.Config),
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.Limiter,
		}),
	)

	user := api.Group("/user")
	registerMeRoutes(user)
	if deps.CreationsHandler != nil {
		deps.CreationsHandler.RegisterRoutes(user)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api.Group("/ai"))
	}

	return r
}

// rateLimitRules derives per-group limits from the configured AI limit.
// Feed and account reads are cheap and get more headroom.
func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 10
	}
	return map[string]middleware.RateLimitRule{
		groupAI:      {Rate: rps, Burst: burst},
		groupDefault: {Rate: rps * 5, Burst: burst * 3},
		groupFeed:    {Rate: rps * 10, Burst: burst * 5},
	}
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	switch {
	case strings.HasPrefix(path, "/api/ai/"):
		return groupAI
	case path == "/api/user/get-published-creations":
		return groupFeed
	}
	return groupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
