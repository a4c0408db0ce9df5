package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "createkit"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"method", "route"})

	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "total",
		Help:      "Generation attempts by creation type and outcome",
	}, []string{"type", "outcome"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "generation",
		Name:      "duration_seconds",
		Help:      "End-to-end generation duration in seconds",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120},
	}, []string{"type"})

	pollAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "imagegen",
		Name:      "poll_attempts",
		Help:      "Status queries issued per image job",
		Buckets:   prometheus.LinearBuckets(1, 3, 11),
	}, []string{"outcome"})

	quotaDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "quota",
		Name:      "denials_total",
		Help:      "Gated operations refused by the quota gate",
	}, []string{"reason"})

	providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Outbound provider calls by provider and result",
	}, []string{"provider", "result"})
)

// ObserveGeneration records the outcome of one generation request.
func ObserveGeneration(creationType, outcome string, d time.Duration) {
	generationsTotal.WithLabelValues(creationType, outcome).Inc()
	generationDuration.WithLabelValues(creationType).Observe(d.Seconds())
}

// ObservePollAttempts records how many status queries an image job needed.
func ObservePollAttempts(outcome string, attempts int) {
	pollAttempts.WithLabelValues(outcome).Observe(float64(attempts))
}

// IncQuotaDenied counts a refusal by the quota gate.
func IncQuotaDenied(reason string) {
	quotaDenials.WithLabelValues(reason).Inc()
}

// IncProviderCall counts an outbound provider call.
func IncProviderCall(provider, result string) {
	providerCalls.WithLabelValues(provider, result).Inc()
}

// Middleware records request counts and latencies per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
