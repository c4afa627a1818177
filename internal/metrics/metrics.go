// Package metrics holds the Prometheus collectors shared by vuequest
// components and the gin middleware that exposes them.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_llm_requests_total",
			Help: "LLM requests by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vuequest_llm_request_duration_seconds",
			Help:    "Latency of LLM requests",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"purpose"},
	)

	LLMRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_llm_retries_total",
			Help: "LLM request retries by purpose",
		},
		[]string{"purpose"},
	)

	LLMTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_llm_tokens_total",
			Help: "Tokens billed by purpose and direction",
		},
		[]string{"purpose", "direction"},
	)

	NormalizeOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_normalize_outcomes_total",
			Help: "Model output parses by the strategy that succeeded, or none",
		},
		[]string{"strategy"},
	)

	Fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_fallbacks_total",
			Help: "Static fallbacks served in place of generated content",
		},
		[]string{"kind", "reason"},
	)

	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_achievements_unlocked_total",
			Help: "Achievements unlocked by id",
		},
		[]string{"achievement"},
	)

	PersistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_persistence_errors_total",
			Help: "Swallowed persistence failures by key and operation",
		},
		[]string{"key", "op"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vuequest_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vuequest_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		LLMRequests,
		LLMLatency,
		LLMRetries,
		LLMTokens,
		NormalizeOutcomes,
		Fallbacks,
		AchievementsUnlocked,
		PersistenceErrors,
		HTTPRequests,
		HTTPDuration,
	)
}

// ObserveLLMRequest records one provider call.
func ObserveLLMRequest(purpose string, ok bool, latency time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	LLMRequests.WithLabelValues(purpose, outcome).Inc()
	LLMLatency.WithLabelValues(purpose).Observe(latency.Seconds())
}

// ObserveLLMTokens records the tokens one successful call consumed.
func ObserveLLMTokens(purpose string, input, output int) {
	LLMTokens.WithLabelValues(purpose, "input").Add(float64(input))
	LLMTokens.WithLabelValues(purpose, "output").Add(float64(output))
}

// Middleware counts and times every request handled by the gin engine.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		HTTPRequests.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		HTTPDuration.WithLabelValues(c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
