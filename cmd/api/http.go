// cmd/api/http.go
// Router, platform endpoints and middleware

package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

var startTime = time.Now()

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// healthChecker reports database and cache reachability
type healthChecker struct {
	db    pinger
	redis *redis.Client
}

func (h *healthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK

	database := "up"
	if err := h.db.PingContext(ctx); err != nil {
		database = "down"
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	cache := "disabled"
	if h.redis != nil {
		cache = "up"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			cache = "down"
			if code == http.StatusOK {
				status = "degraded"
			}
		}
	}

	utils.RespondWithJSON(w, code, map[string]interface{}{
		"status":    status,
		"database":  database,
		"redis":     cache,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startTime).Round(time.Second).String(),
	})
}

func newRouter(log *logging.Logger, health http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Handle("/health", health)
	r.Get("/api", apiInfo)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "Brooklyn Creative Hub API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": map[string]interface{}{
			"health":  "GET /health",
			"metrics": "GET /metrics",
			"auth": map[string]string{
				"register":  "POST /api/auth/register",
				"login":     "POST /api/auth/login",
				"refresh":   "POST /api/auth/refresh",
				"me":        "GET /api/auth/me",
				"provision": "POST /api/auth/provision",
			},
			"artists": map[string]string{
				"browse":          "GET /api/v1/artists",
				"get":             "GET /api/v1/artists/{id}",
				"me":              "GET /api/v1/artists/me",
				"update":          "PUT /api/v1/artists/me",
				"portfolios":      "GET /api/v1/artists/me/portfolios",
				"createPortfolio": "POST /api/v1/artists/me/portfolios",
				"addItem":         "POST /api/v1/artists/me/portfolios/{portfolioID}/items",
				"deleteItem":      "DELETE /api/v1/artists/me/portfolios/{portfolioID}/items/{itemID}",
			},
			"gigs": map[string]string{
				"list":          "GET /api/v1/gigs",
				"get":           "GET /api/v1/gigs/{id}",
				"create":        "POST /api/v1/gigs",
				"mine":          "GET /api/v1/gigs/mine",
				"status":        "PATCH /api/v1/gigs/{id}/status",
				"neighborhoods": "GET /api/v1/neighborhoods",
			},
			"matching": map[string]string{
				"matchGigs": "POST /api/v1/ai/match-gigs",
			},
			"payments": map[string]string{
				"createSession": "POST /api/v1/payments/sessions",
				"list":          "GET /api/v1/payments",
				"get":           "GET /api/v1/payments/{id}",
			},
			"messaging": map[string]string{
				"websocket":     "GET /ws",
				"send":          "POST /api/v1/messages",
				"conversations": "GET /api/v1/messages/conversations",
				"history":       "GET /api/v1/messages/{peerID}",
				"markRead":      "POST /api/v1/messages/{peerID}/read",
			},
			"devices": map[string]string{
				"register":   "POST /api/v1/devices",
				"unregister": "DELETE /api/v1/devices",
			},
		},
	})
}

// requestLogger logs every request and records the route metrics
func requestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			duration := time.Since(start)

			httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", duration,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
