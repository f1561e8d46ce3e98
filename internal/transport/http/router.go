// Package httptransport composes the ballot HTTP surface: middleware order,
// route groups and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"ballot/internal/platform/metrics"
	"ballot/internal/platform/middleware"
	profilehandler "ballot/internal/profile/handler"
	realtimehandler "ballot/internal/realtime/handler"
	votinghandler "ballot/internal/voting/handler"
	"ballot/pkg/platform/httputil"
)

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Voting   *votinghandler.Handler
	Profiles *profilehandler.Handler
	Realtime *realtimehandler.Handler

	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Health   map[string]HealthCheck

	AnonAPIKey     string
	AdminToken     string
	RequestTimeout time.Duration
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter mounts every route. The realtime stream sits outside the
// request timeout; admin routes are mounted only with an admin token.
func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	r.Use(middleware.Recovery(d.Logger, d.Metrics, votinghandler.RecoverVote))

	r.Get("/health", healthHandler(d.Health))
	if d.Registry != nil {
		r.Handle("/metrics", metrics.Handler(d.Registry))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(d.AnonAPIKey, d.Logger))
		if d.Realtime != nil {
			d.Realtime.Register(r)
		}
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(d.RequestTimeout))
			r.Use(middleware.ContentTypeJSON)
			if d.Voting != nil {
				d.Voting.Register(r)
			}
			if d.Profiles != nil {
				d.Profiles.Register(r)
			}
		})
	})

	if d.AdminToken != "" && d.Voting != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminToken(d.AdminToken, d.Logger))
			r.Use(middleware.Timeout(d.RequestTimeout))
			d.Voting.RegisterAdmin(r)
		})
	}
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
