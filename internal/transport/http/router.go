package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"microauth/internal/platform/health"
	"microauth/pkg/platform/middleware/caller"
	"microauth/pkg/platform/middleware/request"
	"microauth/pkg/platform/validation"
)

// Routes is implemented by feature handlers that mount their own endpoints.
type Routes interface {
	Register(r chi.Router)
}

// RouterConfig collects what NewRouter wires together. Metrics and Gatherer
// are optional.
type RouterConfig struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Tokens         caller.TokenValidator
	Health         *health.Handler
	Metrics        *request.Metrics
	Gatherer       prometheus.Gatherer
	Handlers       []Routes
}

// NewRouter wires probes, metrics and feature handlers behind the shared
// middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.Metrics))

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}
		r.Use(request.BodyLimit(validation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		r.Use(caller.Identify(cfg.Tokens, cfg.Logger))

		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})

	return r
}
