package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/recipe-service/internal/delivery/http/handler"
	"github.com/user/recipe-service/internal/delivery/http/middleware"
	"github.com/user/recipe-service/pkg/metrics"
)

// Options configures the routes besides the API handlers.
type Options struct {
	// TmpPrefix and TmpFiles serve the downloaded recipe images. Nothing is
	// served when TmpFiles is nil.
	TmpPrefix string
	TmpFiles  http.FileSystem
	// Timeout bounds each request; zero disables it.
	Timeout time.Duration
}

func New(h *handler.Handler, logger *zap.Logger, m *metrics.Metrics, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	if opts.Timeout > 0 {
		r.Use(chimw.Timeout(opts.Timeout))
	}

	r.Get("/parse_from_url", h.HandleParseFromURL)
	r.Get("/get_parsers", h.HandleGetParsers)
	r.Get("/parse_history", h.HandleParseHistory)
	r.Get("/api/health", h.HandleHealthCheck)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	if opts.TmpFiles != nil {
		prefix := "/" + strings.Trim(opts.TmpPrefix, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(opts.TmpFiles)))
	}

	return r
}
