package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ParsesTotal         *prometheus.CounterVec
	FieldFailuresTotal  *prometheus.CounterVec
	ImageDownloadsTotal *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	TmpFilesRemoved     prometheus.Counter
}

// New registers the application metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ParsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_parses_total",
				Help: "Total number of parse requests by site and outcome.",
			},
			[]string{"domain", "status"}, // status: success, cached, no_parser
		),
		FieldFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_field_failures_total",
				Help: "Recipe fields that could not be extracted and were left empty.",
			},
			[]string{"domain", "field"},
		),
		ImageDownloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_image_downloads_total",
				Help: "Recipe image downloads by result.",
			},
			[]string{"result"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipe_fetch_duration_seconds",
				Help:    "Duration of recipe page fetches.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45},
			},
			[]string{"domain"},
		),
		TmpFilesRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "recipe_tmp_files_removed_total",
				Help: "Expired temporary files removed by the janitor.",
			},
		),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) IncParse(domain, status string) {
	if m == nil {
		return
	}
	m.ParsesTotal.WithLabelValues(domain, status).Inc()
}

func (m *Metrics) IncFieldFailure(domain, field string) {
	if m == nil {
		return
	}
	m.FieldFailuresTotal.WithLabelValues(domain, field).Inc()
}

func (m *Metrics) IncImageDownload(result string) {
	if m == nil {
		return
	}
	m.ImageDownloadsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFetch(domain string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(domain).Observe(d.Seconds())
}

func (m *Metrics) AddTmpFilesRemoved(n int) {
	if m == nil {
		return
	}
	m.TmpFilesRemoved.Add(float64(n))
}
