package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics on its own registry, so several
// collectors can coexist in one process (tests build one per case).
type Collector struct {
	registry *prometheus.Registry

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	ImportRowsTotal    *prometheus.CounterVec
	ImportBatchSize    prometheus.Histogram
	ImportDuration     prometheus.Histogram
	ImportErrorsTotal  *prometheus.CounterVec
	HistoryImportTotal *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by route, method, and status",
			},
			[]string{"route", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route"},
		),

		ImportRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_rows_total",
				Help:      "Spreadsheet rows seen by the incident importer by outcome",
			},
			[]string{"outcome"}, // "read", "inserted", "dropped"
		),

		ImportBatchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_batch_size",
				Help:      "Number of rows per insert batch",
				Buckets:   []float64{10, 50, 100, 250, 500, 1000},
			},
		),

		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "import_duration_seconds",
				Help:      "Duration of incident imports in seconds",
				Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
		),

		ImportErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_errors_total",
				Help:      "Incident import failures by step",
			},
			[]string{"step"},
		),

		HistoryImportTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_import_rows_total",
				Help:      "History import rows by outcome",
			},
			[]string{"outcome"}, // "imported", "failed"
		),
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordAPIRequest(route, method, status string, took time.Duration) {
	c.APIRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(route).Observe(took.Seconds())
}

func (c *Collector) RecordImportRows(outcome string, n int) {
	if n > 0 {
		c.ImportRowsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

func (c *Collector) RecordImportError(step string) {
	c.ImportErrorsTotal.WithLabelValues(step).Inc()
}

func (c *Collector) RecordHistoryRow(outcome string) {
	c.HistoryImportTotal.WithLabelValues(outcome).Inc()
}
