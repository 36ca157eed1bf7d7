package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ImportMetrics holds the registry import pipeline collectors.
type ImportMetrics struct {
	registry *prometheus.Registry

	JobsTotal     *prometheus.CounterVec
	RowsTotal     *prometheus.CounterVec
	BatchDuration prometheus.Histogram
	ActiveJobs    prometheus.Gauge
}

// NewImportMetrics registers the collectors on a registry owned by the returned value.
func NewImportMetrics(namespace string) *ImportMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &ImportMetrics{
		registry: reg,
		JobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_jobs_total",
			Help:      "Finished import jobs by outcome",
		}, []string{"outcome"}),
		RowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Spreadsheet rows processed by result",
		}, []string{"result"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_batch_duration_seconds",
			Help:      "Time taken to commit one upsert batch",
			Buckets:   prometheus.DefBuckets,
		}),
		ActiveJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "import_active_jobs",
			Help:      "Import jobs currently running",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *ImportMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *ImportMetrics) Registry() *prometheus.Registry {
	return m.registry
}
