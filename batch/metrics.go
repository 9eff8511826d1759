package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

type metrics struct {
	documents *prometheus.CounterVec
	bytes     prometheus.Histogram
	duration  prometheus.Histogram
}

// newMetrics r 为 nil 时指标只在内存中累计
func newMetrics(r prometheus.Registerer) *metrics {
	return &metrics{
		documents: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "arenajson_documents_total",
			Help: "Total number of parsed documents by outcome.",
		}, []string{"outcome"}),
		bytes: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "arenajson_document_bytes",
			Help:    "Size of parsed documents in bytes.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 10),
		}),
		duration: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Name:    "arenajson_parse_duration_seconds",
			Help:    "Time taken to parse a single document.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

func (m *metrics) observe(size int, d time.Duration, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.documents.WithLabelValues(outcome).Inc()
	m.bytes.Observe(float64(size))
	m.duration.Observe(d.Seconds())
}
