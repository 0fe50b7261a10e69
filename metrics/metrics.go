package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives engine observations. The engine never depends on a
// concrete backend so embedded deployments can run without a metrics
// endpoint.
type Recorder interface {
	// ObserveRetrieval records one hybrid retrieval call.
	ObserveRetrieval(strategy, fusionMethod string, elapsed time.Duration, score float64)
	// ObserveIngestion records one ingestion call and how many chunks it
	// produced.
	ObserveIngestion(documents, chunks int)
}

// PrometheusRecorder exports engine observations to a Prometheus registry.
type PrometheusRecorder struct {
	retrievals        *prometheus.CounterVec
	retrievalDuration prometheus.Histogram
	finalScore        prometheus.Histogram
	documents         prometheus.Counter
	chunks            prometheus.Counter
}

// NewPrometheus creates a recorder registered on the given registerer.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		retrievals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphrag",
			Name:      "retrievals_total",
			Help:      "Hybrid retrieval calls by strategy and fusion method.",
		}, []string{"strategy", "fusion_method"}),
		retrievalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphrag",
			Name:      "retrieval_duration_seconds",
			Help:      "End-to-end hybrid retrieval latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		finalScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "graphrag",
			Name:      "retrieval_final_score",
			Help:      "Fused relevance score distribution.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		documents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "graphrag",
			Name:      "documents_ingested_total",
			Help:      "Documents accepted by the vector store.",
		}),
		chunks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "graphrag",
			Name:      "chunks_created_total",
			Help:      "Chunks produced during ingestion.",
		}),
	}
}

func (r *PrometheusRecorder) ObserveRetrieval(strategy, fusionMethod string, elapsed time.Duration, score float64) {
	r.retrievals.WithLabelValues(strategy, fusionMethod).Inc()
	r.retrievalDuration.Observe(elapsed.Seconds())
	r.finalScore.Observe(score)
}

func (r *PrometheusRecorder) ObserveIngestion(documents, chunks int) {
	r.documents.Add(float64(documents))
	r.chunks.Add(float64(chunks))
}

// Nop discards all observations.
type Nop struct{}

func (Nop) ObserveRetrieval(strategy, fusionMethod string, elapsed time.Duration, score float64) {}
func (Nop) ObserveIngestion(documents, chunks int)                                              {}
