package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	answerRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firmsight_answer_requests_total",
			Help: "Total number of answer requests reaching the pipeline.",
		},
	)
	answerUnanswerableTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firmsight_answer_unanswerable_total",
			Help: "Total number of requests where the model declined to produce SQL.",
		},
	)
	answerNoDataTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "firmsight_answer_no_data_total",
			Help: "Total number of requests whose query returned zero rows.",
		},
	)
	pipelineStageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "firmsight_pipeline_stage_duration_seconds",
			Help:    "Per-stage latency of the answer pipeline.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	catalogViewsResolved = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "firmsight_catalog_views_resolved",
			Help:    "Number of tenant views discovered per request.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
	generatorCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firmsight_generator_calls_total",
			Help: "Total text-generation collaborator calls by pass.",
		},
		[]string{"pass"},
	)
)

func init() {
	prometheus.MustRegister(
		answerRequestsTotal,
		answerUnanswerableTotal,
		answerNoDataTotal,
		pipelineStageSeconds,
		catalogViewsResolved,
		generatorCallsTotal,
	)
}

func ObserveAnswerRequest() {
	answerRequestsTotal.Inc()
}

func ObserveUnanswerable() {
	answerUnanswerableTotal.Inc()
}

func ObserveNoData() {
	answerNoDataTotal.Inc()
}

func ObservePipelineStage(stage string, elapsed time.Duration) {
	pipelineStageSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveCatalogViews(count int) {
	if count < 0 {
		count = 0
	}
	catalogViewsResolved.Observe(float64(count))
}

func ObserveGeneratorCall(pass string) {
	generatorCallsTotal.WithLabelValues(pass).Inc()
}
