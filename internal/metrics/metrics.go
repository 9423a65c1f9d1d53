package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	symbolsProcessed *prometheus.CounterVec
	sourceFallbacks  *prometheus.CounterVec
	trafficLights    *prometheus.CounterVec
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	universeSymbols  prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Pipeline metrics
	r.symbolsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickervista_symbols_processed_total",
			Help: "Total number of symbols analyzed, by the source that served the candles",
		},
		[]string{"source"},
	)
	r.sourceFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickervista_source_fallbacks_total",
			Help: "Total number of times a source was skipped for the next one",
		},
		[]string{"source"},
	)
	r.trafficLights = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickervista_traffic_lights_total",
			Help: "Total number of traffic lights assigned",
		},
		[]string{"light"},
	)
	r.pipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickervista_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)
	r.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tickervista_pipeline_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
	)
	r.universeSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tickervista_universe_symbols",
			Help: "Number of symbols in the resolved universe",
		},
	)

	reg.MustRegister(r.symbolsProcessed)
	reg.MustRegister(r.sourceFallbacks)
	reg.MustRegister(r.trafficLights)
	reg.MustRegister(r.pipelineRuns)
	reg.MustRegister(r.pipelineDuration)
	reg.MustRegister(r.universeSymbols)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordSymbol records a symbol served by source.
func (r *Registry) RecordSymbol(source string) {
	r.symbolsProcessed.WithLabelValues(source).Inc()
}

// RecordFallbacks records the sources skipped before one was accepted.
func (r *Registry) RecordFallbacks(sources []string) {
	for _, s := range sources {
		r.sourceFallbacks.WithLabelValues(s).Inc()
	}
}

// RecordTrafficLight records a classification result.
func (r *Registry) RecordTrafficLight(light string) {
	r.trafficLights.WithLabelValues(light).Inc()
}

// RecordPipelineRun records a pipeline run completion.
func (r *Registry) RecordPipelineRun(status string, duration float64) {
	r.pipelineRuns.WithLabelValues(status).Inc()
	r.pipelineDuration.Observe(duration)
}

// SetUniverseSize sets the resolved universe size.
func (r *Registry) SetUniverseSize(size int) {
	r.universeSymbols.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
