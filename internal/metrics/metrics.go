// Prometheus instrumentation for annotation sessions
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smoke-annotator/internal/annotation"
)

// Metrics owns a private registry with the annotator collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rectangleEvents *prometheus.CounterVec
	openRectangles  prometheus.Gauge
	submissions     *prometheus.CounterVec
	submitDuration  prometheus.Histogram
	imageLoads      *prometheus.CounterVec
	detectionLabels *prometheus.CounterVec
	sessions        prometheus.Counter
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rectangleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotator_rectangle_events_total",
			Help: "Structural changes to the rectangle list, by kind",
		}, []string{"kind"}),
		openRectangles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "annotator_open_rectangles",
			Help: "Rectangles on the detection currently being edited",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotator_submissions_total",
			Help: "Submitted annotations and sequence labels, by kind and result",
		}, []string{"kind", "result"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "annotator_submit_duration_seconds",
			Help:    "Time spent persisting a submission",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		imageLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotator_image_loads_total",
			Help: "Detection image loads, by result",
		}, []string{"result"}),
		detectionLabels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "annotator_detection_labels_total",
			Help: "Detection verdicts given in sequence review",
		}, []string{"label"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "annotator_sessions_total",
			Help: "Detection sessions opened",
		}),
	}

	m.registry.MustRegister(
		m.rectangleEvents,
		m.openRectangles,
		m.submissions,
		m.submitDuration,
		m.imageLoads,
		m.detectionLabels,
		m.sessions,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AnnotationListener returns an engine listener feeding the rectangle metrics.
func (m *Metrics) AnnotationListener() annotation.Listener {
	return func(ev annotation.Event) {
		if m == nil {
			return
		}
		m.rectangleEvents.WithLabelValues(ev.Kind.String()).Inc()
		m.openRectangles.Set(float64(ev.Total))
	}
}

// ObserveSessionOpened counts a detection that finished loading for
// annotation. Engine resets are not sessions: opening and closing a
// detection resets the engine several times.
func (m *Metrics) ObserveSessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// ObserveSubmit records one submission attempt.
func (m *Metrics) ObserveSubmit(kind string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, result(err)).Inc()
	if err == nil {
		m.submitDuration.Observe(took.Seconds())
	}
}

// ObserveImageLoad records one image load.
func (m *Metrics) ObserveImageLoad(err error) {
	if m == nil {
		return
	}
	m.imageLoads.WithLabelValues(result(err)).Inc()
}

// ObserveDetectionLabel records a smoke or false-positive verdict.
func (m *Metrics) ObserveDetectionLabel(smoke bool) {
	if m == nil {
		return
	}
	label := "false_positive"
	if smoke {
		label = "smoke"
	}
	m.detectionLabels.WithLabelValues(label).Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
