package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dealsheet/internal/domain"
	"dealsheet/internal/parser"
)

const namespace = "dealsheet"

// Conversion outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeRejected         = "rejected"
	OutcomeInsufficientText = "insufficient_text"
	OutcomeExtraction       = "extraction_error"
	OutcomeResponseFormat   = "response_format_error"
	OutcomeRateLimited      = "rate_limited"
	OutcomeService          = "service_error"
	OutcomeRender           = "render_error"
	OutcomeCanceled         = "canceled"
	OutcomeError            = "error"
)

// Metrics holds the Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	conversions   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	placements    prometheus.Histogram
	textChars     prometheus.Histogram
	archives      *prometheus.CounterVec
	requests      *prometheus.CounterVec
	requestTimer  *prometheus.HistogramVec
}

// New registers all collectors on registry. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: registry,
		conversions: newCounter(registry, "conversions_total",
			"Count of deal letter conversions by outcome.",
			[]string{"outcome"}),
		stageDuration: newHistogramVec(registry, "stage_duration_seconds",
			"Seconds spent in each conversion stage.",
			[]string{"stage"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120}),
		placements: newHistogram(registry, "placements_per_letter",
			"Placements extracted per converted deal letter.",
			[]float64{0, 1, 2, 5, 10, 20, 50}),
		textChars: newHistogram(registry, "extracted_text_chars",
			"Characters of text extracted per PDF.",
			prometheus.ExponentialBuckets(64, 4, 8)),
		archives: newCounter(registry, "archives_total",
			"Count of workbook archive uploads by result.",
			[]string{"result"}),
		requests: newCounter(registry, "http_requests_total",
			"Count of HTTP requests by route, method and status.",
			[]string{"route", "method", "status"}),
		requestTimer: newHistogramVec(registry, "http_request_duration_seconds",
			"Seconds to serve HTTP requests by route.",
			[]string{"route", "method"},
			prometheus.DefBuckets),
	}
}

func newCounter(registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
	registry.MustRegister(counter)
	return counter
}

func newHistogram(registry *prometheus.Registry, name, help string, buckets []float64) prometheus.Histogram {
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
	registry.MustRegister(histogram)
	return histogram
}

func newHistogramVec(registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	registry.MustRegister(histogram)
	return histogram
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		MaxRequestsInFlight: 5,
		Timeout:             10 * time.Second,
	})
}

// ObserveStage records how long a conversion stage took.
func (m *Metrics) ObserveStage(stage domain.Stage, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// RecordConversion counts a finished conversion under the outcome derived
// from err.
func (m *Metrics) RecordConversion(err error) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(Outcome(err)).Inc()
}

// ObserveLetter records the size of a successfully parsed letter.
func (m *Metrics) ObserveLetter(textChars, placements int) {
	if m == nil {
		return
	}
	m.textChars.Observe(float64(textChars))
	m.placements.Observe(float64(placements))
}

// RecordArchive counts an archive attempt.
func (m *Metrics) RecordArchive(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.archives.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestTimer.WithLabelValues(route, method).Observe(d.Seconds())
}

// Outcome maps a conversion error onto a low-cardinality label.
func Outcome(err error) string {
	var rle *parser.RateLimitError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientText):
		return OutcomeInsufficientText
	case errors.Is(err, domain.ErrExtraction):
		return OutcomeExtraction
	case errors.Is(err, domain.ErrResponseFormat):
		return OutcomeResponseFormat
	case errors.As(err, &rle):
		return OutcomeRateLimited
	case errors.Is(err, domain.ErrService):
		return OutcomeService
	case errors.Is(err, domain.ErrRender):
		return OutcomeRender
	case errors.Is(err, domain.ErrMissingFile),
		errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrFileTooLarge):
		return OutcomeRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
