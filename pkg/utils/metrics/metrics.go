// Package metrics exposes Prometheus collectors for checks, suggestions and
// dictionary reloads. A nil *Recorder records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quill"

// Recorder holds the collectors on a private registry
type Recorder struct {
	registry     *prometheus.Registry
	checks       *prometheus.CounterVec
	words        *prometheus.CounterVec
	misspellings *prometheus.CounterVec
	suggest      *prometheus.HistogramVec
	reloads      *prometheus.CounterVec
	requests     *prometheus.CounterVec
}

// New creates a Recorder with process and Go runtime collectors
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Number of text checks.",
		}, []string{"dictionary"}),
		words: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checked_words_total",
			Help:      "Number of words checked.",
		}, []string{"dictionary"}),
		misspellings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "misspellings_total",
			Help:      "Number of misspelled words found.",
		}, []string{"dictionary"}),
		suggest: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_duration_seconds",
			Help:      "Latency of suggestion generation per word.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"dictionary"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dictionary_reloads_total",
			Help:      "Number of dictionary loads by result.",
		}, []string{"dictionary", "result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests by route and status.",
		}, []string{"route", "method", "status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.checks, r.words, r.misspellings, r.suggest, r.reloads, r.requests,
	)
	return r
}

// Registry exposes the registry for tests and custom handlers
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveCheck counts one checked text
func (r *Recorder) ObserveCheck(dictionary string, words, misspellings int) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues(dictionary).Inc()
	r.words.WithLabelValues(dictionary).Add(float64(words))
	r.misspellings.WithLabelValues(dictionary).Add(float64(misspellings))
}

// ObserveSuggest records the time spent suggesting for one word
func (r *Recorder) ObserveSuggest(dictionary string, d time.Duration) {
	if r == nil {
		return
	}
	r.suggest.WithLabelValues(dictionary).Observe(d.Seconds())
}

// ObserveReload counts a dictionary load
func (r *Recorder) ObserveReload(dictionary string, err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.reloads.WithLabelValues(dictionary, result).Inc()
}

// ObserveRequest counts an HTTP request
func (r *Recorder) ObserveRequest(route, method string, status int) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, method, http.StatusText(status)).Inc()
}
