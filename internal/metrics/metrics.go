package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "buzzbuilder"

var requestLabels = []string{"method", "path", "status"}

// HTTPCollector owns the process registry and records inbound API traffic.
type HTTPCollector struct {
	registry *prometheus.Registry
	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
	inFlight prometheus.Gauge
}

// NewHTTPCollector builds a registry with Go runtime and process collectors
// plus request metrics.
func NewHTTPCollector() (*HTTPCollector, error) {
	c := &HTTPCollector{
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 15, 60},
		}, requestLabels),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests served.",
		}, requestLabels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "API requests currently being served.",
		}),
	}

	for _, col := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.latency,
		c.requests,
		c.inFlight,
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Registry lets the pipeline metrics share the same exposition endpoint.
func (c *HTTPCollector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *HTTPCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// InstrumentHandler counts and times every request passing through next.
func (c *HTTPCollector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.inFlight.Inc()
		defer c.inFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   routeLabel(r.URL.Path),
			"status": strconv.Itoa(rec.status),
		}
		c.requests.With(labels).Inc()
		c.latency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// routeLabel maps /history/<id> onto one series.
func routeLabel(path string) string {
	if id, ok := strings.CutPrefix(path, "/history/"); ok && id != "" {
		return "/history/{id}"
	}
	return path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
