// Package metrics records Prometheus metrics for the exchanges a fetchax
// Client sends.
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	client := fetchax.MustCreate(m)
//
// A Collector is an Option, which installs its Middleware.  The middleware
// sees every exchange, including the ones later rejected with a
// *fetchax.StatusError.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gemalto/fetchax"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatusError is the status label of exchanges which failed in the
// transport, without a response.
const StatusError = "error"

// Collector holds the request metrics.  It is safe for concurrent use.
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
}

// New creates a Collector and registers its metrics with reg.  Panics if
// the metrics are already registered with reg.
func New(reg prometheus.Registerer) *Collector {
	return NewWithNamespace(reg, "fetchax")
}

// NewWithNamespace is New with a metric name prefix other than "fetchax".
func NewWithNamespace(reg prometheus.Registerer, namespace string) *Collector {
	return &Collector{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests sent",
			},
			[]string{"method", "host", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds, until the response headers arrive",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "host", "status"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently in flight",
			},
			[]string{"method", "host"},
		),
	}
}

// Apply implements fetchax.Option.
func (c *Collector) Apply(cfg *fetchax.Config) error {
	return cfg.Apply(fetchax.Use(c.Middleware))
}

// Middleware implements fetchax.Middleware.
func (c *Collector) Middleware(next fetchax.Doer) fetchax.Doer {
	return fetchax.DoerFunc(func(req *http.Request) (*http.Response, error) {
		method, host := req.Method, req.URL.Host

		inFlight := c.requestsInFlight.WithLabelValues(method, host)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		resp, err := next.Do(req)
		elapsed := time.Since(start)

		status := StatusError
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		c.requestsTotal.WithLabelValues(method, host, status).Inc()
		c.requestDuration.WithLabelValues(method, host, status).Observe(elapsed.Seconds())

		return resp, err
	})
}
