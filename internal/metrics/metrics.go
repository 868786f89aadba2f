// Package metrics exposes prometheus collectors for the HTTP server, document
// uploads and financial imports.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"crm-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	documents prometheus.Counter
	imported  prometheus.Counter
	rejected  prometheus.Counter
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_documents_uploaded_total",
			Help: "Documents stored for client service items.",
		}),
		imported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_transactions_imported_total",
			Help: "Financial transaction rows inserted by file imports.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crm_transactions_rejected_total",
			Help: "Financial transaction rows rejected by file imports.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.documents, m.imported, m.rejected,
	)
	return m
}

func (m *Metrics) DocumentUploaded() { m.documents.Inc() }

func (m *Metrics) RowsImported(n int) { m.imported.Add(float64(n)) }

func (m *Metrics) RowsRejected(n int) { m.rejected.Add(float64(n)) }

// Middleware counts requests by route pattern and status. Errors returned by
// later handlers are passed through untouched.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = apperr.KindOf(err).Status()
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "/" && r.Path != "*" && r.Path != "/*" {
			route = r.Path
		}
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
