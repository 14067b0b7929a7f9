// Package metrics registers the Prometheus collectors and exposes them as
// echo middleware plus a scrape handler.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.DefaultRegisterer

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by path/method/code.",
		},
		[]string{"path", "method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests by path/method/code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "code"},
	)

	assessmentsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessments_submitted_total",
			Help: "Assessments submitted by group, split into new and updated.",
		},
		[]string{"group", "kind"},
	)

	teamsImported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teams_imported_total",
			Help: "Teams created through CSV import by group.",
		},
		[]string{"group"},
	)

	emailsQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_queued_total",
			Help: "Notification emails handed to the mail queue by template.",
		},
		[]string{"template"},
	)
)

func init() {
	collectors := []prometheus.Collector{
		httpRequests,
		httpDuration,
		assessmentsSubmitted,
		teamsImported,
		emailsQueued,
	}

	for _, c := range collectors {
		_ = registry.Register(c)
	}
}

// Middleware records request counts and latencies. The scrape endpoint itself
// is excluded.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		path := ctx.Path()
		if path == "" {
			path = ctx.Request().URL.Path
		}
		if path == "/metrics" {
			return err
		}

		code := strconv.Itoa(ctx.Response().Status)
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				code = strconv.Itoa(he.Code)
			}
		}
		method := ctx.Request().Method

		httpRequests.WithLabelValues(path, method, code).Inc()
		httpDuration.WithLabelValues(path, method, code).Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(ctx echo.Context) error {
		h.ServeHTTP(ctx.Response(), ctx.Request())
		return nil
	}
}

func ObserveSubmission(group string, updated bool) {
	kind := "new"
	if updated {
		kind = "updated"
	}
	assessmentsSubmitted.WithLabelValues(group, kind).Inc()
}

func ObserveImport(group string, count int) {
	teamsImported.WithLabelValues(group).Add(float64(count))
}

func ObserveEmailQueued(template string) {
	emailsQueued.WithLabelValues(template).Inc()
}
