package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPSeconds     *prometheus.HistogramVec
	UpstreamCalls   *prometheus.CounterVec
	UpstreamErrors  *prometheus.CounterVec
	UpstreamSeconds *prometheus.HistogramVec
	InFlight        prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_http_requests_total",
			Help: "Total number of HTTP requests handled by the proxy.",
		}, []string{"method", "path", "status"}),
		HTTPSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proxy_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the proxy.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		UpstreamCalls: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_upstream_calls_total",
			Help: "Total number of calls forwarded to the upstream routing API.",
		}, []string{"operation", "status"}),
		UpstreamErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_upstream_errors_total",
			Help: "Total number of errors received from the upstream routing API.",
		}, []string{"operation"}),
		UpstreamSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proxy_upstream_request_duration_seconds",
			Help:    "Duration of requests to the upstream routing API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		InFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "proxy_upstream_in_flight",
			Help: "Current number of upstream calls in flight.",
		}),
	}
}
