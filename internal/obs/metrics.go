package obs

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	proxyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_proxy_requests_total",
		Help: "Proxied requests by target service and resulting status code.",
	}, []string{"service", "code"})
	proxyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_proxy_duration_seconds",
		Help:    "Upstream round-trip latency per target service.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
	authOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_auth_operations_total",
		Help: "Auth flow outcomes by operation (register, login, refresh, logout).",
	}, []string{"op", "outcome"})
)

func ObserveProxy(service string, code int, elapsed time.Duration) {
	proxyRequests.WithLabelValues(service, strconv.Itoa(code)).Inc()
	proxyLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

func CountAuthOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	authOps.WithLabelValues(op, outcome).Inc()
}
