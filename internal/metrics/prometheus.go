package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 行情服务的 prometheus 指标
type Registry struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	MarketsReturned prometheus.Histogram
	RateLimited     prometheus.Counter
}

// NewRegistry 使用独立 registry，避免测试之间重复注册
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "predictpark_market_requests_total",
				Help: "Market list requests by result",
			},
			[]string{"result"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "predictpark_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route", "status"},
		),
		MarketsReturned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "predictpark_markets_returned",
				Help:    "Number of markets returned per request after filtering",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "predictpark_rate_limited_total",
				Help: "Requests rejected by the token bucket",
			},
		),
	}
	r.reg.MustRegister(
		r.Requests,
		r.RequestDuration,
		r.MarketsReturned,
		r.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler /metrics
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer 测试里读取指标
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
