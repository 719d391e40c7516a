package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parfum"

// Metrics 服務指標，使用獨立的 registry
type Metrics struct {
	registry *prometheus.Registry

	resolutions     *prometheus.CounterVec
	insights        *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	aliases         prometheus.Gauge
	catalogEntries  prometheus.Gauge
}

// New 建立並註冊所有指標
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Note name resolutions by matching tier",
		}, []string{"tier"}),
		insights: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_total",
			Help:      "Insight computations by cache outcome",
		}, []string{"cache"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		aliases: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "user_aliases",
			Help:      "Number of user defined aliases",
		}),
		catalogEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_entries",
			Help:      "Number of canonical catalog entries",
		}),
	}
}

// ObserveResolution 記錄一次名稱解析
func (m *Metrics) ObserveResolution(tier string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(tier).Inc()
}

// ObserveInsights 記錄一次分析，cached 表示是否命中快取
func (m *Metrics) ObserveInsights(cached bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cached {
		label = "hit"
	}
	m.insights.WithLabelValues(label).Inc()
}

// ObserveRequest 記錄 HTTP 請求
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// SetAliases 更新使用者別名數量
func (m *Metrics) SetAliases(n int) {
	if m == nil {
		return
	}
	m.aliases.Set(float64(n))
}

// SetCatalogEntries 更新目錄條目數量
func (m *Metrics) SetCatalogEntries(n int) {
	if m == nil {
		return
	}
	m.catalogEntries.Set(float64(n))
}

// Handler /metrics 端點
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 回傳底層 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
