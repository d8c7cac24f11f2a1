package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServerMetrics contadores e histograma de latencia del servidor HTTP.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Checkouts *prometheus.CounterVec
}

// NewServerMetrics registra las métricas en el registry por defecto.
func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmago",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP.",
	}, []string{"path", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "farmago",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "Latencia HTTP en milisegundos.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"path"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmago",
		Subsystem: service,
		Name:      "checkouts_total",
		Help:      "Resultados del checkout (success, insufficient_stock, error).",
	}, []string{"result"})

	prometheus.MustRegister(requests, latency, checkouts)
	return &ServerMetrics{Requests: requests, LatencyMS: latency, Checkouts: checkouts}
}
