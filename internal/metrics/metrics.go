package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "cycles_total", Help: "Evaluation cycles run"},
	)
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "evaluations_total", Help: "Signal evaluations completed"},
		[]string{"symbol"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Entries committed"},
		[]string{"symbol", "side"},
	)
	CapacitySkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "capacity_skips_total", Help: "Signals dropped at the position-capacity gate"},
		[]string{"side"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders accepted by the venue"},
		[]string{"symbol", "type"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, EvaluationsTotal, TradesTotal, CapacitySkipsTotal, OrdersTotal)
}

// Serve exposes /metrics on addr in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
