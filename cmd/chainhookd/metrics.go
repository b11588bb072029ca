package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stacks-network/chainhook-engine/pkg/replay"
)

// scanMetrics mirrors pkg/replay.Summary as a set of Prometheus collectors,
// one series per chainhook uuid, so an operator can graph the same numbers
// logScanResult prints without scraping logs.
type scanMetrics struct {
	blocksScanned    *prometheus.CounterVec
	actionsTriggered *prometheus.CounterVec
	dispatchFailures *prometheus.CounterVec
	scanFailures     *prometheus.CounterVec
}

func newScanMetrics(reg *prometheus.Registry) *scanMetrics {
	factory := promauto.With(reg)
	return &scanMetrics{
		blocksScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainhookd_blocks_scanned_total",
			Help: "Blocks scanned per chainhook.",
		}, []string{"uuid"}),
		actionsTriggered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainhookd_actions_triggered_total",
			Help: "Actions triggered per chainhook.",
		}, []string{"uuid"}),
		dispatchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainhookd_dispatch_failures_total",
			Help: "Occurrence dispatch failures per chainhook.",
		}, []string{"uuid"}),
		scanFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chainhookd_scan_failures_total",
			Help: "Scan passes that returned an error, per chainhook.",
		}, []string{"uuid"}),
	}
}

// observe records one driver.Scan result. When err is non-nil only the
// scan-failure counter is incremented; any partial counts summary carries
// are not recorded.
func (m *scanMetrics) observe(uuid string, summary replay.Summary, err error) {
	if err != nil {
		m.scanFailures.WithLabelValues(uuid).Inc()
		return
	}
	m.blocksScanned.WithLabelValues(uuid).Add(float64(summary.BlocksScanned))
	m.actionsTriggered.WithLabelValues(uuid).Add(float64(summary.ActionsTriggered))
	m.dispatchFailures.WithLabelValues(uuid).Add(float64(len(summary.DispatchFailures)))
}

// serveMetrics starts the Prometheus exposition endpoint on addr in the
// background. A bind failure is logged, not fatal: scanning continues
// whether or not an operator is scraping metrics.
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics endpoint on %s stopped: %v", addr, err)
		}
	}()
	log.Printf("metrics endpoint listening on %s", addr)
}

// serveHealth starts a liveness endpoint on addr: chainhookd has no
// dependency whose health gates readiness (the bitcoin node connection and
// ordinal cache are already checked once at startup in main), so this only
// reports that the process is up and its context hasn't been cancelled.
func serveHealth(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("health endpoint on %s stopped: %v", addr, err)
		}
	}()
	log.Printf("health endpoint listening on %s", addr)
}
