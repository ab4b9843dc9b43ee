package blockproc

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type processorMetrics struct {
	connected    prometheus.Counter
	disconnected prometheus.Counter
	applied      *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	doubleSigns  prometheus.Counter
	connectTime  prometheus.Histogram
}

var (
	metricsOnce     sync.Once
	metricsRegistry *processorMetrics
)

func processorStats() *processorMetrics {
	metricsOnce.Do(func() {
		metricsRegistry = &processorMetrics{
			connected: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_blocks_connected_total",
				Help: "Number of blocks connected to the ledger.",
			}),
			disconnected: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_blocks_disconnected_total",
				Help: "Number of blocks disconnected from the ledger.",
			}),
			applied: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_custom_txs_applied_total",
				Help: "Custom transactions applied by type.",
			}, []string{"type"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_custom_txs_rejected_total",
				Help: "Custom transactions refused by type and reason.",
			}, []string{"type", "code"}),
			doubleSigns: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_double_signs_total",
				Help: "Double signs detected in connected headers.",
			}),
			connectTime: prometheus.NewHistogram(prometheus.HistogramOpts{
				Name:    "ledger_block_connect_seconds",
				Help:    "Time spent connecting a block.",
				Buckets: prometheus.DefBuckets,
			}),
		}
		prometheus.MustRegister(
			metricsRegistry.connected,
			metricsRegistry.disconnected,
			metricsRegistry.applied,
			metricsRegistry.rejected,
			metricsRegistry.doubleSigns,
			metricsRegistry.connectTime,
		)
	})
	return metricsRegistry
}
