package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HistoryEntries tracks the number of snapshots in the bound history.
	HistoryEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "studio_history_entries",
			Help: "Number of snapshots held in undo history",
		},
	)

	// HistoryCapturesTotal counts snapshots pushed after a debounce window.
	HistoryCapturesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_history_captures_total",
			Help: "Total number of snapshots captured into history",
		},
	)

	// RestoresTotal counts reconstructions by direction (undo, redo).
	RestoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_restores_total",
			Help: "Total number of canvas reconstructions",
		},
		[]string{"direction"},
	)

	// ReconstructIssuesTotal counts records dropped or degraded during restore.
	ReconstructIssuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_reconstruct_issues_total",
			Help: "Total number of reconstruction issues by code",
		},
		[]string{"code"},
	)

	// DebounceCoalescedTotal counts mutation events folded into a pending capture.
	DebounceCoalescedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studio_debounce_coalesced_total",
			Help: "Total number of mutation events coalesced into a pending capture",
		},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(HistoryEntries)
	prometheus.MustRegister(HistoryCapturesTotal)
	prometheus.MustRegister(RestoresTotal)
	prometheus.MustRegister(ReconstructIssuesTotal)
	prometheus.MustRegister(DebounceCoalescedTotal)
}
