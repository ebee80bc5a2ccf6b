package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	EscrowsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swaplock_escrows_created_total",
		Help: "The total number of escrows deployed and funded",
	}, []string{"chain_id", "path"})

	EscrowsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swaplock_escrows_completed_total",
		Help: "The total number of escrows resolved by secret reveal",
	}, []string{"chain_id"})

	EscrowsRefunded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swaplock_escrows_refunded_total",
		Help: "The total number of escrows refunded after timeout",
	}, []string{"chain_id"})

	CreationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swaplock_creation_failures_total",
		Help: "Escrow creation attempts rejected, by reason",
	}, []string{"chain_id", "reason"})

	SettlementCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swaplock_settlement_callbacks_total",
		Help: "Settlement callbacks received by the order adapter",
	}, []string{"chain_id", "status"})

	DuplicateSettlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swaplock_duplicate_settlements_total",
		Help: "Settlement callbacks rejected as already processed",
	}, []string{"chain_id"})

	EventLogHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "swaplock_event_log_height",
		Help: "Sequence number of the latest record in each ledger's event log",
	}, []string{"chain_id"})

	OpenEscrows = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "swaplock_open_escrows",
		Help: "Escrows currently in the created state awaiting resolution",
	}, []string{"chain_id"})
)
