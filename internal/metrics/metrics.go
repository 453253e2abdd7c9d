package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ledgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bullion",
		Name:      "ledger_mutations_total",
		Help:      "Committed ledger transaction mutations by kind and operation.",
	}, []string{"kind", "op"})

	reconciliationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bullion",
		Name:      "reconciliation_failures_total",
		Help:      "Mutations aborted because the nominee balance could not be reconciled.",
	})

	balanceRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bullion",
		Name:      "balance_repairs_total",
		Help:      "Nominee balances found out of sync and rewritten from the ledger.",
	})

	ledgerReadSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bullion",
		Name:      "ledger_read_seconds",
		Help:      "Latency of ledger aggregation reads.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"scope"})
)

func LedgerMutation(kind, op string) {
	ledgerMutations.WithLabelValues(kind, op).Inc()
}

func ReconciliationFailure() {
	reconciliationFailures.Inc()
}

func BalanceRepaired() {
	balanceRepairs.Inc()
}

// ObserveLedgerRead is meant to be deferred with the start time of the read.
func ObserveLedgerRead(scope string, start time.Time) {
	ledgerReadSeconds.WithLabelValues(scope).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
