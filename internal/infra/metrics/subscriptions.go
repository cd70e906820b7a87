package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsGrantedTotal,
		subscriptionsExpiredTotal,
		transactionsReconciledTotal,
	)
}

var (
	subscriptionsGrantedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_granted_total",
			Help: "Subscription grants/extensions by kind (new/extended).",
		},
		[]string{"kind"},
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Stored subscription rows flipped to expired by the worker.",
		},
	)

	transactionsReconciledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_reconciled_total",
			Help: "Stale in_transit transactions marked failed by the reconciler.",
		},
	)
)

func IncSubscriptionGranted(kind string) {
	subscriptionsGrantedTotal.WithLabelValues(norm(kind)).Inc()
}

func AddSubscriptionsExpired(n int64) {
	subscriptionsExpiredTotal.Add(float64(n))
}

func AddTransactionsReconciled(n int64) {
	transactionsReconciledTotal.Add(float64(n))
}
