package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersTotal,
		capturesTotal,
		paymentsRevenueTotal,
	)
}

var (
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Gateway order creations by result (created/failed).",
		},
		[]string{"result"},
	)

	capturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "captures_total",
			Help: "Settlement attempts by ingress path and result.",
		},
		[]string{"path", "result"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "Total monetary value of captured payments, labeled by currency.",
		},
		[]string{"currency"},
	)
)

func IncOrder(result string) {
	ordersTotal.WithLabelValues(norm(result)).Inc()
}

// IncCapture records one settlement attempt. path is "redirect" or "webhook";
// result is one of captured/alreadydone/unauthorized/not_found/error.
func IncCapture(path, result string) {
	capturesTotal.WithLabelValues(norm(path), norm(result)).Inc()
}

func AddPaymentRevenue(currency string, amount float64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(amount)
}
