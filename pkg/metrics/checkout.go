package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records settlement-path counters and gateway latency.
type CheckoutMetrics struct {
	ordersCreated   *prometheus.CounterVec
	paymentFailures *prometheus.CounterVec
	refundsIssued   prometheus.Counter
	gatewayLatency  *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, by payment method.",
	}, []string{"payment_method"})
	paymentFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_failures_total",
		Help: "Payment verification and gateway failures, by reason.",
	}, []string{"reason"})
	refundsIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "refunds_issued_total",
		Help: "Refunds credited back to wallets.",
	})
	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_seconds",
		Help:    "Latency of payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(ordersCreated, paymentFailures, refundsIssued, gatewayLatency)
	return &CheckoutMetrics{
		ordersCreated:   ordersCreated,
		paymentFailures: paymentFailures,
		refundsIssued:   refundsIssued,
		gatewayLatency:  gatewayLatency,
	}
}

// IncOrderCreated increments the created-orders counter for a payment method.
func (c *CheckoutMetrics) IncOrderCreated(paymentMethod string) {
	if c == nil || c.ordersCreated == nil {
		return
	}
	c.ordersCreated.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncPaymentFailure increments the payment failure counter for a reason.
func (c *CheckoutMetrics) IncPaymentFailure(reason string) {
	if c == nil || c.paymentFailures == nil {
		return
	}
	c.paymentFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncRefundIssued increments the refund counter.
func (c *CheckoutMetrics) IncRefundIssued() {
	if c == nil || c.refundsIssued == nil {
		return
	}
	c.refundsIssued.Inc()
}

// ObserveGatewayLatency records one gateway call duration.
func (c *CheckoutMetrics) ObserveGatewayLatency(operation string, duration time.Duration) {
	if c == nil || c.gatewayLatency == nil {
		return
	}
	c.gatewayLatency.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
