package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics counts payment lifecycle outcomes.
type PaymentMetrics struct {
	outcomes *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment counters on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcomes_total",
		Help: "Payment lifecycle outcomes by result.",
	}, []string{"outcome"})
	reg.MustRegister(outcomes)
	return &PaymentMetrics{outcomes: outcomes}
}

// IncCaptured counts a successful capture.
func (p *PaymentMetrics) IncCaptured() {
	p.inc("captured")
}

// IncFailed counts a failed verification or capture.
func (p *PaymentMetrics) IncFailed() {
	p.inc("failed")
}

// IncRefunded counts an issued refund.
func (p *PaymentMetrics) IncRefunded() {
	p.inc("refunded")
}

func (p *PaymentMetrics) inc(outcome string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(outcome).Inc()
}
