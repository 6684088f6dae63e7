package obs

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/barber-billing/internal/events"
)

var (
	domainOnce sync.Once

	// TransactionsCommitted counts committed bills by payment mode and membership.
	TransactionsCommitted *prometheus.CounterVec
	// RevenueCommitted sums the final amount of committed bills in minor units.
	RevenueCommitted *prometheus.CounterVec
	// ValidationFailures counts rejected billing forms per failing field.
	ValidationFailures *prometheus.CounterVec
	// RevenueToday holds today's revenue in minor units as of the last close-out run.
	RevenueToday prometheus.Gauge
	// ReportCache counts analytics report cache lookups by result.
	ReportCache *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TransactionsCommitted = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_committed_total",
			Help:      "Count of committed transactions.",
		}, []string{"payment_mode", "membership"}))
		RevenueCommitted = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_committed_minor_total",
			Help:      "Sum of committed final amounts in minor currency units.",
		}, []string{"payment_mode"}))
		ValidationFailures = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_validation_failures_total",
			Help:      "Count of billing form validation failures per field.",
		}, []string{"field"}))
		RevenueToday = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "revenue_today_minor",
			Help:      "Revenue of the current day in minor currency units at the last close-out.",
		}))
		ReportCache = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_report_cache_total",
			Help:      "Analytics report cache lookups by result.",
		}, []string{"result"}))
	})
}

// ObserveValidationFailure increments the failure counter for each field.
func ObserveValidationFailure(fields ...string) {
	if ValidationFailures == nil {
		return
	}
	for _, f := range fields {
		ValidationFailures.WithLabelValues(f).Inc()
	}
}

// ObserveReportCache records a cache hit or miss.
func ObserveReportCache(hit bool) {
	if ReportCache == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	ReportCache.WithLabelValues(result).Inc()
}

// SetRevenueToday publishes the latest close-out revenue.
func SetRevenueToday(amount int64) {
	if RevenueToday == nil {
		return
	}
	RevenueToday.Set(float64(amount))
}

// TransactionMetrics updates the commit counters from transaction.created events.
type TransactionMetrics struct{}

type committedPayload struct {
	PaymentMode   string `json:"paymentMode"`
	HasMembership bool   `json:"hasMembership"`
	FinalAmount   int64  `json:"finalAmount"`
}

// Notify implements events.Notifier.
func (TransactionMetrics) Notify(_ context.Context, event events.Event) error {
	if event.Topic != events.TopicTransactionCreated || TransactionsCommitted == nil {
		return nil
	}
	var p committedPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		return err
	}
	TransactionsCommitted.WithLabelValues(p.PaymentMode, strconv.FormatBool(p.HasMembership)).Inc()
	if RevenueCommitted != nil {
		RevenueCommitted.WithLabelValues(p.PaymentMode).Add(float64(p.FinalAmount))
	}
	return nil
}
