package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics содержит метрики жизненного цикла заказов и платежей.
type LifecycleMetrics struct {
	// Счётчики операций
	ordersCreated       prometheus.Counter
	transitionsAccepted prometheus.Counter
	transitionsRejected prometheus.Counter
	autoAdvanced        prometheus.Counter
	paymentsRecorded    prometheus.Counter
	refundsIssued       prometheus.Counter

	// Гистограмма времени выполнения операций по типу
	operationDuration *prometheus.HistogramVec

	// Счётчики событий timeline и outbox
	timelineEvents prometheus.Counter
	outboxEvents   prometheus.Counter

	// Gauge для заказов в работе (не в терминальном статусе)
	activeOrders prometheus.Gauge
}

// NewLifecycleMetrics создаёт новый экземпляр метрик жизненного цикла.
func NewLifecycleMetrics() *LifecycleMetrics {
	return newLifecycleMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newLifecycleMetricsWithRegisterer(registerer prometheus.Registerer) *LifecycleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &LifecycleMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_orders_created_total",
			Help: "Total number of orders created",
		}),
		transitionsAccepted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_status_transitions_accepted_total",
			Help: "Total number of accepted order status transitions",
		}),
		transitionsRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_status_transitions_rejected_total",
			Help: "Total number of rejected order status transitions",
		}),
		autoAdvanced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_orders_auto_advanced_total",
			Help: "Total number of orders auto-advanced after full payment",
		}),
		paymentsRecorded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_payments_recorded_total",
			Help: "Total number of payments recorded",
		}),
		refundsIssued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_refunds_issued_total",
			Help: "Total number of refunds issued on cancellation",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "laundry_operation_duration_seconds",
			Help:    "Duration of order service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "laundry_outbox_events_total",
			Help: "Total number of outbox events published",
		}),
		activeOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "laundry_active_orders",
			Help: "Number of orders currently in a non-terminal status",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *LifecycleMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
	m.activeOrders.Inc()
}

// RecordTransitionAccepted увеличивает счётчик принятых переходов.
func (m *LifecycleMetrics) RecordTransitionAccepted() {
	m.transitionsAccepted.Inc()
}

// RecordTransitionRejected увеличивает счётчик отклонённых переходов.
func (m *LifecycleMetrics) RecordTransitionRejected() {
	m.transitionsRejected.Inc()
}

// RecordAutoAdvance увеличивает счётчик автоматических переходов после полной оплаты.
func (m *LifecycleMetrics) RecordAutoAdvance() {
	m.autoAdvanced.Inc()
}

// RecordPaymentRecorded увеличивает счётчик зафиксированных платежей.
func (m *LifecycleMetrics) RecordPaymentRecorded() {
	m.paymentsRecorded.Inc()
}

// RecordRefundIssued увеличивает счётчик возвратов.
func (m *LifecycleMetrics) RecordRefundIssued() {
	m.refundsIssued.Inc()
}

// RecordOrderFinished уменьшает количество заказов в работе.
// Вызывается при переходе заказа в терминальный статус.
func (m *LifecycleMetrics) RecordOrderFinished() {
	m.activeOrders.Dec()
}

// RecordOperationDuration записывает время выполнения операции сервиса.
func (m *LifecycleMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *LifecycleMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *LifecycleMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
