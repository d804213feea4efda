package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for the cart, order and stock
// flows. All recording methods are safe on a nil receiver so services can
// run without metrics in tests.
type BusinessMetrics struct {
	// Cart
	CartsCreated   *prometheus.CounterVec
	CartItemsAdded *prometheus.CounterVec
	CartsMerged    *prometheus.CounterVec
	CartsDeleted   *prometheus.CounterVec

	// Checkout
	CartsConverted     prometheus.Counter
	ConversionFailures *prometheus.CounterVec

	// Orders
	OrdersCreated   *prometheus.CounterVec
	OrdersFinalized *prometheus.CounterVec
	OrdersCancelled prometheus.Counter
	OrderValue      *prometheus.HistogramVec
	OrderItemCount  prometheus.Histogram

	// Stock
	StockAdjustments  *prometheus.CounterVec
	InsufficientStock *prometheus.CounterVec

	// Events
	EventsPublished    *prometheus.CounterVec
	EventPublishErrors *prometheus.CounterVec

	// Background jobs
	JobsProcessed *prometheus.CounterVec
	JobsFailed    *prometheus.CounterVec
}

// NewBusinessMetrics creates the metrics and registers them with reg.
// A nil reg uses the default Prometheus registerer.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "loja"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		// =======================================================================
		// Cart
		// =======================================================================
		CartsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_created_total",
				Help:      "Total carts created",
			},
			[]string{"owner"}, // owner: user, guest
		),
		CartItemsAdded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add to cart actions",
			},
			[]string{"outcome"}, // outcome: ok, insufficient_stock
		),
		CartsMerged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_merged_total",
				Help:      "Guest carts reconciled at login",
			},
			[]string{"path"}, // path: no_guest_cart, reowned, merged
		),
		CartsDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_deleted_total",
				Help:      "Carts deleted",
			},
			[]string{"reason"}, // reason: emptied, explicit, merged, abandoned
		),

		// =======================================================================
		// Checkout
		// =======================================================================
		CartsConverted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "carts_converted_total",
				Help:      "Carts converted to orders",
			},
		),
		ConversionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_conversion_failures_total",
				Help:      "Failed cart conversions by error code",
			},
			[]string{"code"},
		),

		// =======================================================================
		// Orders
		// =======================================================================
		OrdersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
			[]string{"origin"}, // origin: online, store
		),
		OrdersFinalized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_finalized_total",
				Help:      "Total orders finalized",
			},
			[]string{"payment_type"},
		),
		OrdersCancelled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_cancelled_total",
				Help:      "Total orders cancelled",
			},
		),
		OrderValue: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value",
				Help:      "Order total at finalization",
				Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
			},
			[]string{"origin"},
		),
		OrderItemCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of lines per created order",
				Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
			},
		),

		// =======================================================================
		// Stock
		// =======================================================================
		StockAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stock_adjustments_total",
				Help:      "Stock ledger adjustments by direction",
			},
			[]string{"direction"}, // direction: decrement, increment
		),
		InsufficientStock: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "insufficient_stock_total",
				Help:      "Operations rejected for lack of stock",
			},
			[]string{"operation"},
		),

		// =======================================================================
		// Events
		// =======================================================================
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Domain events published",
			},
			[]string{"type"},
		),
		EventPublishErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "event_publish_errors_total",
				Help:      "Domain events that failed to publish",
			},
			[]string{"type"},
		),

		// =======================================================================
		// Background jobs
		// =======================================================================
		JobsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_processed_total",
				Help:      "Background job runs",
			},
			[]string{"job"},
		),
		JobsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_failed_total",
				Help:      "Background job runs that failed",
			},
			[]string{"job"},
		),
	}
}

// Global instance for easy access from main and the jobs package
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace, nil)
	return Business
}

func (m *BusinessMetrics) CartCreated(guest bool) {
	if m == nil {
		return
	}
	owner := "user"
	if guest {
		owner = "guest"
	}
	m.CartsCreated.WithLabelValues(owner).Inc()
}

func (m *BusinessMetrics) CartItemAdded(outcome string) {
	if m == nil {
		return
	}
	m.CartItemsAdded.WithLabelValues(outcome).Inc()
}

func (m *BusinessMetrics) CartMerged(path string) {
	if m == nil {
		return
	}
	m.CartsMerged.WithLabelValues(path).Inc()
}

func (m *BusinessMetrics) CartDeleted(reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.CartsDeleted.WithLabelValues(reason).Add(float64(n))
}

func (m *BusinessMetrics) CartConverted() {
	if m == nil {
		return
	}
	m.CartsConverted.Inc()
}

func (m *BusinessMetrics) ConversionFailed(code string) {
	if m == nil {
		return
	}
	m.ConversionFailures.WithLabelValues(code).Inc()
}

func (m *BusinessMetrics) OrderCreated(origin string, lines int) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(origin).Inc()
	m.OrderItemCount.Observe(float64(lines))
}

func (m *BusinessMetrics) OrderFinalized(paymentType, origin string, total float64) {
	if m == nil {
		return
	}
	m.OrdersFinalized.WithLabelValues(paymentType).Inc()
	m.OrderValue.WithLabelValues(origin).Observe(total)
}

func (m *BusinessMetrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.OrdersCancelled.Inc()
}

func (m *BusinessMetrics) StockAdjusted(delta int32) {
	if m == nil || delta == 0 {
		return
	}
	direction := "increment"
	if delta < 0 {
		direction = "decrement"
	}
	m.StockAdjustments.WithLabelValues(direction).Inc()
}

func (m *BusinessMetrics) StockShortfall(operation string) {
	if m == nil {
		return
	}
	m.InsufficientStock.WithLabelValues(operation).Inc()
}

func (m *BusinessMetrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EventPublishErrors.WithLabelValues(eventType).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

func (m *BusinessMetrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	m.JobsProcessed.WithLabelValues(job).Inc()
	if err != nil {
		m.JobsFailed.WithLabelValues(job).Inc()
	}
}
