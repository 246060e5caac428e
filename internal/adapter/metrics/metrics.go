package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

var (
	_ port.BasketObserver   = (*Metrics)(nil)
	_ port.CheckoutRecorder = (*Metrics)(nil)
)

// Metrics is the prometheus view of the basket and checkouts.
type Metrics struct {
	reg *prometheus.Registry

	basketEvents    *prometheus.CounterVec
	basketItems     prometheus.Gauge
	basketValue     prometheus.Gauge
	checkouts       *prometheus.CounterVec
	checkoutAmount  prometheus.Histogram
	checkoutRevenue prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		basketEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "basket_events_total",
			Help:      "Applied basket mutations by kind",
		}, []string{"kind"}),
		basketItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "basket_items",
			Help:      "Units in the basket",
		}),
		basketValue: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "basket_value",
			Help:      "Total price of the basket",
		}),
		checkouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome",
		}, []string{"outcome"}),
		checkoutAmount: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_amount",
			Help:      "Total price of confirmed checkouts",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		checkoutRevenue: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_revenue_total",
			Help:      "Sum of confirmed checkout totals",
		}),
	}
}

func (m *Metrics) BasketChanged(evt domain.BasketEvent) {
	m.basketEvents.WithLabelValues(string(evt.Kind)).Inc()
	m.basketItems.Set(float64(evt.Basket.TotalItems))
	m.basketValue.Set(evt.Basket.TotalPrice.InexactFloat64())
}

func (m *Metrics) CheckoutSucceeded(r domain.Receipt) {
	amount := r.TotalPrice.InexactFloat64()
	m.checkouts.WithLabelValues("success").Inc()
	m.checkoutAmount.Observe(amount)
	m.checkoutRevenue.Add(amount)
}

func (m *Metrics) CheckoutFailed(err error) {
	m.checkouts.WithLabelValues(failureOutcome(err)).Inc()
}

func failureOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBudget):
		return "insufficient_budget"
	case errors.Is(err, domain.ErrEmptyBasket):
		return "empty_basket"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
