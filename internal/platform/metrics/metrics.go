package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PersonsCreated     prometheus.Counter
	PersonsDeleted     prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	SearchPageItems    prometheus.Histogram
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "persons_created_total",
			Help: "Total number of persons created",
		}),
		PersonsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "persons_deleted_total",
			Help: "Total number of persons deleted",
		}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "persons_validation_failures_total",
			Help: "Total number of rejected person writes, by operation",
		}, []string{"operation"}),
		SearchPageItems: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "persons_search_page_items",
			Help:    "Number of items returned per search page",
			Buckets: []float64{0, 1, 5, 10, 15, 25, 50, 100},
		}),
	}
}

func (m *Metrics) IncrementPersonsCreated() {
	m.PersonsCreated.Inc()
}

func (m *Metrics) IncrementPersonsDeleted() {
	m.PersonsDeleted.Inc()
}

func (m *Metrics) IncrementValidationFailures(operation string) {
	m.ValidationFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveSearchPage(items int) {
	m.SearchPageItems.Observe(float64(items))
}
