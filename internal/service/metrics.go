package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/FurnitureStore/internal/store"
)

var (
	basketOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_basket_operations_total",
			Help: "Cart and wishlist operations by resource, operation, backing store and outcome.",
		},
		[]string{"resource", "operation", "store", "outcome"},
	)

	catalogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_writes_total",
			Help: "Catalog create, update and delete operations by entity.",
		},
		[]string{"entity", "action"},
	)

	eventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_event_publish_failures_total",
			Help: "Domain events that could not be published.",
		},
		[]string{"aggregate"},
	)
)

// Outcomes recorded on basketOperations.
const (
	outcomeOK       = "ok"
	outcomeNotice   = "notice"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

func observe(resource, operation string, st store.CartStore, outcome string) {
	basketOperations.WithLabelValues(resource, operation, string(st.Kind()), outcome).Inc()
}
