package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted after validation.",
	})

	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Orders rejected at validation, by reason.",
	}, []string{"reason"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Successful order status transitions.",
	}, []string{"to"})

	StockDeducted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_units_deducted_total",
		Help: "Units of material stock deducted by completed deductions.",
	})
)
