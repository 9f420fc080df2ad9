// Package metrics регистрирует счётчики Prometheus для тарифицируемых
// операций и движения кредитов. Экспонируются через /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal — число успешно завершённых тарифицируемых операций по типам.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summraize_operations_total",
		Help: "Completed billable operations by type.",
	}, []string{"operation"})

	// CreditsSpentTotal — суммарно списанные кредиты по типам операций.
	CreditsSpentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "summraize_credits_spent_total",
		Help: "Credits deducted for completed operations by type.",
	}, []string{"operation"})

	// CreditsPurchasedTotal — суммарно начисленные через покупки кредиты.
	CreditsPurchasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summraize_credits_purchased_total",
		Help: "Credits added through completed purchases.",
	})

	// InsufficientCreditsTotal — число отказов из-за недостатка кредитов.
	InsufficientCreditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "summraize_insufficient_credits_total",
		Help: "Requests rejected because the balance was below the estimate.",
	})
)
