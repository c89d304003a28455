package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts expense status transitions by action
	// (approve, dispute, mark_paid, reopen).
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coparently",
		Name:      "expense_transitions_total",
		Help:      "Number of expense status transitions processed.",
	}, []string{"action"})

	// TriggerActionsTotal counts token-addressed actions by action and
	// outcome (ok, not_found, already_processed, error).
	TriggerActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coparently",
		Name:      "trigger_actions_total",
		Help:      "Number of token-addressed expense actions handled.",
	}, []string{"action", "outcome"})

	// NoticesTotal counts counterpart notices delivered through the
	// messaging bridge.
	NoticesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coparently",
		Name:      "counterpart_notices_total",
		Help:      "Number of counterpart notices produced by the messaging bridge.",
	}, []string{"kind"})
)
