// Package metrics exposes Prometheus counters for the action engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_actions_total",
			Help: "Actions invoked, by action and result",
		},
		[]string{"action", "result"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_rejections_total",
			Help: "Rejected actions, by action and reason",
		},
		[]string{"action", "reason"},
	)
	AuditFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_audit_failures_total",
			Help: "Audit records that could not be written",
		},
	)
	CompensationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_compensations_total",
			Help: "Cooldown claims released after a failed mutation, by action",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(ActionsTotal)
	prometheus.MustRegister(RejectionsTotal)
	prometheus.MustRegister(AuditFailuresTotal)
	prometheus.MustRegister(CompensationsTotal)
}
