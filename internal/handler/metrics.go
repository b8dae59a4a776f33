package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts by status.",
		},
		[]string{"status"},
	)

	// reason - внутренняя причина отказа, клиенту не отдается.
	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_verifications_total",
			Help: "Total number of bearer token verifications by status and reason.",
		},
		[]string{"status", "reason"},
	)

	resourceOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_operations_total",
			Help: "Total number of item and task operations by resource, operation and status.",
		},
		[]string{"resource", "operation", "status"},
	)
)

func observeResource(resource, operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	resourceOperationsTotal.WithLabelValues(resource, operation, status).Inc()
}
