package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reportes_created_total",
		Help: "Reports accepted by the create operation.",
	})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportes_status_changes_total",
		Help: "Status updates applied, by target status.",
	}, []string{"estado"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reportes_login_attempts_total",
		Help: "Login form submissions, by result.",
	}, []string{"result"})
)
