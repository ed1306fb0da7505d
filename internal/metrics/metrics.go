package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts successful tracker mutations by entity and
	// action.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cuentas_mutations_total",
		Help: "Number of successful tracker mutations.",
	}, []string{"entity", "action"})

	// MutationErrorsTotal counts rejected or failed mutations.
	MutationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cuentas_mutation_errors_total",
		Help: "Number of rejected or failed tracker mutations.",
	}, []string{"entity", "action"})

	// PersistenceErrorsTotal counts failed state saves.
	PersistenceErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cuentas_persistence_errors_total",
		Help: "Number of failed state saves.",
	})

	// PublishErrorsTotal counts failed state change publications.
	PublishErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cuentas_publish_errors_total",
		Help: "Number of state change messages that could not be published.",
	})

	// OverviewRequestsTotal counts overview computations by cache
	// outcome.
	OverviewRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cuentas_overview_requests_total",
		Help: "Number of monthly overview requests.",
	}, []string{"cache"})

	// ExportsTotal counts overview rows appended to the spreadsheet.
	ExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cuentas_exports_total",
		Help: "Number of overview rows exported.",
	})

	// ExportErrorsTotal counts failed export attempts.
	ExportErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cuentas_export_errors_total",
		Help: "Number of failed overview exports.",
	})
)
