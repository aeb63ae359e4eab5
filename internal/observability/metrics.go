// Package observability exposes Prometheus instrumentation for the
// ingestion passes and the alert pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the engine's Prometheus collectors. One instance is
// shared by every pass and handler.
type Metrics struct {
	RecordsFetched    *prometheus.CounterVec
	RecordsDropped    *prometheus.CounterVec
	HazardsUpserted   *prometheus.CounterVec
	PermitsSuppressed prometheus.Counter
	HazardsPruned     prometheus.Counter
	AlertsSent        prometheus.Counter
	AlertsSuppressed  prometheus.Counter
	AlertsFailed      prometheus.Counter
	RouteChecks       *prometheus.CounterVec
	PassDuration      *prometheus.HistogramVec
}

// NewMetrics registers the engine collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "records_fetched_total",
			Help:      "Raw records fetched from the data portal, by dataset.",
		}, []string{"dataset"}),
		RecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "records_dropped_total",
			Help:      "Raw records dropped for missing or malformed fields, by dataset.",
		}, []string{"dataset"}),
		HazardsUpserted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "hazards_upserted_total",
			Help:      "Hazards written to the store, by kind.",
		}, []string{"kind"}),
		PermitsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "permits_suppressed_total",
			Help:      "Permits dropped for lacking corroborating complaints.",
		}),
		HazardsPruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "hazards_pruned_total",
			Help:      "Expired hazards removed from the store.",
		}),
		AlertsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "alerts_sent_total",
			Help:      "Notifications accepted by the transport.",
		}),
		AlertsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "alerts_suppressed_total",
			Help:      "Notification intents suppressed by the cooldown.",
		}),
		AlertsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "alerts_failed_total",
			Help:      "Notification deliveries the transport rejected.",
		}),
		RouteChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "airscout",
			Name:      "route_checks_total",
			Help:      "On-demand route checks, by resulting risk level.",
		}, []string{"level"}),
		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "airscout",
			Name:      "pass_duration_seconds",
			Help:      "Duration of one scheduled pass, by pass name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pass"}),
	}
}

// NewDefaultMetrics registers on the default Prometheus registry.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}
