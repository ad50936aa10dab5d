package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// MessagesIngested counts raw broker messages successfully decoded
	// into RSSI samples, labeled by sniffer.
	MessagesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "messages_ingested_total",
			Help:      "Total number of inbound RSSI messages decoded",
		},
		[]string{"sniffer"},
	)

	// ParseErrors counts messages the ingest decoder rejects (out-of-band
	// RSSI, empty MAC), labeled by sniffer. Frames that fail JSON decoding
	// are dropped by the broker adapter and are not counted here.
	ParseErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "parse_errors_total",
			Help:      "Total number of inbound messages dropped at ingest",
		},
		[]string{"sniffer"},
	)

	// AssignmentsEmitted counts confident zone assignments.
	AssignmentsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "assignments_emitted_total",
			Help:      "Total number of confident zone assignments emitted",
		},
		[]string{"zone_id"},
	)

	// UncertainEmitted counts margin-gated uncertain records.
	UncertainEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "uncertain_emitted_total",
			Help:      "Total number of margin-gated uncertain records emitted",
		},
		[]string{},
	)

	// TransitionsEmitted counts debounced zone transitions.
	TransitionsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "transitions_emitted_total",
			Help:      "Total number of debounced zone transitions emitted",
		},
		[]string{"to_zone_id"},
	)

	// DwellsEmitted counts completed dwell intervals.
	DwellsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "dwells_emitted_total",
			Help:      "Total number of completed dwell intervals emitted",
		},
		[]string{"zone_id"},
	)

	// UploadResults counts upload sidecar batch outcomes.
	UploadResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "upload_results_total",
			Help:      "Total number of upload sidecar batches by final outcome",
		},
		[]string{"outcome"},
	)

	// SessionsLinked counts devices re-identified into an existing stale
	// session via rank-order similarity.
	SessionsLinked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "neuralsense",
			Name:      "sessions_linked_total",
			Help:      "Total number of devices linked to a pre-existing session",
		},
		[]string{},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(MessagesIngested)
		prometheus.DefaultRegisterer.Register(ParseErrors)
		prometheus.DefaultRegisterer.Register(AssignmentsEmitted)
		prometheus.DefaultRegisterer.Register(UncertainEmitted)
		prometheus.DefaultRegisterer.Register(TransitionsEmitted)
		prometheus.DefaultRegisterer.Register(DwellsEmitted)
		prometheus.DefaultRegisterer.Register(UploadResults)
		prometheus.DefaultRegisterer.Register(SessionsLinked)
	})
}
