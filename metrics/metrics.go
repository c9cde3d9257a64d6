package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ChannelConnected is 1 while the session push channel is open.
	ChannelConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "openlabels",
			Subsystem: "push",
			Name:      "channel_connected",
			Help:      "Whether the session push channel is currently open (0 or 1)",
		},
	)

	// ReconnectsTotal counts reconnect dials attempted after a close.
	ReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "push",
			Name:      "reconnects_total",
			Help:      "Total reconnect attempts made on the push channel",
		},
	)

	// EventsDispatchedTotal counts events delivered to subscribers, by type.
	EventsDispatchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "push",
			Name:      "events_dispatched_total",
			Help:      "Total push events dispatched to subscribers",
		},
		[]string{"type"},
	)

	// EventsDiscardedTotal counts envelopes dropped before dispatch.
	EventsDiscardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "push",
			Name:      "events_discarded_total",
			Help:      "Total push envelopes discarded before dispatch",
		},
		[]string{"reason"}, // malformed, unknown_type
	)

	// StreamRecordsTotal counts file_result records buffered from
	// per-scan streams.
	StreamRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "push",
			Name:      "stream_records_total",
			Help:      "Total file_result records received on per-scan streams",
		},
	)

	// CachePatchesTotal counts patch effects applied to the cache.
	CachePatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "cache",
			Name:      "patches_total",
			Help:      "Total patch effects applied to cached entities",
		},
	)

	// CacheInvalidationsTotal counts invalidate effects, by collection.
	CacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total cache partitions marked stale",
		},
		[]string{"collection"},
	)

	// PullRequestsTotal counts pull API requests, by endpoint and outcome.
	PullRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openlabels",
			Subsystem: "pull",
			Name:      "requests_total",
			Help:      "Total pull API requests",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, error, timeout
	)
)

func init() {
	prometheus.MustRegister(
		ChannelConnected,
		ReconnectsTotal,
		EventsDispatchedTotal,
		EventsDiscardedTotal,
		StreamRecordsTotal,
		CachePatchesTotal,
		CacheInvalidationsTotal,
		PullRequestsTotal,
	)
}
