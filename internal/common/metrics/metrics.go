// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Join/leave clicks by action and outcome
	ParticipationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_participation_total",
			Help: "Participant join/leave operations",
		},
		[]string{"action", "result"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_settlements_total",
			Help: "Settlement attempts partitioned by result",
		},
		[]string{"result"},
	)

	SettlementDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "giveaway_settlement_duration_seconds",
			Help:    "Time spent settling a giveaway, retries included",
			Buckets: prometheus.DefBuckets,
		},
	)

	WinnersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "giveaway_winners_total",
			Help: "Winners committed across all settlements",
		},
	)

	AnnouncementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_announcements_total",
			Help: "Result announcements partitioned by outcome",
		},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

const (
	ResultOK           = "ok"
	ResultError        = "error"
	ResultNoop         = "noop"
	ResultRejected     = "rejected"
	ResultAlreadyEnded = "already_ended"
	ResultNotFound     = "not_found"
	ResultQueued       = "queued"
)
