package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellcheck_checkins_total",
		Help: "Check-in submissions by outcome (scored, queued, rejected, rate_limited).",
	}, []string{"outcome"})

	QueueDrainTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellcheck_queue_drain_entries_total",
		Help: "Queued check-ins processed by drain result (succeeded, failed).",
	}, []string{"result"})

	ScoringLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellcheck_scoring_duration_seconds",
		Help:    "Latency of scoring calls by scorer kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scorer"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellcheck_http_requests_total",
		Help: "HTTP requests by route and status class.",
	}, []string{"method", "route", "status"})
)
