// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VoteMetrics tracks vote outcomes and live-stream load. promauto
// registers with the default registry, so construct this exactly once
// per process.
type VoteMetrics struct {
	VotesCounted   *prometheus.CounterVec
	VotesDuplicate *prometheus.CounterVec
	StreamClients  prometheus.Gauge
}

func NewVoteMetrics(namespace string) *VoteMetrics {
	return &VoteMetrics{
		VotesCounted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_counted_total",
				Help:      "Total number of votes counted",
			},
			[]string{"poll_id"},
		),
		VotesDuplicate: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_duplicate_total",
				Help:      "Total number of duplicate vote attempts",
			},
			[]string{"poll_id"},
		),
		StreamClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stream_clients",
				Help:      "Currently connected live-results stream clients",
			},
		),
	}
}
