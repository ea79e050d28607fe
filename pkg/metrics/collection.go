// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	rankedEvents       prometheus.CounterVec
	ratingDelta        prometheus.HistogramVec
	syncElapsedTime    prometheus.HistogramVec
	bracketRequests    prometheus.CounterVec
	trackedTournaments prometheus.Gauge
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	rankedEvents := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_match_events_total",
			Help: "A counter of ranked challenge lifecycle events",
		}, []string{"event"})

	ratingDelta := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranked_rating_delta",
			Help:    "A histogram of applied rating changes",
			Buckets: prometheus.LinearBuckets(-40, 8, 11),
		}, []string{"rule"})

	//nolint:promlinter
	syncElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranked_tournament_sync_elapsed_time_ms",
			Help:    "A histogram of tournament sync functions elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}, []string{"format", "function"})

	bracketRequests := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranked_bracket_requests_total",
			Help: "A counter of bracket provider requests by operation and status code",
		}, []string{"operation", "status"})

	trackedTournaments := factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranked_tracked_tournaments",
			Help: "Number of tournaments mirrored in memory",
		})

	return prometheusMetrics{
		rankedEvents:       *rankedEvents,
		ratingDelta:        *ratingDelta,
		syncElapsedTime:    *syncElapsedTime,
		bracketRequests:    *bracketRequests,
		trackedTournaments: trackedTournaments,
	}
}

func (metrics prometheusMetrics) AddRankedEvent(event string) {
	metrics.rankedEvents.With(prometheus.Labels{"event": event}).Inc()
}

func (metrics prometheusMetrics) ObserveRatingDelta(rule string, delta int) {
	metrics.ratingDelta.With(prometheus.Labels{"rule": rule}).Observe(float64(delta))
}

func (metrics prometheusMetrics) AddSyncElapsedTimeMs(format, function string, elapsedTime time.Duration) {
	metrics.syncElapsedTime.With(prometheus.Labels{"format": format, "function": function}).Observe(float64(elapsedTime.Milliseconds()))
}

func (metrics prometheusMetrics) AddBracketRequest(operation string, statusCode int) {
	metrics.bracketRequests.With(prometheus.Labels{"operation": operation, "status": strconv.Itoa(statusCode)}).Inc()
}

func (metrics prometheusMetrics) TrackedTournaments(count int) {
	metrics.trackedTournaments.Set(float64(count))
}
