// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type RankedMetrics interface {
	AddRankedEvent(event string)
	ObserveRatingDelta(rule string, delta int)
	AddSyncElapsedTimeMs(format, function string, elapsedTime time.Duration)
	AddBracketRequest(operation string, statusCode int)
	TrackedTournaments(count int)
}

func NewMetrics(registry *prometheus.Registry) RankedMetrics {
	return setupPrometheusMetrics(registry)
}
