package testsetup

import (
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
)

type stubMetricsCollection struct{}

func (s stubMetricsCollection) AddRankedEvent(event string) {
}

func (s stubMetricsCollection) ObserveRatingDelta(rule string, delta int) {
}

func (s stubMetricsCollection) AddSyncElapsedTimeMs(format, function string, elapsedTime time.Duration) {
}

func (s stubMetricsCollection) AddBracketRequest(operation string, statusCode int) {
}

func (s stubMetricsCollection) TrackedTournaments(count int) {
}

func NewMetrics() metrics.RankedMetrics {
	return stubMetricsCollection{}
}
