// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package rating computes skill rating changes from match and tournament
// outcomes. The functions in this file are pure; Engine applies them to a store.
package rating

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/mathutil"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// ExpectedScore is the probability that a player rated a beats a player rated b.
func ExpectedScore(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// PairwiseResult holds both new ratings and the applied deltas.
type PairwiseResult struct {
	WinnerBefore int
	WinnerAfter  int
	LoserBefore  int
	LoserAfter   int
}

func (r PairwiseResult) WinnerDelta() int { return r.WinnerAfter - r.WinnerBefore }
func (r PairwiseResult) LoserDelta() int  { return r.LoserAfter - r.LoserBefore }

// Pairwise applies the ranked K=32 update. The winner never loses points,
// the loser never gains, and neither drops below the floor.
func Pairwise(winner, loser int) PairwiseResult {
	expectedWinner := ExpectedScore(winner, loser)
	expectedLoser := 1 - expectedWinner

	gain := mathutil.RoundHalfUp(constants.RankedKFactor * (1 - expectedWinner))
	loss := mathutil.RoundHalfUp(constants.RankedKFactor * expectedLoser)

	return PairwiseResult{
		WinnerBefore: winner,
		WinnerAfter:  floor(winner + gain),
		LoserBefore:  loser,
		LoserAfter:   floor(loser - loss),
	}
}

// KFactor is tiered by current rating.
func KFactor(r int) int {
	switch {
	case r >= 2400:
		return 16
	case r >= 2000:
		return 24
	default:
		return 32
	}
}

// Standing is one participant's final placement. Rank starts at 1, 0 means unranked.
type Standing struct {
	PlayerID string
	Rating   int
	Rank     int
}

// Change is the outcome of a standings update for one player.
type Change struct {
	PlayerID string
	Rank     int
	Before   int
	After    int
}

func (c Change) Delta() int { return c.After - c.Before }

// Field rates a finished event with N ranked participants. Each player's expected
// score is the mean pairwise win probability against every other participant and
// the actual score is (N-rank)/(N-1). Unranked players are treated as last.
// The sum of deltas is not zero-sum.
func Field(standings []Standing) []Change {
	n := len(standings)
	if n < 2 {
		return nil
	}

	changes := make([]Change, 0, n)
	probabilities := make([]float64, 0, n-1)
	for i, s := range standings {
		probabilities = probabilities[:0]
		for j, other := range standings {
			if i == j {
				continue
			}
			probabilities = append(probabilities, ExpectedScore(s.Rating, other.Rating))
		}
		expected := stat.Mean(probabilities, nil)
		actual := float64(n-effectiveRank(s.Rank, n)) / float64(n-1)
		delta := mathutil.RoundHalfUp(float64(KFactor(s.Rating)) * (actual - expected))

		changes = append(changes, Change{
			PlayerID: s.PlayerID,
			Rank:     s.Rank,
			Before:   s.Rating,
			After:    floor(s.Rating + delta),
		})
	}
	return changes
}

// PlacementDelta is the rank percentile shortcut: it ignores current ratings and
// scales a base gain by a format multiplier, minus half the base.
func PlacementDelta(rank, n int, format models.Format) int {
	if n <= 0 {
		return 0
	}
	multiplier := 1.0
	switch format {
	case models.FormatDoubleElimination:
		multiplier = 1.2
	case models.FormatRoundRobin:
		multiplier = 0.8
	}
	percentile := float64(effectiveRank(rank, n)) / float64(n)
	return mathutil.RoundHalfUp(multiplier*constants.PlacementBaseGain*(1-percentile)) - constants.PlacementBaseGain/2
}

// PlacementChanges applies PlacementDelta to every standing.
func PlacementChanges(standings []Standing, format models.Format) []Change {
	n := len(standings)
	if n < 2 {
		return nil
	}
	changes := make([]Change, 0, n)
	for _, s := range standings {
		changes = append(changes, Change{
			PlayerID: s.PlayerID,
			Rank:     s.Rank,
			Before:   s.Rating,
			After:    floor(s.Rating + PlacementDelta(s.Rank, n, format)),
		})
	}
	return changes
}

func effectiveRank(rank, n int) int {
	if rank <= 0 || rank > n {
		return n
	}
	return rank
}

func floor(r int) int {
	return mathutil.Max(r, constants.RatingFloor)
}
