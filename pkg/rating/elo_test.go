// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

func TestPairwise(t *testing.T) {
	tests := []struct {
		name       string
		winner     int
		loser      int
		wantWinner int
		wantLoser  int
	}{
		{name: "equal ratings", winner: 1000, loser: 1000, wantWinner: 1016, wantLoser: 984},
		{name: "favourite wins", winner: 1200, loser: 1000, wantWinner: 1208, wantLoser: 992},
		{name: "underdog wins", winner: 1000, loser: 1200, wantWinner: 1024, wantLoser: 1176},
		{name: "loser held at floor", winner: 110, loser: 110, wantWinner: 126, wantLoser: 100},
		{name: "huge gap moves nothing", winner: 2000, loser: 800, wantWinner: 2000, wantLoser: 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pairwise(tt.winner, tt.loser)
			assert.Equal(t, tt.wantWinner, got.WinnerAfter)
			assert.Equal(t, tt.wantLoser, got.LoserAfter)
			assert.GreaterOrEqual(t, got.WinnerDelta(), 0)
			assert.LessOrEqual(t, got.LoserDelta(), 0)
		})
	}
}

func TestKFactor(t *testing.T) {
	assert.Equal(t, 32, KFactor(1999))
	assert.Equal(t, 24, KFactor(2000))
	assert.Equal(t, 24, KFactor(2399))
	assert.Equal(t, 16, KFactor(2400))
}

func TestField(t *testing.T) {
	tests := []struct {
		name      string
		standings []Standing
		want      []int
	}{
		{
			name: "favourites finish in order",
			standings: []Standing{
				{PlayerID: "a", Rating: 1200, Rank: 1},
				{PlayerID: "b", Rating: 1100, Rank: 2},
				{PlayerID: "c", Rating: 1000, Rank: 3},
				{PlayerID: "d", Rating: 900, Rank: 4},
			},
			want: []int{8, 3, -3, -8},
		},
		{
			name: "upset order",
			standings: []Standing{
				{PlayerID: "a", Rating: 900, Rank: 1},
				{PlayerID: "b", Rating: 1000, Rank: 2},
				{PlayerID: "c", Rating: 1100, Rank: 3},
				{PlayerID: "d", Rating: 1200, Rank: 4},
			},
			want: []int{24, 8, -8, -24},
		},
		{
			name: "unranked counts as last",
			standings: []Standing{
				{PlayerID: "a", Rating: 1000, Rank: 1},
				{PlayerID: "b", Rating: 1000, Rank: 2},
				{PlayerID: "c", Rating: 1000, Rank: 0},
			},
			want: []int{16, 0, -16},
		},
		{
			name: "tiered k factor",
			standings: []Standing{
				{PlayerID: "a", Rating: 2500, Rank: 3},
				{PlayerID: "b", Rating: 2100, Rank: 2},
				{PlayerID: "c", Rating: 1000, Rank: 1},
			},
			want: []int{-15, -1, 32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := Field(tt.standings)
			deltas := make([]int, 0, len(changes))
			for i, c := range changes {
				assert.Equal(t, tt.standings[i].PlayerID, c.PlayerID)
				deltas = append(deltas, c.Delta())
			}
			assert.Equal(t, tt.want, deltas)
		})
	}
}

func TestField_TooFewPlayers(t *testing.T) {
	assert.Nil(t, Field(nil))
	assert.Nil(t, Field([]Standing{{PlayerID: "solo", Rating: 1000, Rank: 1}}))
}

func TestField_RespectsFloor(t *testing.T) {
	changes := Field([]Standing{
		{PlayerID: "a", Rating: 110, Rank: 1},
		{PlayerID: "b", Rating: 110, Rank: 2},
	})
	assert.Equal(t, 126, changes[0].After)
	assert.Equal(t, 100, changes[1].After)
}

func TestPlacementDelta(t *testing.T) {
	tests := []struct {
		name   string
		rank   int
		n      int
		format models.Format
		want   int
	}{
		{name: "single first of four", rank: 1, n: 4, format: models.FormatSingleElimination, want: 8},
		{name: "single second of four", rank: 2, n: 4, format: models.FormatSingleElimination, want: 0},
		{name: "single last of four", rank: 4, n: 4, format: models.FormatSingleElimination, want: -16},
		{name: "double first of four", rank: 1, n: 4, format: models.FormatDoubleElimination, want: 13},
		{name: "round robin first of four", rank: 1, n: 4, format: models.FormatRoundRobin, want: 3},
		{name: "unranked is last", rank: 0, n: 4, format: models.FormatDefault, want: -16},
		{name: "empty field", rank: 1, n: 0, format: models.FormatDefault, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlacementDelta(tt.rank, tt.n, tt.format))
		})
	}
}

func TestPlacementChanges(t *testing.T) {
	changes := PlacementChanges([]Standing{
		{PlayerID: "a", Rating: 1000, Rank: 1},
		{PlayerID: "b", Rating: 110, Rank: 2},
	}, models.FormatSingleElimination)

	// n=2: first gets round(32*0.5)-16, second gets -16
	assert.Equal(t, 1000, changes[0].After)
	assert.Equal(t, 100, changes[1].After)
}
