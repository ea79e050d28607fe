// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package ranked

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidScore(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want bool
	}{
		{name: "3-0", a: 3, b: 0, want: true},
		{name: "3-2", a: 3, b: 2, want: true},
		{name: "1-3", a: 1, b: 3, want: true},
		{name: "3-3", a: 3, b: 3, want: false},
		{name: "4-1 side above three", a: 4, b: 1, want: false},
		{name: "2-2 nobody has three", a: 2, b: 2, want: false},
		{name: "2-0 too few games", a: 2, b: 0, want: false},
		{name: "negative", a: 3, b: -1, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validScore(tt.a, tt.b))
		})
	}
}

func TestMatch_Evaluate(t *testing.T) {
	m := newMatch("alice")
	m.opponent = "bob"
	m.state = StateActive

	m.setScore(3, 1)
	assert.Equal(t, StateCompleted, m.state)
	assert.Equal(t, "alice", m.winner)
	assert.Equal(t, "bob", m.loser)

	m.setScore(2, 3)
	assert.Equal(t, "bob", m.winner)
	assert.Equal(t, "alice", m.loser)

	m.requesterWins, m.opponentWins = 2, 2
	m.evaluate()
	assert.Equal(t, StateActive, m.state)
	assert.Empty(t, m.winner)
	assert.Empty(t, m.loser)
}
