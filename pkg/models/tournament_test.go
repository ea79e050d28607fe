// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		format models.Format
		ok     bool
	}{
		{"single", models.FormatSingleElimination, true},
		{" Double ", models.FormatDoubleElimination, true},
		{"roundrobin", models.FormatRoundRobin, true},
		{"round robin", models.FormatRoundRobin, true},
		{"swiss", models.FormatDefault, false},
		{"", models.FormatDefault, false},
	}
	for _, tt := range tests {
		format, ok := models.ParseFormat(tt.input)
		assert.Equal(t, tt.format, format, tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
	}

	assert.Equal(t, "double elimination", models.FormatDoubleElimination.RemoteType())
	assert.Equal(t, models.FormatSingleElimination, models.FormatFromRemote("single elimination"))
	assert.Equal(t, models.FormatDefault, models.FormatFromRemote("swiss"))
}

func TestRemoteMatch(t *testing.T) {
	t.Parallel()

	open := models.RemoteMatch{State: "open", Player1ID: 1, Player2ID: 2}
	assert.True(t, open.IsOpen())
	assert.False(t, open.IsTerminal())
	assert.True(t, open.Involves(2, 1))
	assert.False(t, open.Involves(1, 3))

	done := models.RemoteMatch{State: "Complete"}
	assert.True(t, done.IsTerminal())
	assert.True(t, models.Tournament{State: "complete"}.IsTerminal())
	assert.False(t, models.Tournament{State: "underway"}.IsTerminal())
}

func TestPool(t *testing.T) {
	t.Parallel()

	pool := models.NewPool()
	buf := pool.GetBuffer()
	buf.WriteString("payload")
	pool.PutBuffer(buf)

	again := pool.GetBuffer()
	assert.Equal(t, 0, again.Len())
	pool.PutBuffer(nil)
}
