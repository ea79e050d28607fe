// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, RoundHalfUp(2.5))
	assert.Equal(t, -2, RoundHalfUp(-2.5))
	assert.Equal(t, 16, RoundHalfUp(16.0))
	assert.Equal(t, 15, RoundHalfUp(15.49))
}

func TestMax(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, Max(7, 3))
	assert.Equal(t, 100, Max(42, 100))
}
