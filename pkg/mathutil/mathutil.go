// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package mathutil

import (
	"cmp"
	"math"
)

// Max returns the larger of x and y.
func Max[T cmp.Ordered](x T, y T) T {
	return max(x, y)
}

// RoundHalfUp rounds to the nearest integer, ties toward positive infinity.
// math.Round sends -2.5 to -3, rating deltas expect -2.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
