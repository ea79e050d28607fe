// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// cooldown allows one use of a command per user per period.
type cooldown struct {
	period   time.Duration
	limiters sync.Map // user|command -> *rate.Limiter
}

func newCooldown(period time.Duration) *cooldown {
	return &cooldown{period: period}
}

func (c *cooldown) Allow(userID, command string) bool {
	if c.period <= 0 || userID == "" {
		return true
	}
	key := userID + "|" + command
	v, ok := c.limiters.Load(key)
	if !ok {
		v, _ = c.limiters.LoadOrStore(key, rate.NewLimiter(rate.Every(c.period), 1))
	}
	return v.(*rate.Limiter).Allow()
}
