// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package constants

import "time"

const (
	RankedExpiry          = 10 * time.Minute
	TournamentPollPeriod  = 5 * time.Minute
	ShutdownGracePeriod   = 60 * time.Second
	BracketRequestTimeout = 15 * time.Second
	CommandCooldown       = 5 * time.Second
)

const (
	DefaultRating  = 1000
	RatingFloor    = 100
	MinAdminRating = 0
	MaxAdminRating = 3000

	RankedKFactor     = 32
	PlacementBaseGain = 32

	WinsToComplete = 3
	MinGamesPlayed = 3
	MaxGamesPlayed = 5

	DefaultLeaderboardSize = 5
	PodiumSize             = 3
	MaxCommandsInFlight    = 16
)

// remote lifecycle states reported by the bracket provider
const (
	RemoteStatePending  = "pending"
	RemoteStateOpen     = "open"
	RemoteStateUnderway = "underway"
	RemoteStateComplete = "complete"

	MatchFilterOpen = "open"
)

const (
	RatingRuleField     = "field"
	RatingRulePlacement = "placement"
)

const (
	// ranked lifecycle events used as metric labels
	EventSeek     = "seek"
	EventAccept   = "accept"
	EventExpire   = "expire"
	EventComplete = "complete"
	EventConfirm  = "confirm"

	FunctionSyncTick = "syncTick"
	FunctionFinalize = "finalize"
)

// button ids understood by the chat bridge
const (
	ButtonAcceptRanked  = "accept_ranked_match_"
	ButtonConfirmMatch  = "confirm_match_"
	ButtonAdjustMatch   = "adjust_match_"
	ButtonRegister      = "tournament_register"
	ButtonApproveResult = "approve_result_"
	ButtonRejectResult  = "reject_result_"
	ButtonResolve       = "resolve_"
)
