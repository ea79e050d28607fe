// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"strconv"
	"strings"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/utils"
)

// command names understood by the dispatcher
const (
	CmdSeek        = "seek"
	CmdAccept      = "accept"
	CmdWin         = "win"
	CmdUndo        = "undo"
	CmdSetScore    = "setscore"
	CmdAdjust      = "adjust"
	CmdConfirm     = "confirm"
	CmdElo         = "elo"
	CmdLeaderboard = "leaderboard"
	CmdSetElo      = "setelo"
	CmdCoinFlip    = "coinflip"
	CmdRules       = "rules"

	CmdTournamentCreate    = "tournament.create"
	CmdTournamentStart     = "tournament.start"
	CmdTournamentRandomize = "tournament.randomize"
	CmdTournamentStop      = "tournament.stop"
	CmdRegister            = "register"
	CmdReport              = "report"
	CmdApprove             = "approve"
	CmdReject              = "reject"
	CmdResolve             = "resolve"

	CmdButton = "button"
)

// option keys
const (
	OptMatchID      = "matchId"
	OptYourWins     = "yourwins"
	OptOpponentWins = "opponentwins"
	OptRequesterWin = "requesterwins"
	OptPlayer       = "player"
	OptOpponent     = "opponent"
	OptElo          = "elo"
	OptChoice       = "choice"
	OptName         = "name"
	OptType         = "type"
	OptScore1       = "score1"
	OptScore2       = "score2"
	OptLimit        = "limit"
)

// Command is one slash command or button press relayed by the chat bridge.
type Command struct {
	Name          string                 `json:"name"`
	InteractionID string                 `json:"interactionId"`
	UserID        string                 `json:"userId"`
	UserName      string                 `json:"userName"`
	ChannelID     string                 `json:"channelId"`
	Roles         []string               `json:"roles,omitempty"`
	Options       map[string]interface{} `json:"options,omitempty"`
	ButtonID      string                 `json:"buttonId,omitempty"`
	TraceID       string                 `json:"traceId,omitempty"`
}

func (c Command) IsButton() bool {
	return c.ButtonID != ""
}

func (c Command) String(key string) (string, bool) {
	v, ok := utils.GetMapValueAs[string](c.Options, key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (c Command) Int(key string) (int, bool) {
	if v, ok := utils.GetMapInt(c.Options, key); ok {
		return v, true
	}
	if s, ok := c.String(key); ok {
		v, err := strconv.Atoi(s)
		return v, err == nil
	}
	return 0, false
}

func (c Command) Int64(key string) (int64, bool) {
	if s, ok := c.String(key); ok {
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}
	if v, ok := utils.GetMapValueAs[float64](c.Options, key); ok {
		return int64(v), true
	}
	if v, ok := utils.GetMapValueAs[int64](c.Options, key); ok {
		return v, true
	}
	if v, ok := utils.GetMapValueAs[int](c.Options, key); ok {
		return int64(v), true
	}
	return 0, false
}

func (c Command) withOption(key string, value interface{}) Command {
	options := make(map[string]interface{}, len(c.Options)+1)
	for k, v := range c.Options {
		options[k] = v
	}
	options[key] = value
	c.Options = options
	return c
}

// resolveButton turns a button press into the command it stands for.
func resolveButton(c Command) (Command, error) {
	id := c.ButtonID
	switch {
	case id == constants.ButtonRegister:
		c.Name = CmdRegister
	case strings.HasPrefix(id, constants.ButtonAcceptRanked):
		c.Name = CmdAccept
		c = c.withOption(OptMatchID, strings.TrimPrefix(id, constants.ButtonAcceptRanked))
	case strings.HasPrefix(id, constants.ButtonConfirmMatch):
		c.Name = CmdConfirm
		c = c.withOption(OptMatchID, strings.TrimPrefix(id, constants.ButtonConfirmMatch))
	case strings.HasPrefix(id, constants.ButtonAdjustMatch):
		c.Name = CmdAdjust
		c = c.withOption(OptMatchID, strings.TrimPrefix(id, constants.ButtonAdjustMatch))
	case strings.HasPrefix(id, constants.ButtonApproveResult):
		c.Name = CmdApprove
		c = c.withOption(OptMatchID, strings.TrimPrefix(id, constants.ButtonApproveResult))
	case strings.HasPrefix(id, constants.ButtonRejectResult):
		c.Name = CmdReject
		c = c.withOption(OptMatchID, strings.TrimPrefix(id, constants.ButtonRejectResult))
	case strings.HasPrefix(id, constants.ButtonResolve):
		// resolve_<matchID>_<score1>_<score2>
		parts := strings.Split(strings.TrimPrefix(id, constants.ButtonResolve), "_")
		if len(parts) != 3 {
			return c, models.ErrUnknownCommand
		}
		c.Name = CmdResolve
		c = c.withOption(OptMatchID, parts[0]).withOption(OptScore1, parts[1]).withOption(OptScore2, parts[2])
	default:
		return c, models.ErrUnknownCommand
	}
	return c, nil
}
