// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"strings"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
)

// Format is the bracket format of a tournament.
type Format int

const (
	FormatDefault Format = iota
	FormatSingleElimination
	FormatDoubleElimination
	FormatRoundRobin
)

const (
	remoteSingleElimination = "single elimination"
	remoteDoubleElimination = "double elimination"
	remoteRoundRobin        = "round robin"
)

// ParseFormat accepts the user facing aliases of a tournament type.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", remoteSingleElimination:
		return FormatSingleElimination, true
	case "double", remoteDoubleElimination:
		return FormatDoubleElimination, true
	case "roundrobin", remoteRoundRobin:
		return FormatRoundRobin, true
	}
	return FormatDefault, false
}

// FormatFromRemote maps the provider's tournament_type, unknown values fall back to FormatDefault.
func FormatFromRemote(tournamentType string) Format {
	f, _ := ParseFormat(tournamentType)
	return f
}

// RemoteType is the tournament_type value sent to the provider.
func (f Format) RemoteType() string {
	switch f {
	case FormatSingleElimination:
		return remoteSingleElimination
	case FormatDoubleElimination:
		return remoteDoubleElimination
	case FormatRoundRobin:
		return remoteRoundRobin
	default:
		return remoteSingleElimination
	}
}

func (f Format) String() string {
	switch f {
	case FormatSingleElimination:
		return "single_elimination"
	case FormatDoubleElimination:
		return "double_elimination"
	case FormatRoundRobin:
		return "round_robin"
	default:
		return "default"
	}
}

// Tournament is the provider's view of a tournament.
type Tournament struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	URL               string `json:"url"`
	FullURL           string `json:"full_challonge_url,omitempty"`
	TournamentType    string `json:"tournament_type"`
	State             string `json:"state"`
	ParticipantsCount int    `json:"participants_count"`
	ProgressMeter     int    `json:"progress_meter"`
}

// IsTerminal reports whether the provider considers the tournament complete.
func (t Tournament) IsTerminal() bool {
	return strings.EqualFold(t.State, constants.RemoteStateComplete)
}

// Participant is a tournament entrant. Misc carries the player id.
type Participant struct {
	ID           int64  `json:"id"`
	TournamentID int64  `json:"tournament_id"`
	Name         string `json:"name"`
	Misc         string `json:"misc"`
	Seed         int    `json:"seed,omitempty"`
	FinalRank    int    `json:"final_rank,omitempty"`
}

// RemoteMatch is a bracket match. Player ids are participant ids, 0 while undecided.
type RemoteMatch struct {
	ID           int64  `json:"id"`
	TournamentID int64  `json:"tournament_id"`
	State        string `json:"state"`
	Player1ID    int64  `json:"player1_id"`
	Player2ID    int64  `json:"player2_id"`
	WinnerID     int64  `json:"winner_id"`
	LoserID      int64  `json:"loser_id"`
	ScoresCsv    string `json:"scores_csv"`
	Round        int    `json:"round"`
	Identifier   string `json:"identifier,omitempty"`
}

func (m RemoteMatch) IsTerminal() bool {
	return strings.EqualFold(m.State, constants.RemoteStateComplete)
}

func (m RemoteMatch) IsOpen() bool {
	return strings.EqualFold(m.State, constants.RemoteStateOpen)
}

// Involves reports whether both participants play in this match, in any order.
func (m RemoteMatch) Involves(a, b int64) bool {
	return (m.Player1ID == a && m.Player2ID == b) || (m.Player1ID == b && m.Player2ID == a)
}

// PlayerRating is a persisted rating record.
type PlayerRating struct {
	PlayerID string `json:"playerId" db:"player_id" dynamodbav:"PlayerId"`
	Rating   int    `json:"rating"   db:"rating"    dynamodbav:"Rating"`
}
