// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package bracket provides the contract and an HTTP client for the external
// bracket provider hosting tournament structure and match state.
package bracket

import (
	"context"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

/*
Service is the bracket provider. Every method is a synchronous request/response call.
A non-success response or a transport failure is returned as *models.CollaboratorError,
which carries the response status code and body when one was received.
*/
type Service interface {
	// CreateTournament creates a tournament and returns the provider's copy of it.
	CreateTournament(ctx context.Context, params CreateTournamentParams) (models.Tournament, error)

	// GetTournament fetches the current remote state of a tournament.
	GetTournament(ctx context.Context, tournamentID int64) (models.Tournament, error)

	// StartTournament closes registration and generates the bracket.
	StartTournament(ctx context.Context, tournamentID int64) (models.Tournament, error)

	// FinalizeTournament marks a tournament whose matches are all complete as final,
	// which makes final ranks available on participants.
	FinalizeTournament(ctx context.Context, tournamentID int64) (models.Tournament, error)

	// AddParticipant registers an entrant. params.Misc links the entrant to a player id.
	AddParticipant(ctx context.Context, tournamentID int64, params ParticipantParams) (models.Participant, error)

	// GetParticipants lists every entrant of a tournament.
	GetParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error)

	// GetMatches lists matches, optionally restricted by filter.
	GetMatches(ctx context.Context, tournamentID int64, filter MatchFilter) ([]models.RemoteMatch, error)

	// GetMatch fetches a single match.
	GetMatch(ctx context.Context, tournamentID int64, matchID int64) (models.RemoteMatch, error)

	// UpdateMatch writes scores and winner of a match.
	UpdateMatch(ctx context.Context, tournamentID int64, matchID int64, update MatchUpdate) (models.RemoteMatch, error)

	// RandomizeSeeding shuffles seeds. Only allowed before the tournament starts.
	RandomizeSeeding(ctx context.Context, tournamentID int64) error
}

type CreateTournamentParams struct {
	Name        string
	URL         string
	Format      models.Format
	Description *string
	Private     *bool
	OpenSignup  *bool
}

type ParticipantParams struct {
	Name string
	Misc string
	Seed *int
}

// MatchFilter narrows GetMatches. Zero values mean no restriction.
type MatchFilter struct {
	State         string
	ParticipantID int64
}

// MatchUpdate sets a result. Nil fields are sent as null, which clears them remotely.
type MatchUpdate struct {
	ScoresCsv *string
	WinnerID  *int64
}
