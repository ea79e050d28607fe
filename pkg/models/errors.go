// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies how a failure is surfaced to the caller.
type ErrorKind int

const (
	// KindUnknown is an unclassified failure, treated like a collaborator error.
	KindUnknown ErrorKind = iota
	// KindUserInput is a malformed or disallowed request, never retried.
	KindUserInput
	// KindStateConflict is a request that does not fit the current state.
	KindStateConflict
	// KindCollaborator is a failure of the bracket provider, chat or store.
	KindCollaborator
)

func (k ErrorKind) String() string {
	switch k {
	case KindUserInput:
		return "user_input"
	case KindStateConflict:
		return "state_conflict"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

// user input errors
var (
	ErrInvalidScore          = errors.New("invalid score: one player must have exactly 3 wins and the total must be between 3 and 5")
	ErrSelfAccept            = errors.New("you cannot accept your own match request")
	ErrAlreadyPending        = errors.New("you already have a pending match request")
	ErrAlreadyRegistered     = errors.New("you are already registered for this tournament")
	ErrInvalidTournamentType = errors.New("invalid tournament type, choose single, double or roundrobin")
	ErrInvalidRating         = errors.New("rating must be between 0 and 3000")
	ErrNotOrganizer          = errors.New("you do not have permission to manage tournaments")
	ErrNoWinsToUndo          = errors.New("no wins to undo")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrMissingOption         = errors.New("missing or invalid command option")
	ErrOnCooldown            = errors.New("this command is on cooldown, please wait before using it again")
	ErrInvalidChoice         = errors.New("invalid choice, please choose heads or tails")
)

// state conflict errors
var (
	ErrAlreadyActive             = errors.New("you are already in an active match")
	ErrAcceptorAlreadyActive     = errors.New("you are already in an active match and cannot accept another")
	ErrRequesterAlreadyActive    = errors.New("the requester is already in another active match")
	ErrMatchNotFound             = errors.New("match not found or no longer available")
	ErrNoActiveMatch             = errors.New("you are not in an active match")
	ErrNotAParticipant           = errors.New("you are not a participant of this match")
	ErrMatchNotCompleted         = errors.New("match has not been decided yet")
	ErrMatchAwaitingConfirmation = errors.New("match is decided and waiting for confirmation")
	ErrMatchConfirming           = errors.New("match is being confirmed")
	ErrTournamentNotFound        = errors.New("there is no active tournament here")
	ErrTournamentExists          = errors.New("tournament is already tracked")
	ErrTournamentStarted         = errors.New("the tournament has already been started")
	ErrTournamentNotStarted      = errors.New("the tournament has not been started")
	ErrRegistrationClosed        = errors.New("registration is closed for this tournament")
	ErrParticipantNotFound       = errors.New("participant is not registered in this tournament")
	ErrAmbiguousMatch            = errors.New("multiple open matches found between you and your opponent")
	ErrMatchAlreadyProcessed     = errors.New("this match has already been processed")
	ErrMatchNotReady             = errors.New("this match is still waiting for its players")
)

// ErrCollaborator is the target of errors.Is for every CollaboratorError.
var ErrCollaborator = errors.New("collaborator request failed")

var errorKindMap = map[error]ErrorKind{
	ErrInvalidScore:          KindUserInput,
	ErrSelfAccept:            KindUserInput,
	ErrAlreadyPending:        KindUserInput,
	ErrAlreadyRegistered:     KindUserInput,
	ErrInvalidTournamentType: KindUserInput,
	ErrInvalidRating:         KindUserInput,
	ErrNotOrganizer:          KindUserInput,
	ErrNoWinsToUndo:          KindUserInput,
	ErrUnknownCommand:        KindUserInput,
	ErrMissingOption:         KindUserInput,
	ErrOnCooldown:            KindUserInput,
	ErrInvalidChoice:         KindUserInput,

	ErrAlreadyActive:             KindStateConflict,
	ErrAcceptorAlreadyActive:     KindStateConflict,
	ErrRequesterAlreadyActive:    KindStateConflict,
	ErrMatchNotFound:             KindStateConflict,
	ErrNoActiveMatch:             KindStateConflict,
	ErrNotAParticipant:           KindStateConflict,
	ErrMatchNotCompleted:         KindStateConflict,
	ErrMatchAwaitingConfirmation: KindStateConflict,
	ErrMatchConfirming:           KindStateConflict,
	ErrTournamentNotFound:        KindStateConflict,
	ErrTournamentExists:          KindStateConflict,
	ErrTournamentStarted:         KindStateConflict,
	ErrTournamentNotStarted:      KindStateConflict,
	ErrRegistrationClosed:        KindStateConflict,
	ErrParticipantNotFound:       KindStateConflict,
	ErrAmbiguousMatch:            KindStateConflict,
	ErrMatchAlreadyProcessed:     KindStateConflict,
	ErrMatchNotReady:             KindStateConflict,

	ErrCollaborator: KindCollaborator,
}

var errorCodeMap = map[error]int{
	ErrInvalidScore:          520101,
	ErrSelfAccept:            520102,
	ErrAlreadyPending:        520103,
	ErrAlreadyRegistered:     520104,
	ErrInvalidTournamentType: 520105,
	ErrInvalidRating:         520106,
	ErrNotOrganizer:          520107,
	ErrNoWinsToUndo:          520108,
	ErrUnknownCommand:        520109,
	ErrMissingOption:         520110,
	ErrOnCooldown:            520111,
	ErrInvalidChoice:         520112,

	ErrAlreadyActive:             520201,
	ErrAcceptorAlreadyActive:     520202,
	ErrRequesterAlreadyActive:    520203,
	ErrMatchNotFound:             520204,
	ErrNoActiveMatch:             520205,
	ErrNotAParticipant:           520206,
	ErrMatchNotCompleted:         520207,
	ErrMatchAwaitingConfirmation: 520208,
	ErrMatchConfirming:           520209,
	ErrTournamentNotFound:        520210,
	ErrTournamentExists:          520211,
	ErrTournamentStarted:         520212,
	ErrTournamentNotStarted:      520213,
	ErrRegistrationClosed:        520214,
	ErrParticipantNotFound:       520215,
	ErrAmbiguousMatch:            520216,
	ErrMatchAlreadyProcessed:     520217,
	ErrMatchNotReady:             520218,

	ErrCollaborator: 520301,
}

// ErrorKindOf returns the kind of err, looking through wrapped errors.
func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for target, kind := range errorKindMap {
		if errors.Is(err, target) {
			return kind
		}
	}
	return KindUnknown
}

// ErrorCode returns a code for the error.
// It returns 20002 if the error is not registered in the map.
func ErrorCode(err error) int {
	for target, code := range errorCodeMap {
		if errors.Is(err, target) {
			return code
		}
	}
	return 20002
}

// CollaboratorError describes a failed call to an external service.
type CollaboratorError struct {
	Service    string
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *CollaboratorError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Service, e.Operation)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s with status %d", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CollaboratorError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCollaborator}
	}
	return []error{ErrCollaborator, e.Err}
}
