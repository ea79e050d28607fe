// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package ranked tracks ad-hoc best-of-5 challenges from seek to confirmation.
package ranked

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
)

// ExpirationScheduler runs fn once after delay. cancel must be safe to call
// more than once and after fn ran.
type ExpirationScheduler interface {
	After(name string, delay time.Duration, fn func()) (cancel func(), err error)
}

// PairwiseRater applies the rating update of a confirmed match.
type PairwiseRater interface {
	ApplyPairwise(scope *envelope.Scope, winnerID, loserID string) (rating.PairwiseResult, error)
}

type ConfirmResult struct {
	Match  ScoreState
	Rating rating.PairwiseResult
}

// Registry holds pending and active matches. Every index is a sync.Map keyed
// by match or player id; claims use LoadOrStore and releases CompareAndDelete,
// so a player is never indexed by two pending or two active matches.
type Registry struct {
	expiry      ExpirationScheduler
	ratings     PairwiseRater
	chat        gateway.ChatGateway
	metrics     metrics.RankedMetrics
	expireAfter time.Duration

	pending         sync.Map // match id -> *Match
	pendingByPlayer sync.Map // requester id -> *Match
	active          sync.Map // match id -> *Match
	activeByPlayer  sync.Map // player id -> *Match
}

func NewRegistry(
	expiry ExpirationScheduler,
	ratings PairwiseRater,
	chat gateway.ChatGateway,
	m metrics.RankedMetrics,
	expireAfter time.Duration,
) *Registry {
	if expireAfter <= 0 {
		expireAfter = constants.RankedExpiry
	}
	return &Registry{
		expiry:      expiry,
		ratings:     ratings,
		chat:        chat,
		metrics:     m,
		expireAfter: expireAfter,
	}
}

// Seek opens a pending challenge for player.
func (r *Registry) Seek(rootScope *envelope.Scope, player string) (ScoreState, error) {
	scope := rootScope.NewChildScope("ranked.Seek")
	defer scope.Finish()

	if _, ok := r.activeByPlayer.Load(player); ok {
		return ScoreState{}, models.ErrAlreadyActive
	}

	match := newMatch(player)
	if _, loaded := r.pendingByPlayer.LoadOrStore(player, match); loaded {
		return ScoreState{}, models.ErrAlreadyPending
	}
	// an accept may have made player active since the first check
	if _, ok := r.activeByPlayer.Load(player); ok {
		r.pendingByPlayer.CompareAndDelete(player, match)
		return ScoreState{}, models.ErrAlreadyActive
	}
	r.pending.Store(match.id, match)

	cancel, err := r.expiry.After("ranked-expire-"+match.id, r.expireAfter, func() { r.expire(scope.TraceID, match) })
	if err != nil {
		r.pending.CompareAndDelete(match.id, match)
		r.pendingByPlayer.CompareAndDelete(player, match)
		return ScoreState{}, &models.CollaboratorError{Service: "scheduler", Operation: "after", Err: err}
	}

	match.mu.Lock()
	if match.state == StatePending {
		match.cancelExpiry = cancel
	}
	state := match.snapshot()
	match.mu.Unlock()

	r.metrics.AddRankedEvent(constants.EventSeek)
	scope.Log.WithField(envelope.MatchIDTag, match.id).WithField(envelope.PlayerIDTag, player).Info("match request created")

	return state, nil
}

// Accept pairs acceptor with the requester of a pending challenge.
func (r *Registry) Accept(rootScope *envelope.Scope, matchID, acceptor string) (ScoreState, error) {
	scope := rootScope.NewChildScope("ranked.Accept")
	defer scope.Finish()

	v, ok := r.pending.Load(matchID)
	if !ok {
		return ScoreState{}, models.ErrMatchNotFound
	}
	match := v.(*Match)
	if match.requester == acceptor {
		return ScoreState{}, models.ErrSelfAccept
	}

	if _, loaded := r.activeByPlayer.LoadOrStore(acceptor, match); loaded {
		return ScoreState{}, models.ErrAcceptorAlreadyActive
	}
	if _, loaded := r.activeByPlayer.LoadOrStore(match.requester, match); loaded {
		r.activeByPlayer.CompareAndDelete(acceptor, match)
		return ScoreState{}, models.ErrRequesterAlreadyActive
	}
	if !r.pending.CompareAndDelete(matchID, match) {
		// expired or accepted by someone else in the meantime
		r.activeByPlayer.CompareAndDelete(acceptor, match)
		r.activeByPlayer.CompareAndDelete(match.requester, match)
		return ScoreState{}, models.ErrMatchNotFound
	}
	r.pendingByPlayer.CompareAndDelete(match.requester, match)

	match.mu.Lock()
	match.opponent = acceptor
	match.state = StateActive
	cancel := match.cancelExpiry
	match.cancelExpiry = nil
	state := match.snapshot()
	match.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.active.Store(matchID, match)

	r.metrics.AddRankedEvent(constants.EventAccept)
	scope.Log.WithField(envelope.MatchIDTag, matchID).Infof("match accepted by %s", acceptor)

	return state, nil
}

// RecordWin adds one game win to player's side.
func (r *Registry) RecordWin(rootScope *envelope.Scope, player string) (ScoreState, error) {
	scope := rootScope.NewChildScope("ranked.RecordWin")
	defer scope.Finish()

	return r.mutate(scope, player, func(m *Match) error {
		if m.state == StateCompleted {
			return models.ErrMatchAwaitingConfirmation
		}
		switch player {
		case m.requester:
			m.requesterWins++
		case m.opponent:
			m.opponentWins++
		default:
			return models.ErrNotAParticipant
		}
		m.evaluate()
		return nil
	})
}

// UndoWin removes one game win from player's side. Dropping the winner below
// three wins reopens a completed match.
func (r *Registry) UndoWin(rootScope *envelope.Scope, player string) (ScoreState, error) {
	scope := rootScope.NewChildScope("ranked.UndoWin")
	defer scope.Finish()

	return r.mutate(scope, player, func(m *Match) error {
		var wins *int
		switch player {
		case m.requester:
			wins = &m.requesterWins
		case m.opponent:
			wins = &m.opponentWins
		default:
			return models.ErrNotAParticipant
		}
		if *wins == 0 {
			return models.ErrNoWinsToUndo
		}
		*wins--
		m.evaluate()
		return nil
	})
}

// SetScore overwrites the score from player's perspective.
func (r *Registry) SetScore(rootScope *envelope.Scope, player string, ownWins, oppWins int) (ScoreState, error) {
	scope := rootScope.NewChildScope("ranked.SetScore")
	defer scope.Finish()

	if !validScore(ownWins, oppWins) {
		return ScoreState{}, models.ErrInvalidScore
	}
	return r.mutate(scope, player, func(m *Match) error {
		switch player {
		case m.requester:
			m.setScore(ownWins, oppWins)
		case m.opponent:
			m.setScore(oppWins, ownWins)
		default:
			return models.ErrNotAParticipant
		}
		return nil
	})
}

// AdjustScore overwrites the score of an active match in requester/opponent order.
func (r *Registry) AdjustScore(rootScope *envelope.Scope, matchID string, requesterWins, opponentWins int) (ScoreState, error) {
	scope := rootScope.NewChildScope("ranked.AdjustScore")
	defer scope.Finish()

	if !validScore(requesterWins, opponentWins) {
		return ScoreState{}, models.ErrInvalidScore
	}
	v, ok := r.active.Load(matchID)
	if !ok {
		return ScoreState{}, models.ErrMatchNotFound
	}
	return r.apply(scope, v.(*Match), func(m *Match) error {
		m.setScore(requesterWins, opponentWins)
		return nil
	})
}

// Confirm applies the rating update of a completed match and retires it.
// The rating is applied at most once per match.
func (r *Registry) Confirm(rootScope *envelope.Scope, matchID string) (ConfirmResult, error) {
	scope := rootScope.NewChildScope("ranked.Confirm")
	defer scope.Finish()

	v, ok := r.active.Load(matchID)
	if !ok {
		return ConfirmResult{}, models.ErrMatchNotFound
	}
	match := v.(*Match)

	match.mu.Lock()
	if match.confirming {
		match.mu.Unlock()
		return ConfirmResult{}, models.ErrMatchConfirming
	}
	if match.state != StateCompleted {
		match.mu.Unlock()
		return ConfirmResult{}, models.ErrMatchNotCompleted
	}
	match.confirming = true
	winner, loser := match.winner, match.loser
	match.mu.Unlock()

	result, err := r.ratings.ApplyPairwise(scope, winner, loser)
	if err != nil {
		match.mu.Lock()
		match.confirming = false
		match.mu.Unlock()
		return ConfirmResult{}, err
	}

	r.active.CompareAndDelete(matchID, match)
	r.activeByPlayer.CompareAndDelete(match.requester, match)
	match.mu.Lock()
	r.activeByPlayer.CompareAndDelete(match.opponent, match)
	state := match.snapshot()
	match.mu.Unlock()

	r.metrics.AddRankedEvent(constants.EventConfirm)
	scope.Log.WithField(envelope.MatchIDTag, matchID).Info("match confirmed")

	return ConfirmResult{Match: state, Rating: result}, nil
}

// Lookup returns the pending and active match of player, if any.
func (r *Registry) Lookup(player string) (pending *ScoreState, active *ScoreState) {
	if v, ok := r.pendingByPlayer.Load(player); ok {
		s := v.(*Match).Snapshot()
		if s.State == StatePending {
			pending = &s
		}
	}
	if v, ok := r.activeByPlayer.Load(player); ok {
		s := v.(*Match).Snapshot()
		if s.State == StateActive || s.State == StateCompleted {
			active = &s
		}
	}
	return pending, active
}

// Close cancels every outstanding expiration.
func (r *Registry) Close() {
	r.pending.Range(func(_, v any) bool {
		match := v.(*Match)
		match.mu.Lock()
		cancel := match.cancelExpiry
		match.cancelExpiry = nil
		match.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return true
	})
}

func (r *Registry) mutate(scope *envelope.Scope, player string, fn func(m *Match) error) (ScoreState, error) {
	v, ok := r.activeByPlayer.Load(player)
	if !ok {
		return ScoreState{}, models.ErrNoActiveMatch
	}
	return r.apply(scope, v.(*Match), fn)
}

// apply runs fn under the match lock and records a completion edge.
func (r *Registry) apply(scope *envelope.Scope, match *Match, fn func(m *Match) error) (ScoreState, error) {
	match.mu.Lock()
	if err := match.mutable(); err != nil {
		match.mu.Unlock()
		return ScoreState{}, err
	}
	before := match.state
	if err := fn(match); err != nil {
		match.mu.Unlock()
		return ScoreState{}, err
	}
	state := match.snapshot()
	match.mu.Unlock()

	if before != StateCompleted && state.State == StateCompleted {
		r.metrics.AddRankedEvent(constants.EventComplete)
		scope.Log.WithField(envelope.MatchIDTag, state.MatchID).
			Infof("match completed %d - %d, winner %s", state.RequesterWins, state.OpponentWins, state.Winner)
	}
	return state, nil
}

func (r *Registry) expire(traceID string, match *Match) {
	scope := envelope.NewRootScope(context.Background(), "ranked.expire", traceID)
	defer scope.Finish()

	if !r.pending.CompareAndDelete(match.id, match) {
		return
	}
	r.pendingByPlayer.CompareAndDelete(match.requester, match)

	match.mu.Lock()
	match.state = StateExpired
	match.cancelExpiry = nil
	match.mu.Unlock()

	r.metrics.AddRankedEvent(constants.EventExpire)
	scope.Log.WithField(envelope.MatchIDTag, match.id).Info("match request expired")

	minutes := int(math.Round(r.expireAfter.Minutes()))
	gateway.DirectMessage(scope, r.chat, match.requester,
		fmt.Sprintf("Your match request has expired after %d minutes. You can seek a new match now.", minutes))
}
