// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament

import (
	"sync"
	"sync/atomic"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// Registry tracks in-flight tournaments by provider id and by the channel
// they were created in. A channel hosts at most one tournament at a time.
type Registry struct {
	metrics metrics.RankedMetrics

	byID      sync.Map // tournament id -> *State
	byChannel sync.Map // channel id -> *State
	count     atomic.Int64
}

func NewRegistry(m metrics.RankedMetrics) *Registry {
	return &Registry{metrics: m}
}

// Create starts tracking state. It fails with ErrTournamentExists when the id or
// the channel is already taken.
func (r *Registry) Create(state *State) error {
	if _, loaded := r.byID.LoadOrStore(state.ID(), state); loaded {
		return models.ErrTournamentExists
	}
	if state.ChannelID() != "" {
		if _, loaded := r.byChannel.LoadOrStore(state.ChannelID(), state); loaded {
			r.byID.CompareAndDelete(state.ID(), state)
			return models.ErrTournamentExists
		}
	}
	r.metrics.TrackedTournaments(int(r.count.Add(1)))
	return nil
}

// Remove stops tracking state. Removing twice is a no-op.
func (r *Registry) Remove(state *State) {
	if !r.byID.CompareAndDelete(state.ID(), state) {
		return
	}
	r.byChannel.CompareAndDelete(state.ChannelID(), state)
	r.metrics.TrackedTournaments(int(r.count.Add(-1)))
}

func (r *Registry) Get(tournamentID int64) (*State, bool) {
	v, ok := r.byID.Load(tournamentID)
	if !ok {
		return nil, false
	}
	return v.(*State), true
}

func (r *Registry) FindByChannel(channelID string) (*State, error) {
	v, ok := r.byChannel.Load(channelID)
	if !ok {
		return nil, models.ErrTournamentNotFound
	}
	return v.(*State), nil
}

// FindByMatch resolves the tournament owning an indexed match.
func (r *Registry) FindByMatch(matchID int64) (*State, error) {
	var found *State
	r.byID.Range(func(_, v any) bool {
		state := v.(*State)
		if state.HasMatch(matchID) {
			found = state
			return false
		}
		return true
	})
	if found == nil {
		return nil, models.ErrMatchNotFound
	}
	return found, nil
}

// List returns snapshots of every tracked tournament ordered by id.
func (r *Registry) List() []Snapshot {
	var out []Snapshot
	r.byID.Range(func(_, v any) bool {
		out = append(out, v.(*State).Snapshot())
		return true
	})
	return pie.SortUsing(out, func(a, b Snapshot) bool { return a.ID < b.ID })
}

func (r *Registry) Len() int {
	return int(r.count.Load())
}
