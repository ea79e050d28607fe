// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament

import (
	"context"
	"fmt"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-core-ranked/pkg/bracket"
	"github.com/AccelByte/extend-core-ranked/pkg/common"
	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
	"github.com/AccelByte/extend-core-ranked/pkg/scheduler"
)

// PollScheduler runs fn every interval, starting right away.
type PollScheduler interface {
	Every(name string, interval time.Duration, fn func()) (scheduler.Poller, error)
}

// Rater applies rating changes for tournament results.
type Rater interface {
	ApplyPairwise(scope *envelope.Scope, winnerID, loserID string) (rating.PairwiseResult, error)
	ApplyStandings(scope *envelope.Scope, format models.Format, placements []rating.Placement) ([]rating.Change, error)
}

// SyncLoop keeps tracked tournaments in step with the bracket provider. Each
// started tournament owns one poller; a tick refreshes the mirror, announces
// newly opened matches and finalizes the tournament once its format says so.
type SyncLoop struct {
	registry *Registry
	bracket  bracket.Service
	chat     gateway.ChatGateway
	ratings  Rater
	polls    PollScheduler
	metrics  metrics.RankedMetrics
	interval time.Duration
}

func NewSyncLoop(
	registry *Registry,
	bracketService bracket.Service,
	chat gateway.ChatGateway,
	ratings Rater,
	polls PollScheduler,
	m metrics.RankedMetrics,
	interval time.Duration,
) *SyncLoop {
	if interval <= 0 {
		interval = constants.TournamentPollPeriod
	}
	return &SyncLoop{
		registry: registry,
		bracket:  bracketService,
		chat:     chat,
		ratings:  ratings,
		polls:    polls,
		metrics:  m,
		interval: interval,
	}
}

func pollerName(tournamentID int64) string {
	return fmt.Sprintf("tournament-sync-%d", tournamentID)
}

// Track starts polling a started tournament. The first tick runs right away.
func (l *SyncLoop) Track(rootScope *envelope.Scope, state *State) error {
	scope := rootScope.NewChildScope("tournament.Track")
	defer scope.Finish()

	traceID := scope.TraceID
	id := state.ID()
	poller, err := l.polls.Every(pollerName(id), l.interval, func() { l.Tick(traceID, id) })
	if err != nil {
		return &models.CollaboratorError{Service: "scheduler", Operation: "every", Err: err}
	}
	if !state.AttachPoller(poller) {
		poller.Stop()
	}
	scope.Log.WithField(envelope.TournamentIDTag, id).WithField("interval", l.interval.String()).Info("tournament sync started")
	return nil
}

// Trigger runs a tick now instead of waiting for the next interval.
func (l *SyncLoop) Trigger(state *State) {
	if p := state.Poller(); p != nil {
		p.RunNow()
	}
}

// Tick performs one synchronisation of tournamentID.
func (l *SyncLoop) Tick(traceID string, tournamentID int64) {
	scope := envelope.NewRootScope(context.Background(), "tournament.Tick", traceID)
	defer scope.Finish()
	scope = scope.WithField(envelope.TournamentIDTag, tournamentID)

	state, ok := l.registry.Get(tournamentID)
	if !ok || state.Phase() != PhaseStarted {
		return
	}

	format := state.Format()
	start := time.Now()
	defer func() {
		l.metrics.AddSyncElapsedTimeMs(format.String(), constants.FunctionSyncTick, time.Since(start))
	}()

	remote, err := l.bracket.GetTournament(scope.Ctx, tournamentID)
	if err != nil {
		scope.Log.WithError(err).Warn("failed to refresh tournament, retrying next tick")
		return
	}
	state.SetRemote(remote)

	snapshot := RemoteSnapshot{Tournament: remote}
	strategy := StrategyFor(format)
	if strategy.NeedsMatches() {
		matches, err := l.bracket.GetMatches(scope.Ctx, tournamentID, bracket.MatchFilter{})
		if err != nil {
			scope.Log.WithError(err).Warn("failed to fetch matches, retrying next tick")
			return
		}
		state.IndexMatches(matches)
		snapshot.Matches = matches
	}

	if strategy.IsComplete(snapshot) {
		l.Finalize(scope, state)
		return
	}
	l.notify(scope, state, format)
}

// notify announces open matches that were not announced before.
func (l *SyncLoop) notify(scope *envelope.Scope, state *State, format models.Format) {
	open, err := l.bracket.GetMatches(scope.Ctx, state.ID(), bracket.MatchFilter{State: constants.MatchFilterOpen})
	if err != nil {
		scope.Log.WithError(err).Warn("failed to fetch open matches")
		return
	}
	state.IndexMatches(open)
	l.refreshParticipants(scope, state, open)

	if format == models.FormatRoundRobin {
		if state.ClaimRoundAnnouncement(open) {
			gateway.Send(scope, l.chat, state.ChannelID(), gateway.WithEmbed(roundRobinEmbed(state, open)))
			scope.Log.WithField("matches", len(open)).Info("round robin pairings announced")
		}
		return
	}

	for _, m := range open {
		if m.Player1ID == 0 || m.Player2ID == 0 {
			continue
		}
		p1, ok1 := state.ParticipantByProviderID(m.Player1ID)
		p2, ok2 := state.ParticipantByProviderID(m.Player2ID)
		if !ok1 || !ok2 {
			scope.Log.WithField("match", m.ID).Warn("open match has unknown participants, skipping announcement")
			continue
		}
		if !state.MarkNotified(m.ID) {
			continue
		}
		gateway.Send(scope, l.chat, state.ChannelID(), gateway.WithEmbed(matchEmbed(m, p1, p2)))
		gateway.DirectMessage(scope, l.chat, p1.Misc, nextMatchDM(m, p2))
		gateway.DirectMessage(scope, l.chat, p2.Misc, nextMatchDM(m, p1))
		scope.Log.WithField("match", m.ID).Info("match announced")
	}
}

// refreshParticipants pulls the entrant list when an open match names a
// participant that was not registered through chat.
func (l *SyncLoop) refreshParticipants(scope *envelope.Scope, state *State, open []models.RemoteMatch) {
	missing := pie.Any(open, func(m models.RemoteMatch) bool {
		for _, id := range []int64{m.Player1ID, m.Player2ID} {
			if id == 0 {
				continue
			}
			if _, ok := state.ParticipantByProviderID(id); !ok {
				return true
			}
		}
		return false
	})
	if !missing {
		return
	}
	participants, err := l.bracket.GetParticipants(scope.Ctx, state.ID())
	if err != nil {
		scope.Log.WithError(err).Warn("failed to refresh participants")
		return
	}
	if added := state.MergeParticipants(participants); added > 0 {
		scope.Log.WithField("added", added).Info("participants refreshed from bracket")
	}
}

// Finalize closes a finished tournament: it finalizes it remotely when needed,
// applies standings ratings, posts the results and stops tracking it. Only
// one caller wins the finalization; a failure before the ratings are applied
// returns the tournament to the started phase so a later tick retries.
func (l *SyncLoop) Finalize(rootScope *envelope.Scope, state *State) {
	scope := rootScope.NewChildScope("tournament.Finalize")
	defer scope.Finish()

	if !state.transition(PhaseStarted, PhaseFinalizing) {
		return
	}

	format := state.Format()
	start := time.Now()
	defer func() {
		l.metrics.AddSyncElapsedTimeMs(format.String(), constants.FunctionFinalize, time.Since(start))
	}()

	remote := state.Remote()
	if !remote.IsTerminal() {
		finalized, err := l.bracket.FinalizeTournament(scope.Ctx, state.ID())
		if err != nil {
			scope.Log.WithError(err).Error("failed to finalize tournament")
			gateway.Send(scope, l.chat, state.ChannelID(), gateway.Text(msgFinalizeFailed))
			state.transition(PhaseFinalizing, PhaseStarted)
			return
		}
		state.SetRemote(finalized)
		remote = finalized
	}

	participants, err := l.bracket.GetParticipants(scope.Ctx, state.ID())
	if err != nil {
		scope.Log.WithError(err).Error("failed to fetch final standings")
		gateway.Send(scope, l.chat, state.ChannelID(), gateway.Text(msgStandingsFailed))
		state.transition(PhaseFinalizing, PhaseStarted)
		return
	}
	standings := finalStandings(participants)
	scope.Log.WithField("standings", common.LogJSONFormatter(standings)).Debug("final standings")

	changes, ratingErr := l.ratings.ApplyStandings(scope, format, placements(standings))
	if ratingErr != nil {
		scope.Log.WithError(ratingErr).Error("failed to apply tournament ratings")
	}

	gateway.Send(scope, l.chat, state.ChannelID(), gateway.WithEmbed(concludedEmbed(remote, format, standings, changes, ratingErr)))

	if poller := state.detachPoller(PhaseComplete); poller != nil {
		poller.Stop()
	}
	l.registry.Remove(state)
	scope.Log.WithField("participants", len(standings)).Info("tournament finalized")
}

// Pause stops the checks of a tournament for good.
func (l *SyncLoop) Pause(state *State) bool {
	if !state.transition(PhaseStarted, PhasePaused) {
		return false
	}
	if poller := state.detachPoller(PhasePaused); poller != nil {
		poller.Stop()
	}
	return true
}

// finalStandings keeps entrants linked to a player, best final rank first.
// Entrants without a final rank go last.
func finalStandings(participants []models.Participant) []models.Participant {
	linked := pie.Filter(participants, func(p models.Participant) bool { return p.Misc != "" })
	return pie.SortUsing(linked, func(a, b models.Participant) bool {
		ra, rb := rankKey(a.FinalRank), rankKey(b.FinalRank)
		if ra != rb {
			return ra < rb
		}
		return a.Seed < b.Seed
	})
}

// placements ranks standings by position so entrants left out of the rating
// do not leave gaps. Tied final ranks share a rank; a missing one stays 0.
func placements(standings []models.Participant) []rating.Placement {
	out := make([]rating.Placement, 0, len(standings))
	for i, p := range standings {
		rank := 0
		if p.FinalRank > 0 {
			rank = i + 1
			if i > 0 && standings[i-1].FinalRank == p.FinalRank {
				rank = out[i-1].Rank
			}
		}
		out = append(out, rating.Placement{PlayerID: p.Misc, Rank: rank})
	}
	return out
}

func rankKey(rank int) int {
	if rank <= 0 {
		return int(^uint(0) >> 1)
	}
	return rank
}
