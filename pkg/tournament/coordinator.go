// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/go-openapi/swag"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/AccelByte/extend-core-ranked/pkg/bracket"
	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/utils"
)

const (
	bracketBaseURL = "https://challonge.com/"
	maxSlugLength  = 40
)

type Options struct {
	OrganizerRoles  []string
	RequireApproval bool
}

type CreateParams struct {
	Name      string
	Type      string
	ChannelID string
	Roles     []string
}

// Coordinator runs the tournament commands against the bracket provider and
// the in-memory registry. Announcements go to the tournament's channel;
// replies to the invoking user are left to the caller.
type Coordinator struct {
	registry *Registry
	loop     *SyncLoop
	bracket  bracket.Service
	chat     gateway.ChatGateway
	ratings  Rater
	options  Options
}

func NewCoordinator(
	registry *Registry,
	loop *SyncLoop,
	bracketService bracket.Service,
	chat gateway.ChatGateway,
	ratings Rater,
	options Options,
) *Coordinator {
	return &Coordinator{
		registry: registry,
		loop:     loop,
		bracket:  bracketService,
		chat:     chat,
		ratings:  ratings,
		options:  options,
	}
}

// Tournaments lists every tracked tournament.
func (c *Coordinator) Tournaments() []Snapshot {
	return c.registry.List()
}

// IsOrganizer reports whether any of roles may manage tournaments.
func (c *Coordinator) IsOrganizer(roles []string) bool {
	return utils.ContainsFold(c.options.OrganizerRoles, roles...)
}

func (c *Coordinator) Create(rootScope *envelope.Scope, params CreateParams) (Snapshot, error) {
	scope := rootScope.NewChildScope("tournament.Create")
	defer scope.Finish()

	if !c.IsOrganizer(params.Roles) {
		return Snapshot{}, models.ErrNotOrganizer
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Snapshot{}, models.ErrMissingOption
	}
	format, ok := models.ParseFormat(params.Type)
	if !ok {
		return Snapshot{}, models.ErrInvalidTournamentType
	}
	if _, err := c.registry.FindByChannel(params.ChannelID); err == nil {
		return Snapshot{}, models.ErrTournamentExists
	}

	url := bracketSlug(name)
	remote, err := c.bracket.CreateTournament(scope.Ctx, bracket.CreateTournamentParams{
		Name:       name,
		URL:        url,
		Format:     format,
		Private:    swag.Bool(false),
		OpenSignup: swag.Bool(false),
	})
	if err != nil {
		return Snapshot{}, err
	}

	bracketURL := remote.FullURL
	if bracketURL == "" {
		bracketURL = bracketBaseURL + url
	}
	state := NewState(remote, format, params.ChannelID, bracketURL)
	if err := c.registry.Create(state); err != nil {
		scope.Log.WithField(envelope.TournamentIDTag, remote.ID).Warn("channel claimed concurrently, remote tournament left untracked")
		return Snapshot{}, err
	}

	gateway.Buttons(scope, c.chat, params.ChannelID, gateway.WithEmbed(createdEmbed(remote, format, bracketURL)), []gateway.Button{
		{ID: constants.ButtonRegister, Label: "Register", Style: gateway.ButtonPrimary},
	})
	scope.Log.WithField(envelope.TournamentIDTag, remote.ID).WithField("format", format.String()).Info("tournament created")

	return state.Snapshot(), nil
}

// Register adds playerID to the registration-phase tournament of channelID.
func (c *Coordinator) Register(rootScope *envelope.Scope, channelID, playerID, name string) (models.Participant, error) {
	scope := rootScope.NewChildScope("tournament.Register")
	defer scope.Finish()

	state, err := c.registry.FindByChannel(channelID)
	if err != nil {
		return models.Participant{}, err
	}
	if err := state.ReserveParticipant(playerID); err != nil {
		return models.Participant{}, err
	}

	participant, err := c.bracket.AddParticipant(scope.Ctx, state.ID(), bracket.ParticipantParams{Name: name, Misc: playerID})
	if err != nil {
		state.ReleaseParticipant(playerID)
		return models.Participant{}, err
	}
	state.ConfirmParticipant(playerID, participant)

	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).WithField(envelope.PlayerIDTag, playerID).Info("participant registered")
	return participant, nil
}

func (c *Coordinator) Start(rootScope *envelope.Scope, channelID string, roles []string) (Snapshot, error) {
	scope := rootScope.NewChildScope("tournament.Start")
	defer scope.Finish()

	if !c.IsOrganizer(roles) {
		return Snapshot{}, models.ErrNotOrganizer
	}
	state, err := c.registry.FindByChannel(channelID)
	if err != nil {
		return Snapshot{}, err
	}
	if !state.transition(PhaseRegistration, PhaseStarting) {
		return Snapshot{}, models.ErrTournamentStarted
	}

	remote, err := c.bracket.StartTournament(scope.Ctx, state.ID())
	if err != nil {
		state.transition(PhaseStarting, PhaseRegistration)
		return Snapshot{}, err
	}
	state.SetRemote(remote)

	if participants, err := c.bracket.GetParticipants(scope.Ctx, state.ID()); err != nil {
		scope.Log.WithError(err).Warn("failed to load participants after start")
	} else {
		state.MergeParticipants(participants)
	}
	if matches, err := c.bracket.GetMatches(scope.Ctx, state.ID(), bracket.MatchFilter{}); err != nil {
		scope.Log.WithError(err).Warn("failed to index matches after start")
	} else {
		state.IndexMatches(matches)
	}

	state.transition(PhaseStarting, PhaseStarted)
	snap := state.Snapshot()
	gateway.Send(scope, c.chat, channelID, gateway.WithEmbed(startedEmbed(snap)))

	if err := c.loop.Track(scope, state); err != nil {
		return snap, err
	}
	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).Info("tournament started")
	return snap, nil
}

func (c *Coordinator) Randomize(rootScope *envelope.Scope, channelID string, roles []string) error {
	scope := rootScope.NewChildScope("tournament.Randomize")
	defer scope.Finish()

	if !c.IsOrganizer(roles) {
		return models.ErrNotOrganizer
	}
	state, err := c.registry.FindByChannel(channelID)
	if err != nil {
		return err
	}
	if state.Phase() != PhaseRegistration {
		return models.ErrTournamentStarted
	}
	return c.bracket.RandomizeSeeding(scope.Ctx, state.ID())
}

// Report records the result of the open match between reporter and opponent.
// Scores are given from the reporter's point of view.
func (c *Coordinator) Report(rootScope *envelope.Scope, channelID, reporter, opponent string, ownWins, oppWins int) (models.RemoteMatch, error) {
	scope := rootScope.NewChildScope("tournament.Report")
	defer scope.Finish()

	if ownWins < 0 || oppWins < 0 || ownWins == oppWins {
		return models.RemoteMatch{}, models.ErrInvalidScore
	}
	state, err := c.registry.FindByChannel(channelID)
	if err != nil {
		return models.RemoteMatch{}, err
	}
	if phase := state.Phase(); phase != PhaseStarted && phase != PhasePaused {
		return models.RemoteMatch{}, models.ErrTournamentNotStarted
	}
	self, ok := state.ParticipantByPlayer(reporter)
	if !ok {
		return models.RemoteMatch{}, models.ErrParticipantNotFound
	}
	other, ok := state.ParticipantByPlayer(opponent)
	if !ok {
		return models.RemoteMatch{}, models.ErrParticipantNotFound
	}

	open, err := c.bracket.GetMatches(scope.Ctx, state.ID(), bracket.MatchFilter{State: constants.MatchFilterOpen, ParticipantID: self.ID})
	if err != nil {
		return models.RemoteMatch{}, err
	}
	state.IndexMatches(open)
	between := pie.Filter(open, func(m models.RemoteMatch) bool { return m.Involves(self.ID, other.ID) })
	switch {
	case len(between) == 0:
		return models.RemoteMatch{}, models.ErrMatchNotFound
	case len(between) > 1:
		return models.RemoteMatch{}, models.ErrAmbiguousMatch
	}
	match := between[0]

	p1Score, p2Score := ownWins, oppWins
	if match.Player1ID != self.ID {
		p1Score, p2Score = oppWins, ownWins
	}
	winner := other.ID
	if ownWins > oppWins {
		winner = self.ID
	}

	update := bracket.ScoreUpdate(p1Score, p2Score, winner)
	if c.options.RequireApproval {
		update.WinnerID = nil
	}
	updated, err := c.bracket.UpdateMatch(scope.Ctx, state.ID(), match.ID, update)
	if err != nil {
		return models.RemoteMatch{}, err
	}

	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).WithField("match", match.ID).WithField("scores", *update.ScoresCsv).Info("match result reported")
	if c.options.RequireApproval {
		gateway.Buttons(scope, c.chat, channelID, gateway.WithEmbed(reportedEmbed(match, self, other, *update.ScoresCsv)), approvalButtons(match.ID))
		return updated, nil
	}
	c.loop.Trigger(state)
	return updated, nil
}

// Approve confirms a reported result, applies the pairwise rating update and
// tells both players.
func (c *Coordinator) Approve(rootScope *envelope.Scope, matchID int64, roles []string) (models.RemoteMatch, error) {
	scope := rootScope.NewChildScope("tournament.Approve")
	defer scope.Finish()

	state, match, err := c.openMatch(scope, matchID, roles)
	if err != nil {
		return models.RemoteMatch{}, err
	}
	winner := match.WinnerID
	if winner == 0 {
		p1, p2, ok := parseScores(match.ScoresCsv)
		if !ok || p1 == p2 {
			return models.RemoteMatch{}, models.ErrMatchNotCompleted
		}
		winner = match.Player2ID
		if p1 > p2 {
			winner = match.Player1ID
		}
	}
	loser := match.Player1ID
	if winner == match.Player1ID {
		loser = match.Player2ID
	}

	updated, err := c.bracket.UpdateMatch(scope.Ctx, state.ID(), match.ID, bracket.MatchUpdate{
		ScoresCsv: swag.String(match.ScoresCsv),
		WinnerID:  swag.Int64(winner),
	})
	if err != nil {
		return models.RemoteMatch{}, err
	}

	winnerP, okW := state.ParticipantByProviderID(winner)
	loserP, okL := state.ParticipantByProviderID(loser)
	if okW && okL && winnerP.Misc != "" && loserP.Misc != "" {
		if _, err := c.ratings.ApplyPairwise(scope, winnerP.Misc, loserP.Misc); err != nil {
			scope.Log.WithError(err).WithField("match", match.ID).Error("failed to apply rating for approved match")
		}
		approved := fmt.Sprintf("✅ Your match result for match ID %d has been approved.", match.ID)
		gateway.DirectMessage(scope, c.chat, winnerP.Misc, approved+" You won!")
		gateway.DirectMessage(scope, c.chat, loserP.Misc, approved+" You lost.")
	} else {
		scope.Log.WithField("match", match.ID).Warn("approved match has unknown participants, rating skipped")
	}

	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).WithField("match", match.ID).Info("match result approved")
	c.loop.Trigger(state)
	return updated, nil
}

// Reject clears a reported result and asks both players to report again.
func (c *Coordinator) Reject(rootScope *envelope.Scope, matchID int64, roles []string) (models.RemoteMatch, error) {
	scope := rootScope.NewChildScope("tournament.Reject")
	defer scope.Finish()

	state, match, err := c.openMatch(scope, matchID, roles)
	if err != nil {
		return models.RemoteMatch{}, err
	}
	updated, err := c.bracket.UpdateMatch(scope.Ctx, state.ID(), match.ID, bracket.ClearResult())
	if err != nil {
		return models.RemoteMatch{}, err
	}

	for _, id := range []int64{match.Player1ID, match.Player2ID} {
		if p, ok := state.ParticipantByProviderID(id); ok {
			gateway.DirectMessage(scope, c.chat, p.Misc, fmt.Sprintf(msgResultRejectedDM, match.ID))
		}
	}
	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).WithField("match", match.ID).Info("match result rejected")
	return updated, nil
}

// Resolve sets the result of a disputed match. score1 belongs to player1.
func (c *Coordinator) Resolve(rootScope *envelope.Scope, matchID int64, score1, score2 int, roles []string) (models.RemoteMatch, error) {
	scope := rootScope.NewChildScope("tournament.Resolve")
	defer scope.Finish()

	if !c.IsOrganizer(roles) {
		return models.RemoteMatch{}, models.ErrNotOrganizer
	}
	if score1 < 0 || score2 < 0 || score1 == score2 {
		return models.RemoteMatch{}, models.ErrInvalidScore
	}
	state, err := c.registry.FindByMatch(matchID)
	if err != nil {
		return models.RemoteMatch{}, err
	}
	match, err := c.bracket.GetMatch(scope.Ctx, state.ID(), matchID)
	if err != nil {
		return models.RemoteMatch{}, err
	}
	if match.Player1ID == 0 || match.Player2ID == 0 || !(match.IsOpen() || match.IsTerminal()) {
		return models.RemoteMatch{}, models.ErrMatchNotReady
	}

	winner := match.Player2ID
	if score1 > score2 {
		winner = match.Player1ID
	}
	updated, err := c.bracket.UpdateMatch(scope.Ctx, state.ID(), matchID, bracket.ScoreUpdate(score1, score2, winner))
	if err != nil {
		return models.RemoteMatch{}, err
	}

	gateway.Send(scope, c.chat, state.ChannelID(), gateway.Text("⚖️ Match %d has been resolved as %d-%d in favour of %s.", matchID, score1, score2, displayName(state, winner)))
	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).WithField("match", matchID).Info("match resolved")
	c.loop.Trigger(state)
	return updated, nil
}

// Stop ends the periodic checks of the channel's tournament. It cannot be
// restarted; results can still be reported.
func (c *Coordinator) Stop(rootScope *envelope.Scope, channelID string, roles []string) (Snapshot, error) {
	scope := rootScope.NewChildScope("tournament.Stop")
	defer scope.Finish()

	if !c.IsOrganizer(roles) {
		return Snapshot{}, models.ErrNotOrganizer
	}
	state, err := c.registry.FindByChannel(channelID)
	if err != nil {
		return Snapshot{}, err
	}
	if !c.loop.Pause(state) && state.Phase() != PhasePaused {
		return Snapshot{}, models.ErrTournamentNotStarted
	}
	scope.Log.WithField(envelope.TournamentIDTag, state.ID()).Info("tournament checks stopped")
	return state.Snapshot(), nil
}

func (c *Coordinator) openMatch(scope *envelope.Scope, matchID int64, roles []string) (*State, models.RemoteMatch, error) {
	if !c.IsOrganizer(roles) {
		return nil, models.RemoteMatch{}, models.ErrNotOrganizer
	}
	state, err := c.registry.FindByMatch(matchID)
	if err != nil {
		return nil, models.RemoteMatch{}, err
	}
	match, err := c.bracket.GetMatch(scope.Ctx, state.ID(), matchID)
	if err != nil {
		return nil, models.RemoteMatch{}, err
	}
	if !match.IsOpen() {
		return nil, models.RemoteMatch{}, models.ErrMatchAlreadyProcessed
	}
	return state, match, nil
}

// bracketSlug builds a provider url from the tournament name. The provider
// only accepts letters, digits and underscores.
func bracketSlug(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	base := strings.ReplaceAll(slug.Make(name), "-", "_")
	if len(base) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength], "_")
	}
	if base == "" {
		return suffix
	}
	return base + "_" + suffix
}

// parseScores counts the sets won by each player in a "a-b,c-d" scores string.
func parseScores(csv string) (player1, player2 int, ok bool) {
	if strings.TrimSpace(csv) == "" {
		return 0, 0, false
	}
	for _, set := range strings.Split(csv, ",") {
		parts := strings.SplitN(strings.TrimSpace(set), "-", 2)
		if len(parts) != 2 {
			return 0, 0, false
		}
		a, errA := strconv.Atoi(parts[0])
		b, errB := strconv.Atoi(parts[1])
		if errA != nil || errB != nil {
			return 0, 0, false
		}
		switch {
		case a > b:
			player1++
		case b > a:
			player2++
		}
	}
	return player1, player2, true
}
