// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/ranked"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
	"github.com/AccelByte/extend-core-ranked/pkg/tournament"
	"github.com/AccelByte/extend-core-ranked/pkg/utils"
)

const msgInternalError = "An error occurred while processing your command."

type MatchService interface {
	Seek(scope *envelope.Scope, player string) (ranked.ScoreState, error)
	Accept(scope *envelope.Scope, matchID, acceptor string) (ranked.ScoreState, error)
	RecordWin(scope *envelope.Scope, player string) (ranked.ScoreState, error)
	UndoWin(scope *envelope.Scope, player string) (ranked.ScoreState, error)
	SetScore(scope *envelope.Scope, player string, ownWins, oppWins int) (ranked.ScoreState, error)
	AdjustScore(scope *envelope.Scope, matchID string, requesterWins, opponentWins int) (ranked.ScoreState, error)
	Confirm(scope *envelope.Scope, matchID string) (ranked.ConfirmResult, error)
	Lookup(player string) (pending *ranked.ScoreState, active *ranked.ScoreState)
}

type RatingService interface {
	Rating(scope *envelope.Scope, playerID string) (int, error)
	SetRating(scope *envelope.Scope, playerID string, rating int) (int, error)
	Leaderboard(scope *envelope.Scope, n int) ([]models.PlayerRating, error)
}

type TournamentService interface {
	Create(scope *envelope.Scope, params tournament.CreateParams) (tournament.Snapshot, error)
	Register(scope *envelope.Scope, channelID, playerID, name string) (models.Participant, error)
	Start(scope *envelope.Scope, channelID string, roles []string) (tournament.Snapshot, error)
	Randomize(scope *envelope.Scope, channelID string, roles []string) error
	Report(scope *envelope.Scope, channelID, reporter, opponent string, ownWins, oppWins int) (models.RemoteMatch, error)
	Approve(scope *envelope.Scope, matchID int64, roles []string) (models.RemoteMatch, error)
	Reject(scope *envelope.Scope, matchID int64, roles []string) (models.RemoteMatch, error)
	Resolve(scope *envelope.Scope, matchID int64, score1, score2 int, roles []string) (models.RemoteMatch, error)
	Stop(scope *envelope.Scope, channelID string, roles []string) (tournament.Snapshot, error)
	Tournaments() []tournament.Snapshot
}

type Options struct {
	OrganizerRoles  []string
	LeaderboardSize int
	Cooldown        time.Duration
	// CoinFlip returns true for heads. Defaults to a fair coin.
	CoinFlip func() bool
}

type reply struct {
	msg       gateway.Message
	ephemeral bool
}

type handlerFunc func(scope *envelope.Scope, cmd Command) (*reply, error)

// Dispatcher routes commands to the ranked registry, the rating engine and
// the tournament coordinator, and answers the invoking user.
type Dispatcher struct {
	matches     MatchService
	ratings     RatingService
	tournaments TournamentService
	chat        gateway.ChatGateway
	options     Options
	cooldown    *cooldown
	handlers    map[string]handlerFunc
}

func NewDispatcher(
	matches MatchService,
	ratings RatingService,
	tournaments TournamentService,
	chat gateway.ChatGateway,
	options Options,
) *Dispatcher {
	if options.LeaderboardSize <= 0 {
		options.LeaderboardSize = constants.DefaultLeaderboardSize
	}
	if options.CoinFlip == nil {
		options.CoinFlip = func() bool { return rand.Intn(2) == 0 }
	}
	d := &Dispatcher{
		matches:     matches,
		ratings:     ratings,
		tournaments: tournaments,
		chat:        chat,
		options:     options,
		cooldown:    newCooldown(options.Cooldown),
	}
	d.handlers = map[string]handlerFunc{
		CmdSeek:        d.seek,
		CmdAccept:      d.accept,
		CmdWin:         d.win,
		CmdUndo:        d.undo,
		CmdSetScore:    d.setScore,
		CmdAdjust:      d.adjust,
		CmdConfirm:     d.confirm,
		CmdElo:         d.elo,
		CmdLeaderboard: d.leaderboard,
		CmdSetElo:      d.setElo,
		CmdCoinFlip:    d.coinFlip,
		CmdRules:       d.rules,

		CmdTournamentCreate:    d.createTournament,
		CmdTournamentStart:     d.startTournament,
		CmdTournamentRandomize: d.randomize,
		CmdTournamentStop:      d.stopTournament,
		CmdRegister:            d.register,
		CmdReport:              d.report,
		CmdApprove:             d.approve,
		CmdReject:              d.reject,
		CmdResolve:             d.resolve,
	}
	return d
}

// Handle runs cmd and replies to it. The returned error has already been
// reported to the user.
func (d *Dispatcher) Handle(rootScope *envelope.Scope, cmd Command) error {
	scope := rootScope.NewChildScope("server.Handle")
	defer scope.Finish()

	if cmd.IsButton() {
		resolved, err := resolveButton(cmd)
		if err != nil {
			d.replyError(scope, cmd, err)
			return err
		}
		cmd = resolved
	}
	scope.SetAttributes(envelope.CommandTag, cmd.Name)
	scope = scope.WithField(envelope.CommandTag, cmd.Name).WithField(envelope.PlayerIDTag, cmd.UserID)

	handler, ok := d.handlers[cmd.Name]
	if !ok {
		d.replyError(scope, cmd, models.ErrUnknownCommand)
		return models.ErrUnknownCommand
	}
	if !cmd.IsButton() && !d.cooldown.Allow(cmd.UserID, cmd.Name) {
		d.replyError(scope, cmd, models.ErrOnCooldown)
		return models.ErrOnCooldown
	}

	resp, err := handler(scope, cmd)
	if err != nil {
		d.replyError(scope, cmd, err)
		return err
	}
	if resp != nil {
		gateway.Reply(scope, d.chat, cmd.InteractionID, resp.msg, resp.ephemeral)
	}
	scope.Log.Debug("command handled")
	return nil
}

func (d *Dispatcher) replyError(scope *envelope.Scope, cmd Command, err error) {
	var text string
	switch models.ErrorKindOf(err) {
	case models.KindUserInput, models.KindStateConflict:
		scope.Log.WithError(err).Info("command rejected")
		text = "⚠️ " + capitalize(err.Error()) + "."
	default:
		scope.Log.WithError(err).Error("command failed")
		text = msgInternalError
	}
	gateway.Reply(scope, d.chat, cmd.InteractionID, gateway.Message{Text: text}, true)
}

func (d *Dispatcher) isOrganizer(cmd Command) bool {
	return utils.ContainsFold(d.options.OrganizerRoles, cmd.Roles...)
}

func public(msg gateway.Message) *reply {
	return &reply{msg: msg}
}

func private(msg gateway.Message) *reply {
	return &reply{msg: msg, ephemeral: true}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func scoreLine(s ranked.ScoreState) string {
	return fmt.Sprintf("%d - %d", s.RequesterWins, s.OpponentWins)
}

// Ranked challenges.

func (d *Dispatcher) seek(scope *envelope.Scope, cmd Command) (*reply, error) {
	state, err := d.matches.Seek(scope, cmd.UserID)
	if err != nil {
		return nil, err
	}

	name := cmd.UserName
	if name == "" {
		name = gateway.Mention(cmd.UserID)
	}
	embed := &gateway.Embed{
		Title:       "Ranked Match Request",
		Description: name + " is seeking a match! Click to accept.",
		Color:       gateway.ColorBlue,
		Timestamp:   state.CreatedAt,
	}
	if r, err := d.ratings.Rating(scope, cmd.UserID); err != nil {
		scope.Log.WithError(err).Warn("failed to read rating for match request")
	} else {
		embed.AddField("ELO", fmt.Sprint(r), true)
	}
	embed.AddField("Match ID", state.MatchID, false)

	msg := gateway.WithEmbed(embed)
	msg.Buttons = []gateway.Button{{ID: constants.ButtonAcceptRanked + state.MatchID, Label: "Accept Match", Style: gateway.ButtonPrimary}}
	return public(msg), nil
}

func (d *Dispatcher) accept(scope *envelope.Scope, cmd Command) (*reply, error) {
	matchID, ok := cmd.String(OptMatchID)
	if !ok {
		return nil, models.ErrMissingOption
	}
	state, err := d.matches.Accept(scope, matchID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	return public(gateway.Text(
		"Ranked match between %s and %s has been accepted! Use /win to report game wins, check /rules or ask staff if you need help!",
		gateway.Mention(state.Requester), gateway.Mention(state.Opponent),
	)), nil
}

func (d *Dispatcher) win(scope *envelope.Scope, cmd Command) (*reply, error) {
	state, err := d.matches.RecordWin(scope, cmd.UserID)
	if err != nil {
		return nil, err
	}
	d.announceCompletion(scope, cmd.ChannelID, state)
	return public(gateway.Text("Score updated: %s", scoreLine(state))), nil
}

func (d *Dispatcher) undo(scope *envelope.Scope, cmd Command) (*reply, error) {
	state, err := d.matches.UndoWin(scope, cmd.UserID)
	if err != nil {
		return nil, err
	}
	return public(gateway.Text("Win undone. Current score: %s", scoreLine(state))), nil
}

func (d *Dispatcher) setScore(scope *envelope.Scope, cmd Command) (*reply, error) {
	own, ok1 := cmd.Int(OptYourWins)
	opp, ok2 := cmd.Int(OptOpponentWins)
	if !ok1 || !ok2 {
		return nil, models.ErrMissingOption
	}
	state, err := d.matches.SetScore(scope, cmd.UserID, own, opp)
	if err != nil {
		return nil, err
	}
	d.announceCompletion(scope, cmd.ChannelID, state)
	return public(gateway.Text("Score set: %s", scoreLine(state))), nil
}

func (d *Dispatcher) adjust(scope *envelope.Scope, cmd Command) (*reply, error) {
	matchID, ok := cmd.String(OptMatchID)
	requesterWins, ok1 := cmd.Int(OptRequesterWin)
	opponentWins, ok2 := cmd.Int(OptOpponentWins)
	if !ok || !ok1 || !ok2 {
		return nil, models.ErrMissingOption
	}
	state, err := d.matches.AdjustScore(scope, matchID, requesterWins, opponentWins)
	if err != nil {
		return nil, err
	}
	d.announceCompletion(scope, cmd.ChannelID, state)
	return public(gateway.Text("Match score updated: %s", scoreLine(state))), nil
}

// announceCompletion posts the confirm/adjust prompt once a match is decided.
func (d *Dispatcher) announceCompletion(scope *envelope.Scope, channelID string, state ranked.ScoreState) {
	if !state.IsCompleted() {
		return
	}
	embed := &gateway.Embed{
		Title:       "Match Completed",
		Description: "Final score: " + scoreLine(state),
		Color:       gateway.ColorGreen,
		Timestamp:   time.Now().UTC(),
	}
	embed.AddField("Winner", gateway.Mention(state.Winner), true).
		AddField("Loser", gateway.Mention(state.Loser), true)
	gateway.Buttons(scope, d.chat, channelID, gateway.WithEmbed(embed), []gateway.Button{
		{ID: constants.ButtonConfirmMatch + state.MatchID, Label: "Confirm", Style: gateway.ButtonSuccess},
		{ID: constants.ButtonAdjustMatch + state.MatchID, Label: "Adjust Score", Style: gateway.ButtonSecondary},
	})
}

func (d *Dispatcher) confirm(scope *envelope.Scope, cmd Command) (*reply, error) {
	matchID, ok := cmd.String(OptMatchID)
	if !ok {
		return nil, models.ErrMissingOption
	}
	result, err := d.matches.Confirm(scope, matchID)
	if err != nil {
		return nil, err
	}
	return public(gateway.Text("Match confirmed. %s's new ELO: %d, %s's new ELO: %d",
		gateway.Mention(result.Match.Winner), result.Rating.WinnerAfter,
		gateway.Mention(result.Match.Loser), result.Rating.LoserAfter,
	)), nil
}

// Ratings.

func (d *Dispatcher) elo(scope *envelope.Scope, cmd Command) (*reply, error) {
	player, ok := cmd.String(OptPlayer)
	if !ok {
		player = cmd.UserID
	}
	r, err := d.ratings.Rating(scope, player)
	if err != nil {
		return nil, err
	}

	embed := &gateway.Embed{Title: "Player Rating", Color: gateway.ColorBlue}
	embed.AddField("Player", gateway.Mention(player), true).AddField("ELO", fmt.Sprint(r), true)
	pending, active := d.matches.Lookup(player)
	if active != nil {
		opponent := active.Opponent
		if opponent == player {
			opponent = active.Requester
		}
		embed.AddField("Active match", fmt.Sprintf("%s vs %s", scoreLine(*active), gateway.Mention(opponent)), false)
	}
	if pending != nil {
		embed.AddField("Pending request", pending.MatchID, false)
	}
	return private(gateway.WithEmbed(embed)), nil
}

func (d *Dispatcher) leaderboard(scope *envelope.Scope, cmd Command) (*reply, error) {
	n, ok := cmd.Int(OptLimit)
	if !ok || n <= 0 {
		n = d.options.LeaderboardSize
	}
	top, err := d.ratings.Leaderboard(scope, n)
	if err != nil {
		return nil, err
	}
	embed := &gateway.Embed{
		Title: fmt.Sprintf("Top %d Players by ELO", n),
		Color: gateway.ColorYellow,
	}
	if len(top) == 0 {
		embed.Description = "No rated players yet."
	}
	for i, p := range top {
		embed.AddField(fmt.Sprintf("%d.", i+1), fmt.Sprintf("%s ELO: %d", gateway.Mention(p.PlayerID), p.Rating), false)
	}
	return public(gateway.WithEmbed(embed)), nil
}

func (d *Dispatcher) setElo(scope *envelope.Scope, cmd Command) (*reply, error) {
	if !d.isOrganizer(cmd) {
		return nil, models.ErrNotOrganizer
	}
	player, ok1 := cmd.String(OptPlayer)
	value, ok2 := cmd.Int(OptElo)
	if !ok1 || !ok2 {
		return nil, models.ErrMissingOption
	}
	before, err := d.ratings.SetRating(scope, player, value)
	if err != nil {
		return nil, err
	}
	return public(gateway.Text("Updated ELO for %s: %d → %d", gateway.Mention(player), before, value)), nil
}

// Miscellaneous.

func (d *Dispatcher) coinFlip(_ *envelope.Scope, cmd Command) (*reply, error) {
	choice, _ := cmd.String(OptChoice)
	choice = strings.ToLower(choice)
	if choice != "heads" && choice != "tails" {
		return nil, models.ErrInvalidChoice
	}
	result := "tails"
	if d.options.CoinFlip() {
		result = "heads"
	}
	won := choice == result

	embed := &gateway.Embed{
		Title:       "Coin Flip Result",
		Description: "The coin landed on: " + result,
		Color:       gateway.ColorRed,
	}
	outcome := "You lost!"
	if won {
		embed.Color = gateway.ColorGreen
		outcome = "You won!"
	}
	embed.AddField("Your guess", choice, true).AddField("Result", outcome, true)
	return public(gateway.WithEmbed(embed)), nil
}

func (d *Dispatcher) rules(_ *envelope.Scope, _ Command) (*reply, error) {
	return public(gateway.WithEmbed(rulesEmbed())), nil
}

// Tournaments.

func (d *Dispatcher) createTournament(scope *envelope.Scope, cmd Command) (*reply, error) {
	name, ok := cmd.String(OptName)
	tournamentType, ok2 := cmd.String(OptType)
	if !ok || !ok2 {
		return nil, models.ErrMissingOption
	}
	snap, err := d.tournaments.Create(scope, tournament.CreateParams{
		Name:      name,
		Type:      tournamentType,
		ChannelID: cmd.ChannelID,
		Roles:     cmd.Roles,
	})
	if err != nil {
		return nil, err
	}
	return private(gateway.Text("✅ Tournament %s created: %s", snap.Remote.Name, snap.BracketURL)), nil
}

func (d *Dispatcher) startTournament(scope *envelope.Scope, cmd Command) (*reply, error) {
	snap, err := d.tournaments.Start(scope, cmd.ChannelID, cmd.Roles)
	if err != nil {
		return nil, err
	}
	return private(gateway.Text("✅ Tournament %s started with %d players.", snap.Remote.Name, len(snap.Participants))), nil
}

func (d *Dispatcher) randomize(scope *envelope.Scope, cmd Command) (*reply, error) {
	if err := d.tournaments.Randomize(scope, cmd.ChannelID, cmd.Roles); err != nil {
		return nil, err
	}
	return public(gateway.Text("✅ Seeding has been randomized successfully!")), nil
}

func (d *Dispatcher) stopTournament(scope *envelope.Scope, cmd Command) (*reply, error) {
	if _, err := d.tournaments.Stop(scope, cmd.ChannelID, cmd.Roles); err != nil {
		return nil, err
	}
	return public(gateway.Text("🛑 Periodic checks for the tournament have been stopped.")), nil
}

func (d *Dispatcher) register(scope *envelope.Scope, cmd Command) (*reply, error) {
	name := cmd.UserName
	if name == "" {
		name = cmd.UserID
	}
	if _, err := d.tournaments.Register(scope, cmd.ChannelID, cmd.UserID, name); err != nil {
		return nil, err
	}
	return private(gateway.Text("✅ You have been registered for the tournament!")), nil
}

func (d *Dispatcher) report(scope *envelope.Scope, cmd Command) (*reply, error) {
	opponent, ok := cmd.String(OptOpponent)
	own, ok1 := cmd.Int(OptYourWins)
	opp, ok2 := cmd.Int(OptOpponentWins)
	if !ok || !ok1 || !ok2 {
		return nil, models.ErrMissingOption
	}
	match, err := d.tournaments.Report(scope, cmd.ChannelID, cmd.UserID, opponent, own, opp)
	if err != nil {
		return nil, err
	}
	if match.WinnerID == 0 {
		return private(gateway.Text("📝 Your result for match %d has been submitted for approval.", match.ID)), nil
	}
	return public(gateway.Text("✅ Result recorded for match %d: %s", match.ID, match.ScoresCsv)), nil
}

func (d *Dispatcher) approve(scope *envelope.Scope, cmd Command) (*reply, error) {
	matchID, ok := cmd.Int64(OptMatchID)
	if !ok {
		return nil, models.ErrMissingOption
	}
	if _, err := d.tournaments.Approve(scope, matchID, cmd.Roles); err != nil {
		return nil, err
	}
	return public(gateway.Text("✅ Result for match %d approved.", matchID)), nil
}

func (d *Dispatcher) reject(scope *envelope.Scope, cmd Command) (*reply, error) {
	matchID, ok := cmd.Int64(OptMatchID)
	if !ok {
		return nil, models.ErrMissingOption
	}
	if _, err := d.tournaments.Reject(scope, matchID, cmd.Roles); err != nil {
		return nil, err
	}
	return public(gateway.Text("❌ Result for match %d rejected. Both players have been asked to report again.", matchID)), nil
}

func (d *Dispatcher) resolve(scope *envelope.Scope, cmd Command) (*reply, error) {
	matchID, ok := cmd.Int64(OptMatchID)
	score1, ok1 := cmd.Int(OptScore1)
	score2, ok2 := cmd.Int(OptScore2)
	if !ok || !ok1 || !ok2 {
		return nil, models.ErrMissingOption
	}
	if _, err := d.tournaments.Resolve(scope, matchID, score1, score2, cmd.Roles); err != nil {
		return nil, err
	}
	return public(gateway.Text("✅ Match %d resolved as %d-%d.", matchID, score1, score2)), nil
}

var _ RatingService = (*rating.Engine)(nil)
