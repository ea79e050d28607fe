// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament

import (
	"fmt"
	"strings"
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
	"github.com/AccelByte/extend-core-ranked/pkg/utils"
)

var medals = []string{"🥇", "🥈", "🥉"}

const (
	msgFinalizeFailed   = "⚠️ Failed to finalize the tournament. Please contact an administrator."
	msgStandingsFailed  = "❌ The tournament has concluded, but the final standings could not be retrieved."
	msgReportHowTo      = "Use /report with your opponent and the score once the match is played."
	msgResultRejectedDM = "Your reported match result for match ID %d has been rejected. Please report the correct result using the /report command."
)

func createdEmbed(remote models.Tournament, format models.Format, bracketURL string) *gateway.Embed {
	embed := &gateway.Embed{
		Title:     fmt.Sprintf("🏆 %s Tournament Created!", remote.Name),
		Color:     gateway.ColorGreen,
		Timestamp: time.Now().UTC(),
	}
	embed.AddField("Name", remote.Name, true).
		AddField("Type", format.RemoteType(), true).
		AddField("URL", bracketURL, false).
		AddField("Instructions", "Press Register below to join. An organizer starts the tournament once registration is done.", false)
	return embed
}

func startedEmbed(snap Snapshot) *gateway.Embed {
	embed := &gateway.Embed{
		Title:       "✅ Tournament Started!",
		Description: fmt.Sprintf("%s is underway with %d players. Matches are announced here as they open.", snap.Remote.Name, len(snap.Participants)),
		Color:       gateway.ColorGreen,
		Timestamp:   time.Now().UTC(),
	}
	embed.AddField("Bracket", snap.BracketURL, false)
	return embed
}

func roundRobinEmbed(state *State, open []models.RemoteMatch) *gateway.Embed {
	opponents := map[int64][]string{}
	var order []int64
	for _, m := range open {
		for _, pair := range [][2]int64{{m.Player1ID, m.Player2ID}, {m.Player2ID, m.Player1ID}} {
			if _, ok := opponents[pair[0]]; !ok {
				order = append(order, pair[0])
			}
			opponents[pair[0]] = append(opponents[pair[0]], displayName(state, pair[1]))
		}
	}

	embed := &gateway.Embed{
		Title:       "🏓 Round Robin Matches",
		Description: "Here are all the matches for the round robin tournament. Play everyone listed below once.",
		Color:       gateway.ColorBlue,
		Timestamp:   time.Now().UTC(),
	}
	for _, id := range order {
		embed.AddField(displayName(state, id), strings.Join(opponents[id], "\n"), true)
	}
	embed.AddField("How to Report", msgReportHowTo, false)
	return embed
}

func matchEmbed(m models.RemoteMatch, p1, p2 models.Participant) *gateway.Embed {
	embed := &gateway.Embed{
		Title:       "🏁 New Tournament Match",
		Description: "A new match is ready for play.",
		Color:       gateway.ColorBlue,
		Timestamp:   time.Now().UTC(),
	}
	embed.AddField("Match ID", fmt.Sprint(m.ID), true).
		AddField("Players", fmt.Sprintf("%s vs %s", gateway.Mention(p1.Misc), gateway.Mention(p2.Misc)), true).
		AddField("How to Report", msgReportHowTo, false)
	return embed
}

func nextMatchDM(m models.RemoteMatch, opponent models.Participant) string {
	return fmt.Sprintf("🏆 Your next tournament match (ID %d) is ready. Opponent: %s. %s", m.ID, opponent.Name, msgReportHowTo)
}

func reportedEmbed(m models.RemoteMatch, reporter, opponent models.Participant, scoresCsv string) *gateway.Embed {
	embed := &gateway.Embed{
		Title:       "📝 Match Result Reported",
		Description: fmt.Sprintf("%s reported a result against %s. An organizer needs to approve it.", gateway.Mention(reporter.Misc), gateway.Mention(opponent.Misc)),
		Color:       gateway.ColorYellow,
		Timestamp:   time.Now().UTC(),
	}
	embed.AddField("Match ID", fmt.Sprint(m.ID), true).
		AddField("Score", scoresCsv, true)
	return embed
}

func approvalButtons(matchID int64) []gateway.Button {
	return []gateway.Button{
		{ID: fmt.Sprintf("%s%d", constants.ButtonApproveResult, matchID), Label: "Approve", Style: gateway.ButtonSuccess},
		{ID: fmt.Sprintf("%s%d", constants.ButtonRejectResult, matchID), Label: "Reject", Style: gateway.ButtonDanger},
	}
}

func concludedEmbed(remote models.Tournament, format models.Format, standings []models.Participant, changes []rating.Change, ratingErr error) *gateway.Embed {
	tournamentType := remote.TournamentType
	if tournamentType == "" {
		tournamentType = format.RemoteType()
	}
	embed := &gateway.Embed{
		Title:       "🏆 Tournament Concluded!",
		Description: fmt.Sprintf("The %s tournament has ended. Here are the final results:", tournamentType),
		Color:       gateway.ColorGold,
		Timestamp:   time.Now().UTC(),
	}
	for i, p := range standings {
		if i >= constants.PodiumSize {
			break
		}
		embed.AddField(fmt.Sprintf("%s %s Place", medals[i], utils.Ordinal(i+1)), gateway.Mention(p.Misc), false)
	}

	if ratingErr != nil {
		embed.AddField("Ratings", "Rating changes could not be applied. Please contact an administrator.", false)
		return embed
	}
	names := map[string]string{}
	for _, p := range standings {
		names[p.Misc] = p.Name
	}
	for _, c := range changes {
		name := names[c.PlayerID]
		if name == "" {
			name = c.PlayerID
		}
		embed.AddField(name+" ELO", fmt.Sprintf("%d → %d (%+d)", c.Before, c.After, c.Delta()), true)
	}
	return embed
}

func displayName(state *State, participantID int64) string {
	p, ok := state.ParticipantByProviderID(participantID)
	if !ok {
		return fmt.Sprintf("participant %d", participantID)
	}
	if p.Misc == "" {
		return p.Name
	}
	return gateway.Mention(p.Misc)
}
