// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament_test

import (
	"context"
	"fmt"
	"strings"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
	"github.com/AccelByte/extend-core-ranked/pkg/store"
	"github.com/AccelByte/extend-core-ranked/pkg/testsetup"
	"github.com/AccelByte/extend-core-ranked/pkg/tournament"
)

const channel = "channel-1"

var organizer = []string{"tournament organizer"}

type fixture struct {
	bracket     *testsetup.StubBracketService
	chat        *testsetup.StubChatGateway
	polls       *testsetup.StubScheduler
	ratings     *store.Memory
	registry    *tournament.Registry
	loop        *tournament.SyncLoop
	coordinator *tournament.Coordinator
}

func newFixture(options tournament.Options) *fixture {
	if options.OrganizerRoles == nil {
		options.OrganizerRoles = []string{"TO", "Tournament Organizer", "Admin", "Moderator"}
	}
	f := &fixture{
		bracket: testsetup.NewStubBracketService(),
		chat:    testsetup.NewStubChatGateway(),
		polls:   testsetup.NewStubScheduler(),
		ratings: store.NewMemory(),
	}
	engine := rating.NewEngine(f.ratings, constants.RatingRuleField, testsetup.NewMetrics())
	f.registry = tournament.NewRegistry(testsetup.NewMetrics())
	f.loop = tournament.NewSyncLoop(f.registry, f.bracket, f.chat, engine, f.polls, testsetup.NewMetrics(), 0)
	f.coordinator = tournament.NewCoordinator(f.registry, f.loop, f.bracket, f.chat, engine, options)
	return f
}

// started creates, fills and starts a tournament in channel.
func (f *fixture) started(g testsetup.GomegaWithScope, tournamentType string, players ...string) tournament.Snapshot {
	snap := f.created(g, tournamentType, players...)
	snap, err := f.coordinator.Start(g.TestScope, channel, organizer)
	g.Expect(err).NotTo(HaveOccurred())
	return snap
}

func (f *fixture) created(g testsetup.GomegaWithScope, tournamentType string, players ...string) tournament.Snapshot {
	snap, err := f.coordinator.Create(g.TestScope, tournament.CreateParams{
		Name:      "Summer Cup",
		Type:      tournamentType,
		ChannelID: channel,
		Roles:     organizer,
	})
	g.Expect(err).NotTo(HaveOccurred())
	for _, p := range players {
		_, err := f.coordinator.Register(g.TestScope, channel, p, strings.ToUpper(p))
		g.Expect(err).NotTo(HaveOccurred())
	}
	return snap
}

func (f *fixture) poller(tournamentID int64) *testsetup.StubPoller {
	return f.polls.Poller(fmt.Sprintf("tournament-sync-%d", tournamentID))
}

func (f *fixture) participantID(tournamentID int64, player string) int64 {
	state, ok := f.registry.Get(tournamentID)
	if !ok {
		return 0
	}
	p, _ := state.ParticipantByPlayer(player)
	return p.ID
}

func (f *fixture) embedsTitled(title string) []gateway.Message {
	var out []gateway.Message
	for _, m := range f.chat.SentOfKind(gateway.KindChannel) {
		if m.Message.Embed != nil && m.Message.Embed.Title == title {
			out = append(out, m.Message)
		}
	}
	return out
}

func (f *fixture) channelTexts() []string {
	var out []string
	for _, m := range f.chat.SentOfKind(gateway.KindChannel) {
		if m.Message.Text != "" {
			out = append(out, m.Message.Text)
		}
	}
	return out
}

func (f *fixture) rating(player string) int {
	r, _, _ := f.ratings.Get(context.Background(), player)
	return r
}

func openBetween(id, tournamentID, p1, p2 int64) models.RemoteMatch {
	return models.RemoteMatch{ID: id, TournamentID: tournamentID, State: constants.RemoteStateOpen, Player1ID: p1, Player2ID: p2}
}
