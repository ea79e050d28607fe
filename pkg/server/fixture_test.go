// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server_test

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/ranked"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
	"github.com/AccelByte/extend-core-ranked/pkg/server"
	"github.com/AccelByte/extend-core-ranked/pkg/store"
	"github.com/AccelByte/extend-core-ranked/pkg/testsetup"
	"github.com/AccelByte/extend-core-ranked/pkg/tournament"
)

const channel = "channel-1"

var organizer = []string{"Admin"}

type fixture struct {
	chat       *testsetup.StubChatGateway
	bracket    *testsetup.StubBracketService
	timers     *testsetup.StubScheduler
	ratings    *store.Memory
	dispatcher *server.Dispatcher
	next       int
}

func newFixture(cooldown time.Duration) *fixture {
	f := &fixture{
		chat:    testsetup.NewStubChatGateway(),
		bracket: testsetup.NewStubBracketService(),
		timers:  testsetup.NewStubScheduler(),
		ratings: store.NewMemory(),
	}
	roles := []string{"TO", "Admin"}
	engine := rating.NewEngine(f.ratings, constants.RatingRuleField, testsetup.NewMetrics())
	matches := ranked.NewRegistry(f.timers, engine, f.chat, testsetup.NewMetrics(), 0)

	registry := tournament.NewRegistry(testsetup.NewMetrics())
	loop := tournament.NewSyncLoop(registry, f.bracket, f.chat, engine, f.timers, testsetup.NewMetrics(), 0)
	coordinator := tournament.NewCoordinator(registry, loop, f.bracket, f.chat, engine, tournament.Options{OrganizerRoles: roles})

	f.dispatcher = server.NewDispatcher(matches, engine, coordinator, f.chat, server.Options{
		OrganizerRoles: roles,
		Cooldown:       cooldown,
		CoinFlip:       func() bool { return true },
	})
	return f
}

// command builds a slash command with a fresh interaction id.
func (f *fixture) command(name, user string, options map[string]interface{}) server.Command {
	f.next++
	return server.Command{
		Name:          name,
		InteractionID: fmt.Sprintf("interaction-%d", f.next),
		UserID:        user,
		UserName:      user,
		ChannelID:     channel,
		Options:       options,
	}
}

func (f *fixture) button(id, user string, roles ...string) server.Command {
	cmd := f.command("", user, nil)
	cmd.ButtonID = id
	cmd.Roles = roles
	return cmd
}

// replyTo returns the reply sent for cmd.
func (f *fixture) replyTo(cmd server.Command) (testsetup.SentMessage, bool) {
	for _, m := range f.chat.SentOfKind(gateway.KindReply) {
		if m.InteractionID == cmd.InteractionID {
			return m, true
		}
	}
	return testsetup.SentMessage{}, false
}

func (f *fixture) channelEmbed(title string) *gateway.Message {
	for _, m := range f.chat.SentOfKind(gateway.KindChannel) {
		if m.Message.Embed != nil && m.Message.Embed.Title == title {
			msg := m.Message
			return &msg
		}
	}
	return nil
}

func fieldValue(embed *gateway.Embed, name string) string {
	for _, field := range embed.Fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}
