// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
)

// SentMessage is one recorded outbound call.
type SentMessage struct {
	Kind          string
	InteractionID string
	ChannelID     string
	UserID        string
	Ephemeral     bool
	Message       gateway.Message
}

// StubChatGateway records every outbound message.
type StubChatGateway struct {
	mu   sync.Mutex
	sent []SentMessage
	Err  error
}

func NewStubChatGateway() *StubChatGateway {
	return &StubChatGateway{}
}

func (s *StubChatGateway) Reply(_ context.Context, interactionID string, msg gateway.Message, ephemeral bool) error {
	return s.record(SentMessage{Kind: gateway.KindReply, InteractionID: interactionID, Ephemeral: ephemeral, Message: msg})
}

func (s *StubChatGateway) SendMessage(_ context.Context, channelID string, msg gateway.Message) error {
	return s.record(SentMessage{Kind: gateway.KindChannel, ChannelID: channelID, Message: msg})
}

func (s *StubChatGateway) SendDirectMessage(_ context.Context, userID string, text string) error {
	return s.record(SentMessage{Kind: gateway.KindDirectMessage, UserID: userID, Message: gateway.Message{Text: text}})
}

func (s *StubChatGateway) PresentButtons(_ context.Context, channelID string, msg gateway.Message, buttons []gateway.Button) error {
	msg.Buttons = append(msg.Buttons, buttons...)
	return s.record(SentMessage{Kind: gateway.KindChannel, ChannelID: channelID, Message: msg})
}

func (s *StubChatGateway) record(m SentMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return s.Err
}

// Sent returns a copy of everything recorded so far.
func (s *StubChatGateway) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// SentOfKind filters recorded messages by kind.
func (s *StubChatGateway) SentOfKind(kind string) []SentMessage {
	var out []SentMessage
	for _, m := range s.Sent() {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// DirectMessagesTo returns the texts sent privately to userID.
func (s *StubChatGateway) DirectMessagesTo(userID string) []string {
	var out []string
	for _, m := range s.SentOfKind(gateway.KindDirectMessage) {
		if m.UserID == userID {
			out = append(out, m.Message.Text)
		}
	}
	return out
}

func (s *StubChatGateway) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
