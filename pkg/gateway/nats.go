// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	KindReply         = "reply"
	KindChannel       = "channel"
	KindDirectMessage = "dm"
)

// Publisher is the subset of *nats.Conn used to emit outbound messages.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Outbound is the envelope published for the chat bridge.
type Outbound struct {
	Kind          string    `json:"kind"`
	InteractionID string    `json:"interactionId,omitempty"`
	ChannelID     string    `json:"channelId,omitempty"`
	UserID        string    `json:"userId,omitempty"`
	Ephemeral     bool      `json:"ephemeral,omitempty"`
	Message       Message   `json:"message"`
	SentAt        time.Time `json:"sentAt"`
}

// NATSGateway publishes every outbound message to <prefix>.outbound.<kind>
// where a chat bridge process relays it to the chat platform.
type NATSGateway struct {
	publisher Publisher
	prefix    string
}

func NewNATSGateway(publisher Publisher, prefix string) *NATSGateway {
	return &NATSGateway{publisher: publisher, prefix: prefix}
}

// Subject returns the outbound subject for a message kind.
func (g *NATSGateway) Subject(kind string) string {
	return fmt.Sprintf("%s.outbound.%s", g.prefix, kind)
}

func (g *NATSGateway) Reply(ctx context.Context, interactionID string, msg Message, ephemeral bool) error {
	return g.publish(ctx, Outbound{Kind: KindReply, InteractionID: interactionID, Ephemeral: ephemeral, Message: msg})
}

func (g *NATSGateway) SendMessage(ctx context.Context, channelID string, msg Message) error {
	return g.publish(ctx, Outbound{Kind: KindChannel, ChannelID: channelID, Message: msg})
}

func (g *NATSGateway) SendDirectMessage(ctx context.Context, userID string, text string) error {
	return g.publish(ctx, Outbound{Kind: KindDirectMessage, UserID: userID, Message: Message{Text: text}})
}

func (g *NATSGateway) PresentButtons(ctx context.Context, channelID string, msg Message, buttons []Button) error {
	msg.Buttons = append(msg.Buttons, buttons...)
	return g.publish(ctx, Outbound{Kind: KindChannel, ChannelID: channelID, Message: msg})
}

func (g *NATSGateway) publish(ctx context.Context, out Outbound) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out.SentAt = time.Now().UTC()
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal outbound %s: %w", out.Kind, err)
	}
	if err = g.publisher.Publish(g.Subject(out.Kind), data); err != nil {
		return fmt.Errorf("publish outbound %s: %w", out.Kind, err)
	}
	return nil
}

// Connect opens a NATS connection that logs disconnects and reconnects.
func Connect(url string, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logrus.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logrus.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logrus.WithField("url", url).Info("Connected to NATS")
	return nc, nil
}
