// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gateway

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogGateway writes outbound messages to the log. Used when no chat bridge is configured.
type LogGateway struct {
	log *logrus.Entry
}

func NewLogGateway(log *logrus.Entry) *LogGateway {
	return &LogGateway{log: log.WithField("gateway", "log")}
}

func (g *LogGateway) Reply(_ context.Context, interactionID string, msg Message, ephemeral bool) error {
	g.log.WithFields(logrus.Fields{"interactionID": interactionID, "ephemeral": ephemeral, "message": msg}).Info("reply")
	return nil
}

func (g *LogGateway) SendMessage(_ context.Context, channelID string, msg Message) error {
	g.log.WithFields(logrus.Fields{"channelID": channelID, "message": msg}).Info("channel message")
	return nil
}

func (g *LogGateway) SendDirectMessage(_ context.Context, userID string, text string) error {
	g.log.WithFields(logrus.Fields{"userID": userID, "text": text}).Info("direct message")
	return nil
}

func (g *LogGateway) PresentButtons(_ context.Context, channelID string, msg Message, buttons []Button) error {
	g.log.WithFields(logrus.Fields{"channelID": channelID, "message": msg, "buttons": buttons}).Info("buttons")
	return nil
}
