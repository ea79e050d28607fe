// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package gateway

import (
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
)

// Reply sends a reply and logs a failure instead of returning it.
func Reply(scope *envelope.Scope, chat ChatGateway, interactionID string, msg Message, ephemeral bool) {
	if interactionID == "" {
		return
	}
	if err := chat.Reply(scope.Ctx, interactionID, msg, ephemeral); err != nil {
		scope.Log.WithError(err).WithField("interactionID", interactionID).Warn("failed to send reply")
	}
}

// Send posts to a channel and logs a failure instead of returning it.
func Send(scope *envelope.Scope, chat ChatGateway, channelID string, msg Message) {
	if channelID == "" {
		return
	}
	if err := chat.SendMessage(scope.Ctx, channelID, msg); err != nil {
		scope.Log.WithError(err).WithField("channelID", channelID).Warn("failed to send channel message")
	}
}

// DirectMessage sends a DM and logs a failure instead of returning it.
func DirectMessage(scope *envelope.Scope, chat ChatGateway, userID string, text string) {
	if userID == "" {
		return
	}
	if err := chat.SendDirectMessage(scope.Ctx, userID, text); err != nil {
		scope.Log.WithError(err).WithField("userID", userID).Warn("failed to send direct message")
	}
}

// Buttons posts a message with buttons and logs a failure instead of returning it.
func Buttons(scope *envelope.Scope, chat ChatGateway, channelID string, msg Message, buttons []Button) {
	if channelID == "" {
		return
	}
	if err := chat.PresentButtons(scope.Ctx, channelID, msg, buttons); err != nil {
		scope.Log.WithError(err).WithField("channelID", channelID).Warn("failed to present buttons")
	}
}
