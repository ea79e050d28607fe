// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package gateway defines the chat transport contract used to reply to
// commands, post to tournament channels and direct message players.
package gateway

import (
	"context"
	"fmt"
	"time"
)

/*
ChatGateway delivers messages to the chat platform. Every call is fire and forget
from the caller's point of view: a returned error is logged by the caller and the
operation that produced the message is not rolled back or retried.
*/
type ChatGateway interface {
	// Reply answers the command identified by interactionID. Ephemeral replies are
	// only visible to the invoking user.
	Reply(ctx context.Context, interactionID string, msg Message, ephemeral bool) error

	// SendMessage posts msg to a channel.
	SendMessage(ctx context.Context, channelID string, msg Message) error

	// SendDirectMessage sends a private text message to a user.
	SendDirectMessage(ctx context.Context, userID string, text string) error

	// PresentButtons posts msg to a channel with a row of clickable buttons.
	PresentButtons(ctx context.Context, channelID string, msg Message, buttons []Button) error
}

const (
	ColorGreen  = 0x2ECC71
	ColorBlue   = 0x3498DB
	ColorYellow = 0xF1C40F
	ColorRed    = 0xE74C3C
	ColorGold   = 0xFFD700
)

type ButtonStyle string

const (
	ButtonPrimary   ButtonStyle = "primary"
	ButtonSecondary ButtonStyle = "secondary"
	ButtonSuccess   ButtonStyle = "success"
	ButtonDanger    ButtonStyle = "danger"
)

type Button struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Style ButtonStyle `json:"style"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitempty"`
}

// AddField appends a field and returns the embed for chaining.
func (e *Embed) AddField(name, value string, inline bool) *Embed {
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: inline})
	return e
}

type Message struct {
	Text    string   `json:"text,omitempty"`
	Embed   *Embed   `json:"embed,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
}

// Text builds a plain text message.
func Text(format string, args ...interface{}) Message {
	if len(args) == 0 {
		return Message{Text: format}
	}
	return Message{Text: fmt.Sprintf(format, args...)}
}

// WithEmbed builds an embed only message.
func WithEmbed(embed *Embed) Message {
	return Message{Embed: embed}
}

// Mention renders a user reference the chat client resolves to a name.
func Mention(userID string) string {
	return "<@" + userID + ">"
}
