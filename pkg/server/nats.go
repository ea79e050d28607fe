// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// Subscriber is the subset of *nats.Conn used to consume commands.
type Subscriber interface {
	QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type CommandHandler interface {
	Handle(scope *envelope.Scope, cmd Command) error
}

// Ack is answered to request style command messages.
type Ack struct {
	OK           bool   `json:"ok"`
	ErrorCode    int    `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// NATSListener consumes commands published by the chat bridge on
// <prefix>.commands and hands them to the dispatcher, at most maxInFlight
// at a time.
type NATSListener struct {
	subscriber Subscriber
	handler    CommandHandler
	subject    string
	queue      string

	sem  chan struct{}
	wg   sync.WaitGroup
	sub  *nats.Subscription
	mu   sync.Mutex
	done bool
}

func NewNATSListener(subscriber Subscriber, handler CommandHandler, prefix, queue string, maxInFlight int) *NATSListener {
	if maxInFlight <= 0 {
		maxInFlight = constants.MaxCommandsInFlight
	}
	return &NATSListener{
		subscriber: subscriber,
		handler:    handler,
		subject:    CommandSubject(prefix),
		queue:      queue,
		sem:        make(chan struct{}, maxInFlight),
	}
}

func CommandSubject(prefix string) string {
	return fmt.Sprintf("%s.commands", prefix)
}

func (l *NATSListener) Start() error {
	sub, err := l.subscriber.QueueSubscribe(l.subject, l.queue, l.HandleMessage)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", l.subject, err)
	}
	l.mu.Lock()
	l.sub = sub
	l.mu.Unlock()

	logrus.WithField("subject", l.subject).WithField("queue", l.queue).Info("listening for commands")
	return nil
}

// HandleMessage decodes one command and runs it on its own goroutine once a
// slot is free. Messages arriving after Stop are dropped.
func (l *NATSListener) HandleMessage(msg *nats.Msg) {
	var cmd Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		logrus.WithError(err).WithField("subject", msg.Subject).Warn("dropping malformed command")
		l.respond(msg, err)
		return
	}

	l.mu.Lock()
	if l.done {
		l.mu.Unlock()
		logrus.WithField("command", cmd.Name).Warn("dropping command received during shutdown")
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	l.sem <- struct{}{}
	go func() {
		defer func() {
			<-l.sem
			l.wg.Done()
		}()

		scope := envelope.NewRootScope(context.Background(), "server.HandleMessage", cmd.TraceID)
		defer scope.Finish()

		err := l.handler.Handle(scope, cmd)
		l.respond(msg, err)
	}()
}

func (l *NATSListener) respond(msg *nats.Msg, err error) {
	if msg.Reply == "" || msg.Sub == nil {
		return
	}
	ack := Ack{OK: err == nil}
	if err != nil {
		ack.ErrorCode = models.ErrorCode(err)
		ack.ErrorMessage = err.Error()
	}
	data, _ := json.Marshal(ack)
	if respondErr := msg.Respond(data); respondErr != nil {
		logrus.WithError(respondErr).Warn("failed to acknowledge command")
	}
}

// Stop drains the subscription and waits for running commands.
func (l *NATSListener) Stop() {
	l.mu.Lock()
	sub := l.sub
	l.mu.Unlock()

	if sub != nil {
		if err := sub.Drain(); err != nil {
			logrus.WithError(err).Warn("failed to drain command subscription")
		}
	}

	l.mu.Lock()
	l.done = true
	l.mu.Unlock()
	l.wg.Wait()
}

// Wait blocks until every accepted command has finished.
func (l *NATSListener) Wait() {
	l.wg.Wait()
}
