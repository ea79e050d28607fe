// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server_test

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/server"
	"github.com/AccelByte/extend-core-ranked/pkg/testsetup"
)

type fakeSubscriber struct {
	subject string
	queue   string
	handler nats.MsgHandler
	err     error
}

func (f *fakeSubscriber) QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subject, f.queue, f.handler = subject, queue, cb
	return nil, nil
}

// blockingHandler records commands and holds each one until release is closed.
type blockingHandler struct {
	mu       sync.Mutex
	names    []string
	traceIDs []string
	running  atomic.Int32
	peak     atomic.Int32
	release  chan struct{}
}

func newBlockingHandler() *blockingHandler {
	return &blockingHandler{release: make(chan struct{})}
}

func (h *blockingHandler) Handle(scope *envelope.Scope, cmd server.Command) error {
	n := h.running.Add(1)
	for {
		peak := h.peak.Load()
		if n <= peak || h.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	<-h.release
	h.running.Add(-1)

	h.mu.Lock()
	h.names = append(h.names, cmd.Name)
	h.traceIDs = append(h.traceIDs, scope.TraceID)
	h.mu.Unlock()
	return nil
}

func (h *blockingHandler) handled() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.names...)
}

func commandMsg(g testsetup.GomegaWithScope, cmd server.Command) *nats.Msg {
	data, err := json.Marshal(cmd)
	g.Expect(err).ToNot(HaveOccurred())
	return &nats.Msg{Subject: "ranked.commands", Data: data}
}

func TestNATSListener_SubscribesToCommandSubject(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	sub := &fakeSubscriber{}
	listener := server.NewNATSListener(sub, newBlockingHandler(), "ranked", "ranked-server", 0)

	g.Expect(listener.Start()).To(Succeed())
	g.Expect(sub.subject).To(Equal("ranked.commands"))
	g.Expect(sub.queue).To(Equal("ranked-server"))
	g.Expect(sub.handler).ToNot(BeNil())

	failing := server.NewNATSListener(&fakeSubscriber{err: errors.New("no connection")}, newBlockingHandler(), "ranked", "q", 0)
	g.Expect(failing.Start()).To(MatchError(ContainSubstring("no connection")))
}

func TestNATSListener_LimitsCommandsInFlight(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	handler := newBlockingHandler()
	listener := server.NewNATSListener(&fakeSubscriber{}, handler, "ranked", "q", 2)

	// HandleMessage blocks once both slots are taken, like the NATS delivery goroutine would
	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		for i := 0; i < 5; i++ {
			listener.HandleMessage(commandMsg(g, server.Command{Name: server.CmdRules, UserID: "alice"}))
		}
	}()

	g.Eventually(handler.running.Load).Should(Equal(int32(2)))
	g.Consistently(handler.running.Load, 50*time.Millisecond).Should(Equal(int32(2)))

	close(handler.release)
	g.Eventually(delivered).Should(BeClosed())
	listener.Wait()

	g.Expect(handler.handled()).To(HaveLen(5))
	g.Expect(handler.peak.Load()).To(Equal(int32(2)))
}

func TestNATSListener_PropagatesTraceID(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	handler := newBlockingHandler()
	close(handler.release)
	listener := server.NewNATSListener(&fakeSubscriber{}, handler, "ranked", "q", 0)

	traceID := "0123456789abcdef0123456789abcdef"
	listener.HandleMessage(commandMsg(g, server.Command{Name: server.CmdRules, TraceID: traceID}))
	listener.Wait()

	g.Expect(handler.traceIDs).To(Equal([]string{traceID}))
}

func TestNATSListener_DropsMalformedAndLateCommands(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	handler := newBlockingHandler()
	close(handler.release)
	listener := server.NewNATSListener(&fakeSubscriber{}, handler, "ranked", "q", 0)

	listener.HandleMessage(&nats.Msg{Subject: "ranked.commands", Data: []byte("{not json")})
	listener.Wait()
	g.Expect(handler.handled()).To(BeEmpty())

	listener.Stop()
	listener.HandleMessage(commandMsg(g, server.Command{Name: server.CmdRules}))
	listener.Wait()
	g.Expect(handler.handled()).To(BeEmpty())
}
