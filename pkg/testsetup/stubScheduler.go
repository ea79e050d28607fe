// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"sync"
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/scheduler"
)

// StubScheduler never fires on its own; tests drive it with Fire and Tick.
type StubScheduler struct {
	mu      sync.Mutex
	timers  []*stubTimer
	pollers map[string]*StubPoller
	Err     error
}

type stubTimer struct {
	name      string
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func NewStubScheduler() *StubScheduler {
	return &StubScheduler{pollers: map[string]*StubPoller{}}
}

func (s *StubScheduler) After(name string, delay time.Duration, fn func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t := &stubTimer{name: name, delay: delay, fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
	}, nil
}

// Fire runs the named timer if it is still armed.
func (s *StubScheduler) Fire(name string) bool {
	s.mu.Lock()
	var target *stubTimer
	for _, t := range s.timers {
		if t.name == name && !t.cancelled && !t.fired {
			t.fired = true
			target = t
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return false
	}
	target.fn()
	return true
}

// FireAll runs every armed timer and returns how many ran.
func (s *StubScheduler) FireAll() int {
	s.mu.Lock()
	var due []*stubTimer
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Armed counts timers neither fired nor cancelled.
func (s *StubScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			n++
		}
	}
	return n
}

// LastDelay returns the delay of the most recent timer.
func (s *StubScheduler) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].delay
}

func (s *StubScheduler) Every(name string, interval time.Duration, fn func()) (scheduler.Poller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p := &StubPoller{Name: name, Interval: interval, fn: fn}
	s.pollers[name] = p
	return p, nil
}

// Poller returns the poller registered under name, nil when none.
func (s *StubScheduler) Poller(name string) *StubPoller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollers[name]
}

// StubPoller runs its job synchronously on RunNow and Tick.
type StubPoller struct {
	Name     string
	Interval time.Duration

	fn      func()
	mu      sync.Mutex
	runs    int
	stopped bool
}

func (p *StubPoller) RunNow() {
	p.Tick()
}

// Tick simulates the interval elapsing.
func (p *StubPoller) Tick() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.runs++
	p.mu.Unlock()
	p.fn()
}

func (p *StubPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
}

func (p *StubPoller) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *StubPoller) Runs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}
