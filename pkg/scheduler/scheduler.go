// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package scheduler runs delayed and periodic work on a gocron scheduler.
package scheduler

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Scheduler owns every timer of the process. Shutdown stops new runs and gives
// running jobs up to the grace period to finish.
type Scheduler struct {
	cron gocron.Scheduler
	log  *logrus.Entry
}

func New(grace time.Duration, log *logrus.Entry) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(
		gocron.WithStopTimeout(grace),
		gocron.WithLogger(cronLogger{log: log}),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// After runs fn once after delay. The returned cancel is idempotent and a
// no-op once fn has started.
func (s *Scheduler) After(name string, delay time.Duration, fn func()) (cancel func(), err error) {
	start := gocron.OneTimeJobStartImmediately()
	if delay > 0 {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}

	id := uuid.New()
	_, err = s.cron.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() {
			s.run(name, fn)
			go s.remove(id)
		}),
		gocron.WithIdentifier(id),
		gocron.WithName(name),
		gocron.WithTags("once"),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to schedule %s: %w", name, err)
	}
	return func() { s.remove(id) }, nil
}

// Every runs fn immediately and then every interval. Runs never overlap; a
// trigger that lands during a run is queued behind it.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) (Poller, error) {
	job, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.run(name, fn) }),
		gocron.WithName(name),
		gocron.WithTags("periodic"),
		gocron.WithSingletonMode(gocron.LimitModeWait),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to schedule %s: %w", name, err)
	}
	return &poller{scheduler: s, job: job}, nil
}

// Shutdown returns an error when running jobs outlive the grace period.
func (s *Scheduler) Shutdown() error {
	err := s.cron.Shutdown()
	if errors.Is(err, gocron.ErrStopJobsTimedOut) {
		s.log.Warn("scheduler shutdown grace period elapsed with jobs still running")
	}
	return err
}

func (s *Scheduler) run(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("job", name).Errorf("job panicked: %v", r)
		}
	}()
	fn()
}

func (s *Scheduler) remove(id uuid.UUID) {
	if err := s.cron.RemoveJob(id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		s.log.WithField("job", id.String()).Debugf("unable to remove job: %v", err)
	}
}

// Poller is a handle on a periodic job.
type Poller interface {
	// RunNow triggers an extra run outside the interval.
	RunNow()
	// Stop removes the job. Safe to call from inside the job itself.
	Stop()
}

type poller struct {
	scheduler *Scheduler
	job       gocron.Job
	stopped   atomic.Bool
}

func (p *poller) RunNow() {
	if p.stopped.Load() {
		return
	}
	if err := p.job.RunNow(); err != nil {
		p.scheduler.log.WithField("job", p.job.Name()).Debugf("unable to trigger job: %v", err)
	}
}

func (p *poller) Stop() {
	if p.stopped.Swap(true) {
		return
	}
	go p.scheduler.remove(p.job.ID())
}

type cronLogger struct {
	log *logrus.Entry
}

func (l cronLogger) Debug(msg string, args ...any) { l.entry(args).Debug(msg) }
func (l cronLogger) Info(msg string, args ...any)  { l.entry(args).Info(msg) }
func (l cronLogger) Warn(msg string, args ...any)  { l.entry(args).Warn(msg) }
func (l cronLogger) Error(msg string, args ...any) { l.entry(args).Error(msg) }

// entry turns gocron's key value pairs into logrus fields.
func (l cronLogger) entry(args []any) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(args); i += 2 {
		fields[fmt.Sprint(args[i])] = args[i+1]
	}
	return l.log.WithFields(fields)
}
