// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-core-ranked/pkg/bracket"
	"github.com/AccelByte/extend-core-ranked/pkg/common"
	"github.com/AccelByte/extend-core-ranked/pkg/config"
	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/ranked"
	"github.com/AccelByte/extend-core-ranked/pkg/rating"
	"github.com/AccelByte/extend-core-ranked/pkg/scheduler"
	"github.com/AccelByte/extend-core-ranked/pkg/server"
	"github.com/AccelByte/extend-core-ranked/pkg/store"
	"github.com/AccelByte/extend-core-ranked/pkg/tournament"
)

const serviceName = "ranked-server"

func main() {
	if err := common.LoadEnvFiles(".env"); err != nil {
		logrus.WithError(err).Fatal("unable to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("unable to load config")
	}
	if err = common.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := common.SetupTracing(serviceName, cfg.ZipkinURL)
	if err != nil {
		logrus.WithError(err).Fatal("unable to set up tracing")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(promRegistry)

	ratingStore, err := store.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("unable to open rating store")
	}
	engine := rating.NewEngine(ratingStore, cfg.TournamentRatingRule, m)

	bracketClient, err := bracket.NewClient(cfg.ChallongeBaseURL, cfg.ChallongeUsername, cfg.ChallongeAPIKey,
		bracket.WithRateLimit(cfg.ChallongeRequestsPerSecond),
		bracket.WithTimeout(cfg.BracketTimeout()),
		bracket.WithMetrics(m),
	)
	if err != nil {
		logrus.WithError(err).Fatal("unable to create bracket client")
	}

	var (
		nc   *nats.Conn
		chat gateway.ChatGateway
	)
	nc, err = gateway.Connect(cfg.NATSURL, serviceName)
	if err != nil {
		logrus.WithError(err).Warn("NATS unavailable, outbound messages are only logged")
		chat = gateway.NewLogGateway(logrus.WithField("component", "chat"))
	} else {
		chat = gateway.NewNATSGateway(nc, cfg.NATSSubjectPrefix)
	}

	jobs, err := scheduler.New(cfg.ShutdownGrace(), logrus.WithField("component", "scheduler"))
	if err != nil {
		logrus.WithError(err).Fatal("unable to create scheduler")
	}
	jobs.Start()

	matches := ranked.NewRegistry(jobs, engine, chat, m, cfg.RankedExpiry())
	tournaments := tournament.NewRegistry(m)
	loop := tournament.NewSyncLoop(tournaments, bracketClient, chat, engine, jobs, m, cfg.TournamentPollPeriod())
	coordinator := tournament.NewCoordinator(tournaments, loop, bracketClient, chat, engine, tournament.Options{
		OrganizerRoles:  cfg.OrganizerRoles,
		RequireApproval: cfg.RequireResultApproval,
	})
	dispatcher := server.NewDispatcher(matches, engine, coordinator, chat, server.Options{
		OrganizerRoles:  cfg.OrganizerRoles,
		LeaderboardSize: cfg.LeaderboardSize,
		Cooldown:        cfg.CommandCooldown(),
	})

	var listener *server.NATSListener
	if nc != nil {
		listener = server.NewNATSListener(nc, dispatcher, cfg.NATSSubjectPrefix, cfg.NATSQueueGroup, cfg.MaxInFlight())
		if err = listener.Start(); err != nil {
			logrus.WithError(err).Fatal("unable to subscribe to commands")
		}
	}

	httpServer := server.NewHTTPServer(cfg.HTTPAddress, server.NewRouter(dispatcher, promRegistry))
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve()
	}()

	select {
	case <-ctx.Done():
		logrus.Info("shutting down")
	case err = <-serveErr:
		logrus.WithError(err).Error("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace()+5*time.Second)
	defer cancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("http server shutdown")
	}
	if listener != nil {
		listener.Stop()
	}
	matches.Close()
	if err = jobs.Shutdown(); err != nil {
		logrus.WithError(err).Warn("scheduler shutdown")
	}
	if nc != nil {
		if err = nc.Drain(); err != nil {
			logrus.WithError(err).Warn("NATS drain")
		}
	}
	if err = ratingStore.Close(); err != nil {
		logrus.WithError(err).Warn("rating store close")
	}
	if err = shutdownTracing(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("tracing shutdown")
	}
	logrus.Info("stopped")
}
