// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"time"

	"github.com/caarlos0/env"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info" envDocs:"logrus level (trace, debug, info, warn, error)"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" envDocs:"log output format, json or text"`

	HTTPAddress string `env:"HTTP_ADDRESS" envDefault:":8080" envDocs:"listen address of the admin and metrics HTTP server"`
	ZipkinURL   string `env:"ZIPKIN_URL"   envDefault:""      envDocs:"zipkin collector endpoint, tracing export is disabled when empty"`

	NATSURL           string `env:"NATS_URL"            envDefault:"nats://127.0.0.1:4222" envDocs:"NATS server used by the chat bridge"`
	NATSSubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"ranked"                envDocs:"prefix of every subject published or consumed"`
	NATSQueueGroup    string `env:"NATS_QUEUE_GROUP"    envDefault:"ranked-server"         envDocs:"queue group used for the command subscription"`
	NATSMaxInFlight   int    `env:"NATS_MAX_IN_FLIGHT"  envDefault:"0"                     envDocs:"commands handled concurrently (0 means use default from code)"`

	ChallongeBaseURL           string  `env:"CHALLONGE_BASE_URL"            envDefault:"https://api.challonge.com/v1/" envDocs:"bracket provider REST base URL"`
	ChallongeUsername          string  `env:"CHALLONGE_USERNAME"            envDefault:""                              envDocs:"bracket provider basic auth username"`
	ChallongeAPIKey            string  `env:"CHALLONGE_API_KEY"             envDefault:""                              envDocs:"bracket provider basic auth api key"`
	ChallongeRequestsPerSecond float64 `env:"CHALLONGE_REQUESTS_PER_SECOND" envDefault:"2"                             envDocs:"client side rate limit for bracket provider calls"`
	ChallongeTimeoutSecond     int     `env:"CHALLONGE_TIMEOUT_SECONDS"     envDefault:"0"                             envDocs:"per request timeout in second (0 means use default from code)"`

	RatingStore   string `env:"RATING_STORE"   envDefault:"memory"         envDocs:"rating store backend: memory, postgres, redis or dynamodb"`
	PostgresDSN   string `env:"POSTGRES_DSN"   envDefault:""               envDocs:"postgres connection string for the postgres rating store"`
	RedisURL      string `env:"REDIS_URL"      envDefault:""               envDocs:"redis url for the redis rating store"`
	RedisKey      string `env:"REDIS_KEY"      envDefault:"ranked:ratings" envDocs:"sorted set key holding ratings"`
	DynamoDBTable string `env:"DYNAMODB_TABLE" envDefault:"ranked_ratings" envDocs:"dynamodb table holding ratings"`

	RankedExpirySecond   int      `env:"RANKED_EXPIRY_SECONDS"   envDefault:"0"                                      envDocs:"pending challenge lifetime in second (0 means use default from code)"`
	TournamentPollSecond int      `env:"TOURNAMENT_POLL_SECONDS" envDefault:"0"                                      envDocs:"tournament sync interval in second (0 means use default from code)"`
	ShutdownGraceSecond  int      `env:"SHUTDOWN_GRACE_SECONDS"  envDefault:"0"                                      envDocs:"time given to running jobs on shutdown in second (0 means use default from code)"`
	TournamentRatingRule string   `env:"TOURNAMENT_RATING_RULE"  envDefault:"field"                                  envDocs:"standings rating rule applied on finalize: field or placement"`
	OrganizerRoles       []string `env:"ORGANIZER_ROLES"         envDefault:"TO,Tournament Organizer,Admin,Moderator" envDocs:"roles allowed to run organizer commands" envSeparator:","`
	LeaderboardSize      int      `env:"LEADERBOARD_SIZE"        envDefault:"5"                                      envDocs:"entries returned by the leaderboard command"`

	RequireResultApproval bool `env:"TOURNAMENT_REQUIRE_APPROVAL" envDefault:"false" envDocs:"reported tournament results wait for organizer approval before the winner is set"`
	CommandCooldownSecond int  `env:"COMMAND_COOLDOWN_SECONDS"    envDefault:"0"     envDocs:"per user and command cooldown in second (0 means use default from code, negative disables)"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) RankedExpiry() time.Duration {
	return secondsOr(c.RankedExpirySecond, constants.RankedExpiry)
}

func (c *Config) TournamentPollPeriod() time.Duration {
	return secondsOr(c.TournamentPollSecond, constants.TournamentPollPeriod)
}

func (c *Config) ShutdownGrace() time.Duration {
	return secondsOr(c.ShutdownGraceSecond, constants.ShutdownGracePeriod)
}

func (c *Config) BracketTimeout() time.Duration {
	return secondsOr(c.ChallongeTimeoutSecond, constants.BracketRequestTimeout)
}

// CommandCooldown is zero when the cooldown is disabled.
func (c *Config) CommandCooldown() time.Duration {
	if c.CommandCooldownSecond < 0 {
		return 0
	}
	return secondsOr(c.CommandCooldownSecond, constants.CommandCooldown)
}

func (c *Config) MaxInFlight() int {
	if c.NATSMaxInFlight <= 0 {
		return constants.MaxCommandsInFlight
	}
	return c.NATSMaxInFlight
}

func secondsOr(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
