// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package store holds the rating store backends.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-core-ranked/pkg/config"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// RatingStore is the persistence contract every backend satisfies.
type RatingStore interface {
	Get(ctx context.Context, playerID string) (int, bool, error)
	Set(ctx context.Context, playerID string, rating int) error
	Top(ctx context.Context, n int) ([]models.PlayerRating, error)
	Close() error
}

// New opens the backend selected by cfg.RatingStore.
func New(ctx context.Context, cfg *config.Config) (RatingStore, error) {
	backend := strings.ToLower(cfg.RatingStore)
	logrus.WithField("backend", backend).Info("opening rating store")

	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		return NewPostgres(ctx, cfg.PostgresDSN)
	case BackendRedis:
		return NewRedis(ctx, cfg.RedisURL, cfg.RedisKey)
	case BackendDynamoDB:
		return NewDynamoFromEnvironment(ctx, cfg.DynamoDBTable)
	default:
		return nil, fmt.Errorf("unknown rating store backend %q", cfg.RatingStore)
	}
}

// sortTop orders records by rating descending, player id ascending, and keeps n.
func sortTop(records []models.PlayerRating, n int) []models.PlayerRating {
	records = pie.SortUsing(records, func(a, b models.PlayerRating) bool {
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		return a.PlayerID < b.PlayerID
	})
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	return records
}
