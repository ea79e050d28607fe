// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// Redis keeps every rating as a member of one sorted set, so the leaderboard
// is a single range read.
type Redis struct {
	client redis.UniversalClient
	key    string
}

func NewRedis(ctx context.Context, url, key string) (*Redis, error) {
	if url == "" {
		return nil, errors.New("redis rating store requires REDIS_URL")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logrus.WithField("key", key).Info("connected to redis rating store")
	return NewRedisWithClient(client, key), nil
}

func NewRedisWithClient(client redis.UniversalClient, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Get(ctx context.Context, playerID string) (int, bool, error) {
	score, err := r.client.ZScore(ctx, r.key, playerID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return int(score), true, nil
}

func (r *Redis) Set(ctx context.Context, playerID string, rating int) error {
	return r.client.ZAdd(ctx, r.key, redis.Z{Score: float64(rating), Member: playerID}).Err()
}

func (r *Redis) Top(ctx context.Context, n int) ([]models.PlayerRating, error) {
	if n <= 0 {
		return []models.PlayerRating{}, nil
	}
	entries, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	records := make([]models.PlayerRating, 0, len(entries))
	for _, z := range entries {
		id, ok := z.Member.(string)
		if !ok {
			continue
		}
		records = append(records, models.PlayerRating{PlayerID: id, Rating: int(z.Score)})
	}
	// equal scores come back in reverse lexical order
	return sortTop(records, n), nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
