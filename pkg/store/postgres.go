// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

const createRatingsTable = `
CREATE TABLE IF NOT EXISTS player_ratings (
	player_id  TEXT PRIMARY KEY,
	rating     INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createRatingsIndex = `CREATE INDEX IF NOT EXISTS idx_player_ratings_rating ON player_ratings (rating DESC)`

// Postgres stores ratings in the player_ratings table.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects, tunes the pool and creates the schema when missing.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres rating store requires POSTGRES_DSN")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := NewPostgresWithDB(db)
	if err = p.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logrus.Info("connected to postgres rating store")
	return p, nil
}

// NewPostgresWithDB wraps an existing handle without touching the schema.
func NewPostgresWithDB(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	for i, stmt := range []string{createRatingsTable, createRatingsIndex} {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", i+1, err)
		}
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, playerID string) (int, bool, error) {
	var rating int
	err := p.db.GetContext(ctx, &rating, `SELECT rating FROM player_ratings WHERE player_id = $1`, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rating, true, nil
}

func (p *Postgres) Set(ctx context.Context, playerID string, rating int) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO player_ratings (player_id, rating) VALUES ($1, $2)
		ON CONFLICT (player_id) DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()`,
		playerID, rating)
	return err
}

func (p *Postgres) Top(ctx context.Context, n int) ([]models.PlayerRating, error) {
	records := []models.PlayerRating{}
	err := p.db.SelectContext(ctx, &records,
		`SELECT player_id, rating FROM player_ratings ORDER BY rating DESC, player_id ASC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
