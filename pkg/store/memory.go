// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// Memory keeps ratings in process. Data is lost on restart.
type Memory struct {
	mu      sync.RWMutex
	ratings map[string]int
}

func NewMemory() *Memory {
	return &Memory{ratings: map[string]int{}}
}

func (m *Memory) Get(_ context.Context, playerID string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.ratings[playerID]
	return r, ok, nil
}

func (m *Memory) Set(_ context.Context, playerID string, rating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[playerID] = rating
	return nil
}

func (m *Memory) Top(_ context.Context, n int) ([]models.PlayerRating, error) {
	m.mu.RLock()
	records := make([]models.PlayerRating, 0, len(m.ratings))
	for id, r := range m.ratings {
		records = append(records, models.PlayerRating{PlayerID: id, Rating: r})
	}
	m.mu.RUnlock()
	return sortTop(records, n), nil
}

func (m *Memory) Close() error {
	return nil
}
