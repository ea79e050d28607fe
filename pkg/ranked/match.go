// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package ranked

import (
	"sync"
	"time"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/utils"
)

type State int

const (
	StatePending State = iota
	StateActive
	StateCompleted
	StateExpired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateActive:
		return "ACTIVE"
	case StateCompleted:
		return "COMPLETED"
	case StateExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// ScoreState is a point in time copy of a match.
type ScoreState struct {
	MatchID       string    `json:"matchId"`
	Requester     string    `json:"requester"`
	Opponent      string    `json:"opponent,omitempty"`
	RequesterWins int       `json:"requesterWins"`
	OpponentWins  int       `json:"opponentWins"`
	State         State     `json:"-"`
	StateName     string    `json:"state"`
	Winner        string    `json:"winner,omitempty"`
	Loser         string    `json:"loser,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (s ScoreState) IsCompleted() bool {
	return s.State == StateCompleted
}

// Match is a ranked challenge. requester and id never change after creation,
// every other field is guarded by mu.
type Match struct {
	mu sync.Mutex

	id        string
	requester string
	createdAt time.Time

	opponent      string
	requesterWins int
	opponentWins  int
	state         State
	winner        string
	loser         string
	confirming    bool
	cancelExpiry  func()
}

func newMatch(requester string) *Match {
	return &Match{
		id:        utils.NewMatchID(),
		requester: requester,
		createdAt: time.Now().UTC(),
		state:     StatePending,
	}
}

func (m *Match) ID() string {
	return m.id
}

func (m *Match) Snapshot() ScoreState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Match) snapshot() ScoreState {
	return ScoreState{
		MatchID:       m.id,
		Requester:     m.requester,
		Opponent:      m.opponent,
		RequesterWins: m.requesterWins,
		OpponentWins:  m.opponentWins,
		State:         m.state,
		StateName:     m.state.String(),
		Winner:        m.winner,
		Loser:         m.loser,
		CreatedAt:     m.createdAt,
	}
}

// mutable reports why the score cannot change right now. Caller holds mu.
func (m *Match) mutable() error {
	switch {
	case m.confirming:
		return models.ErrMatchConfirming
	case m.state == StateActive, m.state == StateCompleted:
		return nil
	default:
		return models.ErrNoActiveMatch
	}
}

// setScore stores the counters in requester/opponent order and re-evaluates
// completion. Caller holds mu.
func (m *Match) setScore(requesterWins, opponentWins int) {
	m.requesterWins = requesterWins
	m.opponentWins = opponentWins
	m.evaluate()
}

// evaluate moves the match between ACTIVE and COMPLETED from its counters.
// Caller holds mu.
func (m *Match) evaluate() {
	if m.requesterWins < constants.WinsToComplete && m.opponentWins < constants.WinsToComplete {
		m.state = StateActive
		m.winner, m.loser = "", ""
		return
	}
	m.state = StateCompleted
	if m.requesterWins > m.opponentWins {
		m.winner, m.loser = m.requester, m.opponent
	} else {
		m.winner, m.loser = m.opponent, m.requester
	}
}

// validScore holds when both sides are 0..3, the total is 3..5 and exactly one side has 3.
func validScore(a, b int) bool {
	if a < 0 || b < 0 || a > constants.WinsToComplete || b > constants.WinsToComplete {
		return false
	}
	total := a + b
	if total < constants.MinGamesPlayed || total > constants.MaxGamesPlayed {
		return false
	}
	return (a == constants.WinsToComplete) != (b == constants.WinsToComplete)
}
