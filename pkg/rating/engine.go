// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"context"
	"sync"

	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// Store persists ratings. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored rating and false when the player has no record.
	Get(ctx context.Context, playerID string) (int, bool, error)
	Set(ctx context.Context, playerID string, rating int) error
	// Top returns up to n records ordered by rating descending.
	Top(ctx context.Context, n int) ([]models.PlayerRating, error)
}

// Placement is a player's final rank in a tournament.
type Placement struct {
	PlayerID string
	Rank     int
}

// Engine applies rating rules to a Store. Read-modify-write cycles on the same
// player are serialized; different players proceed in parallel.
type Engine struct {
	store   Store
	rule    string
	metrics metrics.RankedMetrics
	locks   sync.Map
}

// NewEngine returns an Engine. rule selects the standings rule and is either
// constants.RatingRuleField or constants.RatingRulePlacement; anything else means field.
func NewEngine(store Store, rule string, m metrics.RankedMetrics) *Engine {
	if rule != constants.RatingRulePlacement {
		rule = constants.RatingRuleField
	}
	return &Engine{store: store, rule: rule, metrics: m}
}

func (e *Engine) Rule() string {
	return e.rule
}

// Rating returns the player's rating, creating the default record on first lookup.
func (e *Engine) Rating(scope *envelope.Scope, playerID string) (int, error) {
	unlock := e.lock(playerID)
	defer unlock()

	return e.load(scope.Ctx, playerID)
}

// ApplyPairwise records a ranked win of winnerID over loserID.
func (e *Engine) ApplyPairwise(scope *envelope.Scope, winnerID, loserID string) (PairwiseResult, error) {
	scope = scope.NewChildScope("rating.ApplyPairwise")
	defer scope.Finish()

	unlock := e.lock(winnerID, loserID)
	defer unlock()

	winner, err := e.load(scope.Ctx, winnerID)
	if err != nil {
		return PairwiseResult{}, err
	}
	loser, err := e.load(scope.Ctx, loserID)
	if err != nil {
		return PairwiseResult{}, err
	}

	result := Pairwise(winner, loser)
	if err = e.save(scope.Ctx, winnerID, result.WinnerAfter); err != nil {
		return PairwiseResult{}, err
	}
	if err = e.save(scope.Ctx, loserID, result.LoserAfter); err != nil {
		e.restore(scope, map[string]int{winnerID: winner})
		return PairwiseResult{}, err
	}

	e.metrics.ObserveRatingDelta("pairwise", result.WinnerDelta())
	e.metrics.ObserveRatingDelta("pairwise", result.LoserDelta())
	scope.Log.
		WithField("winner", winnerID).
		WithField("loser", loserID).
		Infof("rating updated %d -> %d, %d -> %d", result.WinnerBefore, result.WinnerAfter, result.LoserBefore, result.LoserAfter)

	return result, nil
}

// ApplyStandings rates a finished tournament with the configured rule.
func (e *Engine) ApplyStandings(scope *envelope.Scope, format models.Format, placements []Placement) ([]Change, error) {
	scope = scope.NewChildScope("rating.ApplyStandings")
	defer scope.Finish()

	ids := pie.Map(placements, func(p Placement) string { return p.PlayerID })
	unlock := e.lock(ids...)
	defer unlock()

	standings := make([]Standing, 0, len(placements))
	for _, p := range placements {
		current, err := e.load(scope.Ctx, p.PlayerID)
		if err != nil {
			return nil, err
		}
		standings = append(standings, Standing{PlayerID: p.PlayerID, Rating: current, Rank: p.Rank})
	}

	var changes []Change
	if e.rule == constants.RatingRulePlacement {
		changes = PlacementChanges(standings, format)
	} else {
		changes = Field(standings)
	}

	saved := make(map[string]int, len(changes))
	for _, c := range changes {
		if err := e.save(scope.Ctx, c.PlayerID, c.After); err != nil {
			e.restore(scope, saved)
			return nil, err
		}
		saved[c.PlayerID] = c.Before
	}
	for _, c := range changes {
		e.metrics.ObserveRatingDelta(e.rule, c.Delta())
	}
	scope.Log.WithField("rule", e.rule).Infof("applied standings rating for %d players", len(changes))

	return changes, nil
}

// SetRating overrides a player's rating and returns the previous value.
func (e *Engine) SetRating(scope *envelope.Scope, playerID string, rating int) (int, error) {
	if rating < constants.MinAdminRating || rating > constants.MaxAdminRating {
		return 0, models.ErrInvalidRating
	}

	unlock := e.lock(playerID)
	defer unlock()

	before, err := e.load(scope.Ctx, playerID)
	if err != nil {
		return 0, err
	}
	if err = e.save(scope.Ctx, playerID, rating); err != nil {
		return 0, err
	}
	scope.Log.WithField("player", playerID).Infof("rating set %d -> %d", before, rating)

	return before, nil
}

// Leaderboard returns the n highest rated players.
func (e *Engine) Leaderboard(scope *envelope.Scope, n int) ([]models.PlayerRating, error) {
	if n <= 0 {
		n = constants.DefaultLeaderboardSize
	}
	top, err := e.store.Top(scope.Ctx, n)
	if err != nil {
		return nil, storeError("top", err)
	}
	return top, nil
}

func (e *Engine) load(ctx context.Context, playerID string) (int, error) {
	r, ok, err := e.store.Get(ctx, playerID)
	if err != nil {
		return 0, storeError("get", err)
	}
	if ok {
		return r, nil
	}
	if err = e.save(ctx, playerID, constants.DefaultRating); err != nil {
		return 0, err
	}
	return constants.DefaultRating, nil
}

func (e *Engine) save(ctx context.Context, playerID string, r int) error {
	if err := e.store.Set(ctx, playerID, r); err != nil {
		return storeError("set", err)
	}
	return nil
}

// restore writes back ratings saved earlier in a failed update so a retry starts
// from the same values. Callers hold the player locks.
func (e *Engine) restore(scope *envelope.Scope, previous map[string]int) {
	for playerID, r := range previous {
		if err := e.save(scope.Ctx, playerID, r); err != nil {
			scope.Log.WithError(err).WithField("player", playerID).Errorf("failed to restore rating %d", r)
		}
	}
}

// lock acquires the per-player mutexes in sorted order and returns the release func.
func (e *Engine) lock(playerIDs ...string) func() {
	ids := pie.Sort(pie.Unique(playerIDs))
	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func storeError(operation string, err error) error {
	return &models.CollaboratorError{Service: "rating-store", Operation: operation, Err: err}
}
