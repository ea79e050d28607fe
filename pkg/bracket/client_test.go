// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bracket_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-core-ranked/pkg/bracket"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	User   string
	Key    string
	Body   map[string]map[string]interface{}
}

type fakeProvider struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	response string
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, key, _ := r.BasicAuth()
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, User: user, Key: key}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, response := f.status, f.response
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (f *fakeProvider) respond(status int, response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.response = status, response
}

func (f *fakeProvider) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type countingMetrics struct {
	mu       sync.Mutex
	requests map[string]int
}

func (m *countingMetrics) AddRankedEvent(string) {}
func (m *countingMetrics) ObserveRatingDelta(string, int) {}
func (m *countingMetrics) AddSyncElapsedTimeMs(string, string, time.Duration) {}
func (m *countingMetrics) TrackedTournaments(int) {}
func (m *countingMetrics) AddBracketRequest(operation string, statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.requests == nil {
		m.requests = map[string]int{}
	}
	m.requests[operation] = statusCode
}

func newClient(t *testing.T, provider *fakeProvider, opts ...bracket.ClientOption) *bracket.Client {
	t.Helper()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	client, err := bracket.NewClient(srv.URL+"/v1/", "organizer", "secret", opts...)
	require.NoError(t, err)
	return client
}

func TestClient_CreateTournament(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{response: `{"tournament":{"id":42,"name":"Summer Cup","url":"summer_cup","full_challonge_url":"https://challonge.com/summer_cup","tournament_type":"double elimination","state":"pending"}}`}
	m := &countingMetrics{}
	client := newClient(t, provider, bracket.WithMetrics(m))

	tournament, err := client.CreateTournament(context.Background(), bracket.CreateTournamentParams{
		Name:       "Summer Cup",
		URL:        "summer_cup",
		Format:     models.FormatDoubleElimination,
		Private:    swag.Bool(false),
		OpenSignup: swag.Bool(false),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), tournament.ID)
	assert.Equal(t, "https://challonge.com/summer_cup", tournament.FullURL)
	assert.Equal(t, models.FormatDoubleElimination, models.FormatFromRemote(tournament.TournamentType))

	req := provider.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/tournaments.json", req.Path)
	assert.Equal(t, "organizer", req.User)
	assert.Equal(t, "secret", req.Key)
	assert.Equal(t, "double elimination", req.Body["tournament"]["tournament_type"])
	assert.Equal(t, false, req.Body["tournament"]["open_signup"])
	assert.NotContains(t, req.Body["tournament"], "description")

	assert.Equal(t, http.StatusOK, m.requests["createTournament"])
}

func TestClient_GetMatchesFilter(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{response: `[
		{"match":{"id":1,"state":"open","player1_id":10,"player2_id":11,"round":1}},
		{"match":{"id":2,"state":"pending","player1_id":12,"player2_id":null,"round":1}}
	]`}
	client := newClient(t, provider)

	matches, err := client.GetMatches(context.Background(), 42, bracket.MatchFilter{State: "open", ParticipantID: 10})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].IsOpen())
	assert.True(t, matches[0].Involves(11, 10))
	assert.Equal(t, int64(0), matches[1].Player2ID)

	req := provider.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v1/tournaments/42/matches.json", req.Path)
	assert.Equal(t, "participant_id=10&state=open", req.Query)
}

func TestClient_UpdateMatch(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{response: `{"match":{"id":7,"state":"complete","winner_id":10,"scores_csv":"2-1"}}`}
	client := newClient(t, provider)

	match, err := client.UpdateMatch(context.Background(), 42, 7, bracket.ScoreUpdate(2, 1, 10))
	require.NoError(t, err)
	assert.True(t, match.IsTerminal())

	req := provider.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/v1/tournaments/42/matches/7.json", req.Path)
	assert.Equal(t, "2-1", req.Body["match"]["scores_csv"])
	assert.Equal(t, float64(10), req.Body["match"]["winner_id"])

	_, err = client.UpdateMatch(context.Background(), 42, 7, bracket.ClearResult())
	require.NoError(t, err)
	req = provider.last()
	assert.Contains(t, req.Body["match"], "scores_csv")
	assert.Nil(t, req.Body["match"]["scores_csv"])
	assert.Nil(t, req.Body["match"]["winner_id"])
}

func TestClient_ParticipantsAndSeeding(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{response: `[{"participant":{"id":10,"name":"Alice","misc":"alice","seed":1,"final_rank":2}}]`}
	client := newClient(t, provider)

	participants, err := client.GetParticipants(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []models.Participant{{ID: 10, Name: "Alice", Misc: "alice", Seed: 1, FinalRank: 2}}, participants)

	provider.respond(http.StatusOK, "")
	require.NoError(t, client.RandomizeSeeding(context.Background(), 42))
	assert.Equal(t, "/v1/tournaments/42/participants/randomize.json", provider.last().Path)
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{status: http.StatusUnprocessableEntity, response: `{"errors":["Tournament is not startable"]}`}
	m := &countingMetrics{}
	client := newClient(t, provider, bracket.WithMetrics(m))

	_, err := client.StartTournament(context.Background(), 42)
	require.Error(t, err)

	var collaborator *models.CollaboratorError
	require.True(t, errors.As(err, &collaborator))
	assert.Equal(t, "startTournament", collaborator.Operation)
	assert.Equal(t, http.StatusUnprocessableEntity, collaborator.StatusCode)
	assert.Contains(t, collaborator.Body, "not startable")
	assert.ErrorIs(t, err, models.ErrCollaborator)
	assert.Equal(t, models.KindCollaborator, models.ErrorKindOf(err))
	assert.Equal(t, http.StatusUnprocessableEntity, m.requests["startTournament"])

	provider.respond(http.StatusOK, `{"tournament":`)
	_, err = client.GetTournament(context.Background(), 42)
	require.True(t, errors.As(err, &collaborator))
	assert.Equal(t, http.StatusOK, collaborator.StatusCode)
}

func TestClient_CancelledContext(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{}
	client := newClient(t, provider, bracket.WithRateLimit(0.001))

	// the first request takes the only token
	_, err := client.GetTournament(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.GetTournament(ctx, 1)
	assert.ErrorIs(t, err, models.ErrCollaborator)
}
