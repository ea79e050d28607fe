// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/server"
	"github.com/AccelByte/extend-core-ranked/pkg/testsetup"
)

func serve(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()
	f := newFixture(0)
	registry := prometheus.NewRegistry()
	metrics.NewMetrics(registry).AddRankedEvent("seek")
	router := server.NewRouter(f.dispatcher, registry)

	rec := serve(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "seek")
}

func TestRouter_Ratings(t *testing.T) {
	t.Parallel()
	f := newFixture(0)
	router := server.NewRouter(f.dispatcher, nil)
	require.NoError(t, f.ratings.Set(context.Background(), "alice", 1400))
	require.NoError(t, f.ratings.Set(context.Background(), "bob", 1100))

	rec := serve(router, http.MethodGet, "/v1/ratings/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"playerId":"alice","rating":1400}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/v1/ratings/newcomer", nil)
	assert.JSONEq(t, `{"playerId":"newcomer","rating":1000}`, rec.Body.String())

	rec = serve(router, http.MethodGet, "/v1/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var top []models.PlayerRating
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &top))
	assert.Equal(t, []models.PlayerRating{{PlayerID: "alice", Rating: 1400}}, top)

	rec = serve(router, http.MethodGet, "/v1/leaderboard?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errorCode":520110,"errorMessage":"missing or invalid command option"}`, rec.Body.String())
}

func TestRouter_RankedState(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(0)
	router := server.NewRouter(f.dispatcher, nil)

	g.Expect(f.dispatcher.Handle(g.TestScope, f.command(server.CmdSeek, "alice", nil))).To(Succeed())

	rec := serve(router, http.MethodGet, "/v1/ranked/alice", nil)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	var body struct {
		PlayerID string                 `json:"playerId"`
		Rating   int                    `json:"rating"`
		Pending  map[string]interface{} `json:"pending"`
		Active   map[string]interface{} `json:"active"`
	}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	g.Expect(body.Rating).To(Equal(1000))
	g.Expect(body.Pending).To(HaveKeyWithValue("state", "PENDING"))
	g.Expect(body.Active).To(BeNil())
}

func TestRouter_Commands(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	f := newFixture(0)
	router := server.NewRouter(f.dispatcher, nil)

	rec := serve(router, http.MethodPost, "/v1/commands", server.Command{
		Name:          server.CmdTournamentCreate,
		InteractionID: "http-1",
		UserID:        "olivia",
		ChannelID:     channel,
		Roles:         organizer,
		Options:       map[string]interface{}{server.OptName: "Summer Cup", server.OptType: "double"},
	})
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(MatchJSON(`{"ok":true}`))

	rec = serve(router, http.MethodGet, "/v1/tournaments", nil)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	var tournaments []map[string]interface{}
	g.Expect(json.Unmarshal(rec.Body.Bytes(), &tournaments)).To(Succeed())
	g.Expect(tournaments).To(HaveLen(1))
	g.Expect(tournaments[0]).To(HaveKeyWithValue("channelId", channel))
	g.Expect(tournaments[0]).To(HaveKeyWithValue("phase", "registration"))

	rec = serve(router, http.MethodPost, "/v1/commands", server.Command{
		Name:      server.CmdTournamentCreate,
		UserID:    "olivia",
		ChannelID: channel,
		Roles:     organizer,
		Options:   map[string]interface{}{server.OptName: "Summer Cup", server.OptType: "double"},
	})
	g.Expect(rec.Code).To(Equal(http.StatusConflict))
	g.Expect(rec.Body.String()).To(MatchJSON(`{"errorCode":520211,"errorMessage":"tournament is already tracked"}`))

	rec = serve(router, http.MethodPost, "/v1/commands", map[string]string{"userId": "olivia"})
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
}
