// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bracket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-openapi/swag"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/metrics"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

const (
	serviceName     = "challonge"
	maxErrorBodyLen = 2048
	maxResponseLen  = 8 << 20
)

// Client talks to the Challonge v1 REST API.
type Client struct {
	baseURL  *url.URL
	username string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	pool     *models.Pool
	metrics  metrics.RankedMetrics
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithRateLimit caps outgoing requests per second. Non-positive values disable the limit.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

func WithMetrics(m metrics.RankedMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL, username, apiKey string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bracket base url: %w", err)
	}
	c := &Client{
		baseURL:  u,
		username: username,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: constants.BracketRequestTimeout},
		limiter:  rate.NewLimiter(rate.Inf, 0),
		pool:     models.NewPool(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tournamentEnvelope struct {
	Tournament models.Tournament `json:"tournament"`
}

type participantEnvelope struct {
	Participant models.Participant `json:"participant"`
}

type matchEnvelope struct {
	Match models.RemoteMatch `json:"match"`
}

type tournamentBody struct {
	Name           string  `json:"name"`
	URL            string  `json:"url"`
	TournamentType string  `json:"tournament_type"`
	Description    *string `json:"description,omitempty"`
	Private        *bool   `json:"private,omitempty"`
	OpenSignup     *bool   `json:"open_signup,omitempty"`
}

type participantBody struct {
	Name string `json:"name"`
	Misc string `json:"misc"`
	Seed *int   `json:"seed,omitempty"`
}

type matchBody struct {
	ScoresCsv *string `json:"scores_csv"`
	WinnerID  *int64  `json:"winner_id"`
}

func (c *Client) CreateTournament(ctx context.Context, params CreateTournamentParams) (models.Tournament, error) {
	body := map[string]tournamentBody{
		"tournament": {
			Name:           params.Name,
			URL:            params.URL,
			TournamentType: params.Format.RemoteType(),
			Description:    params.Description,
			Private:        params.Private,
			OpenSignup:     params.OpenSignup,
		},
	}
	var out tournamentEnvelope
	err := c.do(ctx, "createTournament", http.MethodPost, c.endpoint("tournaments.json"), nil, body, &out)
	return out.Tournament, err
}

func (c *Client) GetTournament(ctx context.Context, tournamentID int64) (models.Tournament, error) {
	var out tournamentEnvelope
	err := c.do(ctx, "getTournament", http.MethodGet, c.endpoint("tournaments", jsonID(tournamentID)), nil, nil, &out)
	return out.Tournament, err
}

func (c *Client) StartTournament(ctx context.Context, tournamentID int64) (models.Tournament, error) {
	var out tournamentEnvelope
	err := c.do(ctx, "startTournament", http.MethodPost, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "start.json"), nil, nil, &out)
	return out.Tournament, err
}

func (c *Client) FinalizeTournament(ctx context.Context, tournamentID int64) (models.Tournament, error) {
	var out tournamentEnvelope
	err := c.do(ctx, "finalizeTournament", http.MethodPost, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "finalize.json"), nil, nil, &out)
	return out.Tournament, err
}

func (c *Client) AddParticipant(ctx context.Context, tournamentID int64, params ParticipantParams) (models.Participant, error) {
	body := map[string]participantBody{
		"participant": {Name: params.Name, Misc: params.Misc, Seed: params.Seed},
	}
	var out participantEnvelope
	err := c.do(ctx, "addParticipant", http.MethodPost, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "participants.json"), nil, body, &out)
	return out.Participant, err
}

func (c *Client) GetParticipants(ctx context.Context, tournamentID int64) ([]models.Participant, error) {
	var out []participantEnvelope
	if err := c.do(ctx, "getParticipants", http.MethodGet, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "participants.json"), nil, nil, &out); err != nil {
		return nil, err
	}
	participants := make([]models.Participant, 0, len(out))
	for _, p := range out {
		participants = append(participants, p.Participant)
	}
	return participants, nil
}

func (c *Client) GetMatches(ctx context.Context, tournamentID int64, filter MatchFilter) ([]models.RemoteMatch, error) {
	query := url.Values{}
	if filter.State != "" {
		query.Set("state", filter.State)
	}
	if filter.ParticipantID != 0 {
		query.Set("participant_id", strconv.FormatInt(filter.ParticipantID, 10))
	}
	var out []matchEnvelope
	if err := c.do(ctx, "getMatches", http.MethodGet, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "matches.json"), query, nil, &out); err != nil {
		return nil, err
	}
	matches := make([]models.RemoteMatch, 0, len(out))
	for _, m := range out {
		matches = append(matches, m.Match)
	}
	return matches, nil
}

func (c *Client) GetMatch(ctx context.Context, tournamentID int64, matchID int64) (models.RemoteMatch, error) {
	var out matchEnvelope
	err := c.do(ctx, "getMatch", http.MethodGet, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "matches", jsonID(matchID)), nil, nil, &out)
	return out.Match, err
}

func (c *Client) UpdateMatch(ctx context.Context, tournamentID int64, matchID int64, update MatchUpdate) (models.RemoteMatch, error) {
	body := map[string]matchBody{
		"match": {ScoresCsv: update.ScoresCsv, WinnerID: update.WinnerID},
	}
	var out matchEnvelope
	err := c.do(ctx, "updateMatch", http.MethodPut, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "matches", jsonID(matchID)), nil, body, &out)
	return out.Match, err
}

func (c *Client) RandomizeSeeding(ctx context.Context, tournamentID int64) error {
	return c.do(ctx, "randomizeSeeding", http.MethodPost, c.endpoint("tournaments", strconv.FormatInt(tournamentID, 10), "participants", "randomize.json"), nil, nil, nil)
}

func (c *Client) endpoint(elem ...string) *url.URL {
	return c.baseURL.JoinPath(elem...)
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10) + ".json"
}

func (c *Client) do(ctx context.Context, operation, method string, endpoint *url.URL, query url.Values, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &models.CollaboratorError{Service: serviceName, Operation: operation, Err: err}
	}

	var reader io.Reader
	if body != nil {
		buf := c.pool.GetBuffer()
		defer c.pool.PutBuffer(buf)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode %s request: %w", operation, err)
		}
		reader = buf
	}

	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.SetBasicAuth(c.username, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(operation, 0)
		return &models.CollaboratorError{Service: serviceName, Operation: operation, Err: err}
	}
	defer resp.Body.Close()
	c.observe(operation, resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLen))
	if err != nil {
		return &models.CollaboratorError{Service: serviceName, Operation: operation, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.CollaboratorError{
			Service:    serviceName,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBodyLen),
		}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return &models.CollaboratorError{
			Service:    serviceName,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(raw), maxErrorBodyLen),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.WithField("operation", operation).Trace(spew.Sdump(out))
	}
	return nil
}

func (c *Client) observe(operation string, statusCode int) {
	if c.metrics != nil {
		c.metrics.AddBracketRequest(operation, statusCode)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ScoreUpdate builds a MatchUpdate with a "a-b" scores_csv and a winner.
func ScoreUpdate(player1Score, player2Score int, winnerID int64) MatchUpdate {
	return MatchUpdate{
		ScoresCsv: swag.String(fmt.Sprintf("%d-%d", player1Score, player2Score)),
		WinnerID:  swag.Int64(winnerID),
	}
}

// ClearResult builds a MatchUpdate that removes a reported result.
func ClearResult() MatchUpdate {
	return MatchUpdate{}
}
