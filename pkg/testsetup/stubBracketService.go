// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-core-ranked/pkg/bracket"
	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// StubBracketService is an in-memory bracket provider.
type StubBracketService struct {
	mu           sync.Mutex
	nextID       int64
	tournaments  map[int64]models.Tournament
	participants map[int64][]models.Participant
	matches      map[int64][]models.RemoteMatch
	errors       map[string]error
	calls        map[string]int
}

func NewStubBracketService() *StubBracketService {
	return &StubBracketService{
		nextID:       1000,
		tournaments:  map[int64]models.Tournament{},
		participants: map[int64][]models.Participant{},
		matches:      map[int64][]models.RemoteMatch{},
		errors:       map[string]error{},
		calls:        map[string]int{},
	}
}

// FailOn makes every call of operation return err until cleared with a nil err.
func (s *StubBracketService) FailOn(operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errors, operation)
		return
	}
	s.errors[operation] = err
}

func (s *StubBracketService) Calls(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[operation]
}

func (s *StubBracketService) SetTournament(t models.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = t
}

func (s *StubBracketService) SetParticipants(tournamentID int64, participants []models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[tournamentID] = append([]models.Participant(nil), participants...)
}

func (s *StubBracketService) SetMatches(tournamentID int64, matches []models.RemoteMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[tournamentID] = append([]models.RemoteMatch(nil), matches...)
}

func (s *StubBracketService) Match(tournamentID, matchID int64) (models.RemoteMatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches[tournamentID] {
		if m.ID == matchID {
			return m, true
		}
	}
	return models.RemoteMatch{}, false
}

func (s *StubBracketService) begin(operation string) error {
	s.calls[operation]++
	return s.errors[operation]
}

func (s *StubBracketService) CreateTournament(_ context.Context, params bracket.CreateTournamentParams) (models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("createTournament"); err != nil {
		return models.Tournament{}, err
	}
	s.nextID++
	t := models.Tournament{
		ID:             s.nextID,
		Name:           params.Name,
		URL:            params.URL,
		TournamentType: params.Format.RemoteType(),
		State:          constants.RemoteStatePending,
	}
	s.tournaments[t.ID] = t
	return t, nil
}

func (s *StubBracketService) GetTournament(_ context.Context, tournamentID int64) (models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("getTournament"); err != nil {
		return models.Tournament{}, err
	}
	t, ok := s.tournaments[tournamentID]
	if !ok {
		return models.Tournament{}, &models.CollaboratorError{Service: "stub", Operation: "getTournament", StatusCode: 404}
	}
	t.ParticipantsCount = len(s.participants[tournamentID])
	return t, nil
}

func (s *StubBracketService) StartTournament(_ context.Context, tournamentID int64) (models.Tournament, error) {
	return s.setState("startTournament", tournamentID, constants.RemoteStateUnderway)
}

func (s *StubBracketService) FinalizeTournament(_ context.Context, tournamentID int64) (models.Tournament, error) {
	return s.setState("finalizeTournament", tournamentID, constants.RemoteStateComplete)
}

func (s *StubBracketService) setState(operation string, tournamentID int64, state string) (models.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(operation); err != nil {
		return models.Tournament{}, err
	}
	t := s.tournaments[tournamentID]
	t.ID = tournamentID
	t.State = state
	s.tournaments[tournamentID] = t
	return t, nil
}

func (s *StubBracketService) AddParticipant(_ context.Context, tournamentID int64, params bracket.ParticipantParams) (models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("addParticipant"); err != nil {
		return models.Participant{}, err
	}
	s.nextID++
	p := models.Participant{ID: s.nextID, TournamentID: tournamentID, Name: params.Name, Misc: params.Misc}
	s.participants[tournamentID] = append(s.participants[tournamentID], p)
	return p, nil
}

func (s *StubBracketService) GetParticipants(_ context.Context, tournamentID int64) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("getParticipants"); err != nil {
		return nil, err
	}
	return append([]models.Participant(nil), s.participants[tournamentID]...), nil
}

func (s *StubBracketService) GetMatches(_ context.Context, tournamentID int64, filter bracket.MatchFilter) ([]models.RemoteMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("getMatches"); err != nil {
		return nil, err
	}
	var out []models.RemoteMatch
	for _, m := range s.matches[tournamentID] {
		if filter.State != "" && m.State != filter.State {
			continue
		}
		if filter.ParticipantID != 0 && m.Player1ID != filter.ParticipantID && m.Player2ID != filter.ParticipantID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *StubBracketService) GetMatch(_ context.Context, tournamentID int64, matchID int64) (models.RemoteMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("getMatch"); err != nil {
		return models.RemoteMatch{}, err
	}
	for _, m := range s.matches[tournamentID] {
		if m.ID == matchID {
			return m, nil
		}
	}
	return models.RemoteMatch{}, &models.CollaboratorError{Service: "stub", Operation: "getMatch", StatusCode: 404}
}

func (s *StubBracketService) UpdateMatch(_ context.Context, tournamentID int64, matchID int64, update bracket.MatchUpdate) (models.RemoteMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("updateMatch"); err != nil {
		return models.RemoteMatch{}, err
	}
	matches := s.matches[tournamentID]
	for i, m := range matches {
		if m.ID != matchID {
			continue
		}
		m.ScoresCsv = ""
		if update.ScoresCsv != nil {
			m.ScoresCsv = *update.ScoresCsv
		}
		m.WinnerID, m.LoserID = 0, 0
		m.State = constants.RemoteStateOpen
		if update.WinnerID != nil {
			m.WinnerID = *update.WinnerID
			m.LoserID = m.Player1ID
			if m.WinnerID == m.Player1ID {
				m.LoserID = m.Player2ID
			}
			m.State = constants.RemoteStateComplete
		}
		matches[i] = m
		return m, nil
	}
	return models.RemoteMatch{}, &models.CollaboratorError{Service: "stub", Operation: "updateMatch", StatusCode: 404}
}

func (s *StubBracketService) RandomizeSeeding(_ context.Context, tournamentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begin("randomizeSeeding")
}
