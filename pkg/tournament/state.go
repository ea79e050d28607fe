// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament

import (
	"sync"

	"github.com/mitchellh/copystructure"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/scheduler"
)

type Phase int

const (
	PhaseRegistration Phase = iota
	PhaseStarting
	PhaseStarted
	PhasePaused
	PhaseFinalizing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseRegistration:
		return "registration"
	case PhaseStarting:
		return "starting"
	case PhaseStarted:
		return "started"
	case PhasePaused:
		return "paused"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Snapshot is a deep copy of a State.
type Snapshot struct {
	ID             int64                         `json:"id"`
	Format         models.Format                 `json:"-"`
	FormatName     string                        `json:"format"`
	ChannelID      string                        `json:"channelId"`
	BracketURL     string                        `json:"bracketUrl"`
	Remote         models.Tournament             `json:"remote"`
	Participants   map[string]models.Participant `json:"participants"`
	Matches        []int64                       `json:"matches"`
	Notified       []int64                       `json:"notified"`
	RoundAnnounced bool                          `json:"roundAnnounced"`
	Phase          Phase                         `json:"-"`
	PhaseName      string                        `json:"phase"`
}

// State mirrors one tracked tournament. All fields are guarded by mu and no
// method calls out while holding it.
type State struct {
	mu sync.Mutex

	id         int64
	format     models.Format
	channelID  string
	bracketURL string

	remote         models.Tournament
	participants   map[string]models.Participant
	reserved       map[string]struct{}
	matches        map[int64]struct{}
	notified       map[int64]struct{}
	roundAnnounced bool
	phase          Phase
	poller         scheduler.Poller
}

func NewState(remote models.Tournament, format models.Format, channelID, bracketURL string) *State {
	return &State{
		id:           remote.ID,
		format:       format,
		channelID:    channelID,
		bracketURL:   bracketURL,
		remote:       remote,
		participants: map[string]models.Participant{},
		reserved:     map[string]struct{}{},
		matches:      map[int64]struct{}{},
		notified:     map[int64]struct{}{},
		phase:        PhaseRegistration,
	}
}

func (s *State) ID() int64 { return s.id }

func (s *State) ChannelID() string { return s.channelID }

func (s *State) BracketURL() string { return s.bracketURL }

// Format is the declared format, or the remote tournament type when none was declared.
func (s *State) Format() models.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.format == models.FormatDefault {
		return models.FormatFromRemote(s.remote.TournamentType)
	}
	return s.format
}

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// transition moves from one phase to another and reports whether it happened.
func (s *State) transition(from, to Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != from {
		return false
	}
	s.phase = to
	return true
}

func (s *State) Remote() models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

// SetRemote overwrites the local mirror of the provider's tournament.
func (s *State) SetRemote(remote models.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remote = remote
}

// ReserveParticipant claims the registration slot of playerID.
func (s *State) ReserveParticipant(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseRegistration {
		return models.ErrRegistrationClosed
	}
	if _, ok := s.participants[playerID]; ok {
		return models.ErrAlreadyRegistered
	}
	if _, ok := s.reserved[playerID]; ok {
		return models.ErrAlreadyRegistered
	}
	s.reserved[playerID] = struct{}{}
	return nil
}

// ConfirmParticipant turns a reservation, or nothing, into a registration.
func (s *State) ConfirmParticipant(playerID string, p models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, playerID)
	s.participants[playerID] = p
}

func (s *State) ReleaseParticipant(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, playerID)
}

// MergeParticipants adds entrants the provider knows about, keyed by misc.
func (s *State) MergeParticipants(participants []models.Participant) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, p := range participants {
		if p.Misc == "" {
			continue
		}
		if _, ok := s.participants[p.Misc]; !ok {
			added++
		}
		s.participants[p.Misc] = p
	}
	return added
}

func (s *State) ParticipantByPlayer(playerID string) (models.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[playerID]
	return p, ok
}

func (s *State) ParticipantByProviderID(participantID int64) (models.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.ID == participantID {
			return p, true
		}
	}
	return models.Participant{}, false
}

// MarkNotified records a match announcement. It returns false when the match
// was already announced.
func (s *State) MarkNotified(matchID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notified[matchID]; ok {
		return false
	}
	s.notified[matchID] = struct{}{}
	return true
}

func (s *State) IsNotified(matchID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notified[matchID]
	return ok
}

// IndexMatches adds matches to the match to tournament index.
func (s *State) IndexMatches(matches []models.RemoteMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range matches {
		s.matches[m.ID] = struct{}{}
	}
}

func (s *State) HasMatch(matchID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.matches[matchID]
	return ok
}

func (s *State) RoundAnnounced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roundAnnounced
}

func (s *State) SetRoundAnnounced(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roundAnnounced = v
}

// ClaimRoundAnnouncement decides whether the open round robin pairings are
// announced now. A match never announced before starts a new round. A true
// result marks every open match as notified.
func (s *State) ClaimRoundAnnouncement(open []models.RemoteMatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(open) == 0 {
		return false
	}
	for _, m := range open {
		if _, ok := s.notified[m.ID]; !ok {
			s.roundAnnounced = false
			break
		}
	}
	if s.roundAnnounced {
		return false
	}
	for _, m := range open {
		s.notified[m.ID] = struct{}{}
	}
	s.roundAnnounced = true
	return true
}

// AttachPoller stores the poll handle. It returns false when the tournament
// already left the started phase, in which case the caller stops the poller.
func (s *State) AttachPoller(p scheduler.Poller) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseStarted {
		return false
	}
	s.poller = p
	return true
}

// Poller returns the poll handle, nil before start.
func (s *State) Poller() scheduler.Poller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poller
}

// detachPoller moves the tournament to phase and hands back the poller to stop.
func (s *State) detachPoller(phase Phase) scheduler.Poller {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	p := s.poller
	s.poller = nil
	return p
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		ID:             s.id,
		Format:         s.format,
		FormatName:     s.format.String(),
		ChannelID:      s.channelID,
		BracketURL:     s.bracketURL,
		Remote:         s.remote,
		Participants:   s.participants,
		Matches:        keys(s.matches),
		Notified:       keys(s.notified),
		RoundAnnounced: s.roundAnnounced,
		Phase:          s.phase,
		PhaseName:      s.phase.String(),
	}
	copied, err := copystructure.Copy(snap)
	s.mu.Unlock()

	if err != nil {
		// the participant map is plain data, a copy failure means a programming error
		panic(err)
	}
	return copied.(Snapshot)
}

func keys(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
