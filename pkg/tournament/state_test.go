// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament_test

import (
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-core-ranked/pkg/constants"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
	"github.com/AccelByte/extend-core-ranked/pkg/testsetup"
	"github.com/AccelByte/extend-core-ranked/pkg/tournament"
)

func newState(id int64, channelID string) *tournament.State {
	remote := models.Tournament{ID: id, Name: "cup", State: constants.RemoteStatePending}
	return tournament.NewState(remote, models.FormatSingleElimination, channelID, "https://challonge.com/cup")
}

func TestState_ReserveParticipant(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := newState(1, "c1")
	g.Expect(state.ReserveParticipant("alice")).To(Succeed())
	g.Expect(state.ReserveParticipant("alice")).To(MatchError(models.ErrAlreadyRegistered))

	state.ReleaseParticipant("alice")
	g.Expect(state.ReserveParticipant("alice")).To(Succeed())
	state.ConfirmParticipant("alice", models.Participant{ID: 11, Name: "Alice", Misc: "alice"})
	g.Expect(state.ReserveParticipant("alice")).To(MatchError(models.ErrAlreadyRegistered))

	p, ok := state.ParticipantByProviderID(11)
	g.Expect(ok).To(BeTrue())
	g.Expect(p.Misc).To(Equal("alice"))
	_, ok = state.ParticipantByPlayer("bob")
	g.Expect(ok).To(BeFalse())
}

func TestState_ConcurrentReserveAdmitsOne(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := newState(1, "c1")
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if state.ReserveParticipant("alice") == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	g.Expect(wins.Load()).To(Equal(int32(1)))
}

func TestState_MarkNotifiedOnce(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := newState(1, "c1")
	g.Expect(state.MarkNotified(7)).To(BeTrue())
	g.Expect(state.MarkNotified(7)).To(BeFalse())
	g.Expect(state.IsNotified(7)).To(BeTrue())
	g.Expect(state.IsNotified(8)).To(BeFalse())
}

func TestState_ClaimRoundAnnouncement(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := newState(1, "c1")
	first := []models.RemoteMatch{remoteMatch(1, constants.RemoteStateOpen), remoteMatch(2, constants.RemoteStateOpen)}

	g.Expect(state.ClaimRoundAnnouncement(nil)).To(BeFalse())
	g.Expect(state.ClaimRoundAnnouncement(first)).To(BeTrue())
	g.Expect(state.RoundAnnounced()).To(BeTrue())
	g.Expect(state.ClaimRoundAnnouncement(first)).To(BeFalse())
	g.Expect(state.ClaimRoundAnnouncement(first[1:])).To(BeFalse())

	next := append(first[1:], remoteMatch(3, constants.RemoteStateOpen))
	g.Expect(state.ClaimRoundAnnouncement(next)).To(BeTrue())
	g.Expect(state.IsNotified(3)).To(BeTrue())

	state.SetRoundAnnounced(false)
	g.Expect(state.ClaimRoundAnnouncement(next)).To(BeTrue())
}

func TestState_SnapshotIsDeepCopy(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := newState(1, "c1")
	state.ConfirmParticipant("alice", models.Participant{ID: 11, Name: "Alice", Misc: "alice"})
	state.IndexMatches([]models.RemoteMatch{remoteMatch(5, constants.RemoteStateOpen)})

	snap := state.Snapshot()
	snap.Participants["mallory"] = models.Participant{ID: 99}
	snap.Matches[0] = 42

	_, ok := state.ParticipantByPlayer("mallory")
	g.Expect(ok).To(BeFalse())
	g.Expect(state.HasMatch(5)).To(BeTrue())
	g.Expect(state.HasMatch(42)).To(BeFalse())
	g.Expect(snap.PhaseName).To(Equal("registration"))
	g.Expect(snap.FormatName).To(Equal("single_elimination"))
}

func TestState_MergeParticipantsSkipsUnlinked(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := newState(1, "c1")
	state.ConfirmParticipant("alice", models.Participant{ID: 11, Misc: "alice"})
	added := state.MergeParticipants([]models.Participant{
		{ID: 11, Misc: "alice"},
		{ID: 12, Misc: "bob"},
		{ID: 13, Name: "walk-in"},
	})
	g.Expect(added).To(Equal(1))
	_, ok := state.ParticipantByProviderID(13)
	g.Expect(ok).To(BeFalse())
}

func TestRegistry_CreateAndFind(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	registry := tournament.NewRegistry(testsetup.NewMetrics())
	first := newState(1, "c1")
	g.Expect(registry.Create(first)).To(Succeed())
	g.Expect(registry.Create(newState(1, "c2"))).To(MatchError(models.ErrTournamentExists))
	g.Expect(registry.Create(newState(2, "c1"))).To(MatchError(models.ErrTournamentExists))
	g.Expect(registry.Len()).To(Equal(1))

	// the rejected id 2 must not linger
	_, ok := registry.Get(2)
	g.Expect(ok).To(BeFalse())

	found, err := registry.FindByChannel("c1")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeIdenticalTo(first))
	_, err = registry.FindByChannel("c9")
	g.Expect(err).To(MatchError(models.ErrTournamentNotFound))

	first.IndexMatches([]models.RemoteMatch{remoteMatch(77, constants.RemoteStateOpen)})
	found, err = registry.FindByMatch(77)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found.ID()).To(Equal(int64(1)))
	_, err = registry.FindByMatch(78)
	g.Expect(err).To(MatchError(models.ErrMatchNotFound))
}

func TestRegistry_RemoveFreesChannel(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	registry := tournament.NewRegistry(testsetup.NewMetrics())
	first := newState(1, "c1")
	g.Expect(registry.Create(first)).To(Succeed())
	g.Expect(registry.Create(newState(2, "c2"))).To(Succeed())

	registry.Remove(first)
	registry.Remove(first)
	g.Expect(registry.Len()).To(Equal(1))

	g.Expect(registry.Create(newState(3, "c1"))).To(Succeed())
	ids := []int64{}
	for _, snap := range registry.List() {
		ids = append(ids, snap.ID)
	}
	g.Expect(ids).To(Equal([]int64{2, 3}))
}
