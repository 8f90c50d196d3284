package services

import (
	"testing"

	"homeswap-server/apperrors"
	"homeswap-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures lifecycle notifications per match id.
type recordingNotifier struct {
	proposed []uint
	accepted []uint
	rejected []uint
}

func (n *recordingNotifier) MatchProposed(match *models.SwapMatch, bidA, bidB *models.SwapBid) {
	n.proposed = append(n.proposed, match.ID)
}

func (n *recordingNotifier) MatchAccepted(match *models.SwapMatch, bidA, bidB *models.SwapBid) {
	n.accepted = append(n.accepted, match.ID)
}

func (n *recordingNotifier) MatchRejected(match *models.SwapMatch, bidA, bidB *models.SwapBid) {
	n.rejected = append(n.rejected, match.ID)
}

type fixture struct {
	store    *MemoryStore
	notifier *recordingNotifier
	svc      *SwapService
	alice    *models.User
	bob      *models.User
}

// newFixture seeds Alice with a home in Amsterdam and Bob with a home
// in Rotterdam, the smallest reciprocal setup.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore()
	notifier := &recordingNotifier{}

	alice := &models.User{FirstName: "Alice", Email: "alice@example.com"}
	bob := &models.User{FirstName: "Bob", Email: "bob@example.com"}
	store.AddUser(alice)
	store.AddUser(bob)
	store.AddHome(&models.Home{OwnerID: alice.ID, Location: "Amsterdam"})
	store.AddHome(&models.Home{OwnerID: bob.ID, Location: "Rotterdam"})

	return &fixture{
		store:    store,
		notifier: notifier,
		svc:      NewSwapService(store, notifier),
		alice:    alice,
		bob:      bob,
	}
}

func TestSubmitBidValidation(t *testing.T) {
	f := newFixture(t)

	t.Run("start must be before end", func(t *testing.T) {
		_, err := f.svc.SubmitBid(f.alice.ID, "Rotterdam", day("2030-06-10"), day("2030-06-01"))
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
	})

	t.Run("start must be in the future", func(t *testing.T) {
		_, err := f.svc.SubmitBid(f.alice.ID, "Rotterdam", day("2020-06-01"), day("2030-06-10"))
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
	})

	t.Run("desired location is required", func(t *testing.T) {
		_, err := f.svc.SubmitBid(f.alice.ID, "", day("2030-06-01"), day("2030-06-10"))
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
	})

	t.Run("user must own at least one home", func(t *testing.T) {
		homeless := &models.User{FirstName: "Carol"}
		f.store.AddUser(homeless)
		_, err := f.svc.SubmitBid(homeless.ID, "Rotterdam", day("2030-06-01"), day("2030-06-10"))
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
		assert.Contains(t, err.Error(), "at least one home")
	})
}

func TestSubmitBidProposesReciprocalMatch(t *testing.T) {
	f := newFixture(t)

	aliceBid, err := f.svc.SubmitBid(f.alice.ID, "Rotterdam", day("2030-06-01"), day("2030-06-10"))
	require.NoError(t, err)
	assert.Equal(t, models.SwapBidStatusPending, aliceBid.Status)
	assert.Empty(t, f.notifier.proposed)

	bobBid, err := f.svc.SubmitBid(f.bob.ID, "Amsterdam", day("2030-06-05"), day("2030-06-15"))
	require.NoError(t, err)

	// The second submission pairs the two bids.
	assert.Equal(t, models.SwapBidStatusMatched, bobBid.Status)

	storedAlice, _ := f.store.GetBid(aliceBid.ID)
	assert.Equal(t, models.SwapBidStatusMatched, storedAlice.Status)

	matches, err := f.store.MatchesByUser(f.alice.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	match := matches[0]
	assert.Equal(t, models.SwapMatchStatusProposed, match.Status)
	assert.True(t, match.HasBid(aliceBid.ID))
	assert.True(t, match.HasBid(bobBid.ID))
	assert.False(t, match.MatchDate.IsZero())

	assert.Equal(t, []uint{match.ID}, f.notifier.proposed)
}

func TestCreateSwapMatchEitherDirection(t *testing.T) {
	f := newFixture(t)

	aliceBid := &models.SwapBid{UserID: f.alice.ID, DesiredLocation: "Rotterdam",
		StartDate: day("2030-06-01"), EndDate: day("2030-06-10"), Status: models.SwapBidStatusPending}
	bobBid := &models.SwapBid{UserID: f.bob.ID, DesiredLocation: "Amsterdam",
		StartDate: day("2030-06-05"), EndDate: day("2030-06-15"), Status: models.SwapBidStatusPending}
	require.NoError(t, f.store.CreateBid(aliceBid))
	require.NoError(t, f.store.CreateBid(bobBid))

	match, err := f.svc.CreateSwapMatch(aliceBid)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.True(t, match.HasBid(aliceBid.ID))
	assert.True(t, match.HasBid(bobBid.ID))

	storedA, _ := f.store.GetBid(aliceBid.ID)
	storedB, _ := f.store.GetBid(bobBid.ID)
	assert.Equal(t, models.SwapBidStatusMatched, storedA.Status)
	assert.Equal(t, models.SwapBidStatusMatched, storedB.Status)

	// Already matched bids produce no second match.
	again, err := f.svc.CreateSwapMatch(aliceBid)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestCreateSwapMatchNoReciprocalHome(t *testing.T) {
	f := newFixture(t)

	// Bob desires Paris; Alice has no home there, so the reverse check
	// fails for the only candidate.
	bobBid := &models.SwapBid{UserID: f.bob.ID, DesiredLocation: "Paris",
		StartDate: day("2030-06-05"), EndDate: day("2030-06-15"), Status: models.SwapBidStatusPending}
	require.NoError(t, f.store.CreateBid(bobBid))

	aliceBid := &models.SwapBid{UserID: f.alice.ID, DesiredLocation: "Rotterdam",
		StartDate: day("2030-06-01"), EndDate: day("2030-06-10"), Status: models.SwapBidStatusPending}
	require.NoError(t, f.store.CreateBid(aliceBid))

	match, err := f.svc.CreateSwapMatch(aliceBid)
	require.NoError(t, err)
	assert.Nil(t, match)

	// No writes happened: both bids stay pending and no match exists.
	storedA, _ := f.store.GetBid(aliceBid.ID)
	storedB, _ := f.store.GetBid(bobBid.ID)
	assert.Equal(t, models.SwapBidStatusPending, storedA.Status)
	assert.Equal(t, models.SwapBidStatusPending, storedB.Status)
	matches, _ := f.store.MatchesByUser(f.alice.ID)
	assert.Empty(t, matches)
	assert.Empty(t, f.notifier.proposed)
}

// raceStore simulates a concurrent writer claiming the first candidate
// between the read and the conditional write. The engine must skip the
// lost candidate and pair with the next one instead of failing.
type raceStore struct {
	*MemoryStore
	claimBidID uint
	claimed    bool
}

func (s *raceStore) PendingBidsByOwners(ownerIDs []uint, excludeOwnerID uint) ([]models.SwapBid, error) {
	bids, err := s.MemoryStore.PendingBidsByOwners(ownerIDs, excludeOwnerID)
	if !s.claimed {
		s.claimed = true
		s.SetBidStatus(s.claimBidID, models.SwapBidStatusMatched)
	}
	return bids, err
}

func TestCreateSwapMatchSkipsConcurrentlyClaimedCandidate(t *testing.T) {
	f := newFixture(t)

	carol := &models.User{FirstName: "Carol"}
	f.store.AddUser(carol)
	f.store.AddHome(&models.Home{OwnerID: carol.ID, Location: "Rotterdam"})

	bobBid := &models.SwapBid{UserID: f.bob.ID, DesiredLocation: "Amsterdam",
		StartDate: day("2030-06-05"), EndDate: day("2030-06-15"), Status: models.SwapBidStatusPending}
	carolBid := &models.SwapBid{UserID: carol.ID, DesiredLocation: "Amsterdam",
		StartDate: day("2030-06-03"), EndDate: day("2030-06-12"), Status: models.SwapBidStatusPending}
	require.NoError(t, f.store.CreateBid(bobBid))
	require.NoError(t, f.store.CreateBid(carolBid))

	aliceBid := &models.SwapBid{UserID: f.alice.ID, DesiredLocation: "Rotterdam",
		StartDate: day("2030-06-01"), EndDate: day("2030-06-10"), Status: models.SwapBidStatusPending}
	require.NoError(t, f.store.CreateBid(aliceBid))

	race := &raceStore{MemoryStore: f.store, claimBidID: bobBid.ID}
	svc := NewSwapService(race, f.notifier)

	match, err := svc.CreateSwapMatch(aliceBid)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.True(t, match.HasBid(carolBid.ID), "engine should fall through to the unclaimed candidate")
	assert.False(t, match.HasBid(bobBid.ID))
}

func TestAcceptMatchLifecycle(t *testing.T) {
	f := newFixture(t)

	aliceBid, err := f.svc.SubmitBid(f.alice.ID, "Rotterdam", day("2030-06-01"), day("2030-06-10"))
	require.NoError(t, err)
	bobBid, err := f.svc.SubmitBid(f.bob.ID, "Amsterdam", day("2030-06-05"), day("2030-06-15"))
	require.NoError(t, err)

	matches, _ := f.store.MatchesByUser(f.alice.ID)
	require.Len(t, matches, 1)
	matchID := matches[0].ID

	t.Run("a stranger cannot accept", func(t *testing.T) {
		stranger := &models.User{FirstName: "Mallory"}
		f.store.AddUser(stranger)
		_, err := f.svc.AcceptMatch(matchID, stranger.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

		// State unchanged.
		match, _ := f.store.GetMatch(matchID)
		assert.Equal(t, models.SwapMatchStatusProposed, match.Status)
	})

	t.Run("either party accepts for both", func(t *testing.T) {
		match, err := f.svc.AcceptMatch(matchID, f.alice.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SwapMatchStatusAccepted, match.Status)

		storedA, _ := f.store.GetBid(aliceBid.ID)
		storedB, _ := f.store.GetBid(bobBid.ID)
		assert.Equal(t, models.SwapBidStatusAccepted, storedA.Status)
		assert.Equal(t, models.SwapBidStatusAccepted, storedB.Status)
		assert.Equal(t, []uint{matchID}, f.notifier.accepted)
	})

	t.Run("second accept is an invalid state, not a duplicate transition", func(t *testing.T) {
		_, err := f.svc.AcceptMatch(matchID, f.bob.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
		assert.Contains(t, err.Error(), "not in a proposed state")
		assert.Len(t, f.notifier.accepted, 1)
	})
}

func TestRejectMatchRevertsBidsToPending(t *testing.T) {
	f := newFixture(t)

	aliceBid, err := f.svc.SubmitBid(f.alice.ID, "Rotterdam", day("2030-06-01"), day("2030-06-10"))
	require.NoError(t, err)
	bobBid, err := f.svc.SubmitBid(f.bob.ID, "Amsterdam", day("2030-06-05"), day("2030-06-15"))
	require.NoError(t, err)

	matches, _ := f.store.MatchesByUser(f.bob.ID)
	require.Len(t, matches, 1)
	matchID := matches[0].ID

	match, err := f.svc.RejectMatch(matchID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapMatchStatusRejected, match.Status)

	// Rejection frees both bids for future matching, unlike acceptance.
	storedA, _ := f.store.GetBid(aliceBid.ID)
	storedB, _ := f.store.GetBid(bobBid.ID)
	assert.Equal(t, models.SwapBidStatusPending, storedA.Status)
	assert.Equal(t, models.SwapBidStatusPending, storedB.Status)
	assert.Equal(t, []uint{matchID}, f.notifier.rejected)

	t.Run("rejected is terminal", func(t *testing.T) {
		_, err := f.svc.AcceptMatch(matchID, f.alice.ID)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidState, apperrors.CodeOf(err))
	})
}

func TestTransitionUnknownMatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AcceptMatch(9999, f.alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = f.svc.RejectMatch(9999, f.alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestGetMatchAuthorization(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitBid(f.alice.ID, "Rotterdam", day("2030-06-01"), day("2030-06-10"))
	require.NoError(t, err)
	_, err = f.svc.SubmitBid(f.bob.ID, "Amsterdam", day("2030-06-05"), day("2030-06-15"))
	require.NoError(t, err)

	matches, _ := f.store.MatchesByUser(f.alice.ID)
	require.Len(t, matches, 1)
	matchID := matches[0].ID

	match, err := f.svc.GetMatch(matchID, f.alice.ID)
	require.NoError(t, err)
	require.NotNil(t, match.BidA)
	require.NotNil(t, match.BidB)

	stranger := &models.User{FirstName: "Mallory"}
	f.store.AddUser(stranger)
	_, err = f.svc.GetMatch(matchID, stranger.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}
