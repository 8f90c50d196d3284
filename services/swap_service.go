package services

import (
	"errors"
	"log"
	"time"

	"homeswap-server/apperrors"
	"homeswap-server/models"

	"gorm.io/gorm"
)

// MatchNotifier delivers best-effort notifications for match lifecycle
// events. Delivery failures are logged by the implementation and never
// fail the owning operation.
type MatchNotifier interface {
	MatchProposed(match *models.SwapMatch, bidA, bidB *models.SwapBid)
	MatchAccepted(match *models.SwapMatch, bidA, bidB *models.SwapBid)
	MatchRejected(match *models.SwapMatch, bidA, bidB *models.SwapBid)
}

// SwapService is the matching engine: bid intake, greedy match
// discovery, and the accept/reject lifecycle. The store and notifier
// are injected so tests can run against in-memory fakes.
type SwapService struct {
	store    SwapStore
	notifier MatchNotifier
	now      func() time.Time
}

func NewSwapService(store SwapStore, notifier MatchNotifier) *SwapService {
	return &SwapService{store: store, notifier: notifier, now: time.Now}
}

// SubmitBid validates and persists a pending bid, then synchronously
// tries to propose a match. The bid is returned regardless of whether a
// match was created; match creation is a side effect.
func (s *SwapService) SubmitBid(userID uint, desiredLocation string, startDate, endDate time.Time) (*models.SwapBid, error) {
	if desiredLocation == "" {
		return nil, apperrors.InvalidInput("desired location is required")
	}
	if !startDate.Before(endDate) {
		return nil, apperrors.InvalidInput("start date must be before end date")
	}
	if !startDate.After(s.now()) {
		return nil, apperrors.InvalidInput("start date must be in the future")
	}

	homes, err := s.store.HomesByOwner(userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load homes", err)
	}
	if len(homes) == 0 {
		return nil, apperrors.InvalidInput("must have at least one home listed")
	}

	bid := &models.SwapBid{
		UserID:          userID,
		DesiredLocation: desiredLocation,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          models.SwapBidStatusPending,
	}
	if err := s.store.CreateBid(bid); err != nil {
		return nil, apperrors.Internal("failed to save bid", err)
	}

	if _, err := s.CreateSwapMatch(bid); err != nil {
		// Matching is best-effort at submission time; the bid stays
		// pending and remains eligible for future submissions.
		log.Printf("match creation for bid %d failed: %v", bid.ID, err)
	}

	return bid, nil
}

// CreateSwapMatch runs the greedy first-match-wins pairing for newBid.
// A candidate is eligible when the candidate's owner has a home in
// newBid's desired location (forward check) and newBid's owner has a
// home in the candidate's desired location (reverse check). Returns
// (nil, nil) when no candidate satisfies both directions; nothing is
// persisted in that case. A candidate lost to a concurrent writer is
// skipped, not an error.
func (s *SwapService) CreateSwapMatch(newBid *models.SwapBid) (*models.SwapMatch, error) {
	ownHomes, err := s.store.HomesByOwner(newBid.UserID)
	if err != nil {
		return nil, apperrors.Internal("failed to load homes", err)
	}
	if len(ownHomes) == 0 {
		return nil, nil
	}

	candidates, err := FindMatchingBids(s.store, newBid)
	if err != nil {
		return nil, apperrors.Internal("failed to find candidate bids", err)
	}

	for i := range candidates {
		candidate := &candidates[i]

		forward, err := s.store.OwnerHasHomeIn(candidate.UserID, newBid.DesiredLocation)
		if err != nil {
			return nil, apperrors.Internal("failed to check candidate homes", err)
		}
		reverse, err := s.store.OwnerHasHomeIn(newBid.UserID, candidate.DesiredLocation)
		if err != nil {
			return nil, apperrors.Internal("failed to check reciprocal homes", err)
		}
		if !forward || !reverse {
			continue
		}

		match := &models.SwapMatch{
			BidAID:    newBid.ID,
			BidBID:    candidate.ID,
			Status:    models.SwapMatchStatusProposed,
			MatchDate: s.now(),
		}
		err = s.store.CreateMatchAndMarkBids(match)
		if errors.Is(err, ErrStaleStatus) {
			// A concurrent request claimed one of the bids first; try
			// the next candidate.
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("failed to persist match", err)
		}

		newBid.Status = models.SwapBidStatusMatched
		s.notify(func(n MatchNotifier) { n.MatchProposed(match, newBid, candidate) })
		return match, nil
	}

	return nil, nil
}

// AcceptMatch finalizes a proposed match. Either party may accept;
// acceptance is modeled as instantaneous mutual agreement, so both bids
// become accepted in the same transition. A second confirmation step
// was considered and deliberately not added.
func (s *SwapService) AcceptMatch(matchID uint, userID uint) (*models.SwapMatch, error) {
	return s.transition(matchID, userID, models.SwapMatchStatusAccepted, models.SwapBidStatusAccepted)
}

// RejectMatch declines a proposed match and reverts both bids to
// pending so they stay eligible for future matching. The asymmetry with
// acceptance (accepted vs pending bids) is deliberate.
func (s *SwapService) RejectMatch(matchID uint, userID uint) (*models.SwapMatch, error) {
	return s.transition(matchID, userID, models.SwapMatchStatusRejected, models.SwapBidStatusPending)
}

func (s *SwapService) transition(matchID, userID uint, matchStatus models.SwapMatchStatus, bidStatus models.SwapBidStatus) (*models.SwapMatch, error) {
	match, err := s.store.GetMatch(matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("match not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load match", err)
	}

	// Party membership is resolved through the bids; the match itself
	// holds only bid ids.
	bidA, err := s.store.GetBid(match.BidAID)
	if err != nil {
		return nil, apperrors.Internal("failed to load bid", err)
	}
	bidB, err := s.store.GetBid(match.BidBID)
	if err != nil {
		return nil, apperrors.Internal("failed to load bid", err)
	}
	if bidA.UserID != userID && bidB.UserID != userID {
		return nil, apperrors.Forbidden("you are not part of this match")
	}

	if match.Status != models.SwapMatchStatusProposed {
		return nil, apperrors.InvalidState("match is not in a proposed state")
	}

	err = s.store.TransitionMatch(matchID, matchStatus, bidStatus)
	if errors.Is(err, ErrStaleStatus) {
		return nil, apperrors.InvalidState("match is not in a proposed state")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to update match", err)
	}

	match.Status = matchStatus
	bidA.Status = bidStatus
	bidB.Status = bidStatus

	if matchStatus == models.SwapMatchStatusAccepted {
		s.notify(func(n MatchNotifier) { n.MatchAccepted(match, bidA, bidB) })
	} else {
		s.notify(func(n MatchNotifier) { n.MatchRejected(match, bidA, bidB) })
	}
	return match, nil
}

// BidsForUser lists a user's bids, oldest first.
func (s *SwapService) BidsForUser(userID uint) ([]models.SwapBid, error) {
	bids, err := s.store.BidsByUser(userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load bids", err)
	}
	return bids, nil
}

// MatchesForUser lists every match involving one of the user's bids.
func (s *SwapService) MatchesForUser(userID uint) ([]models.SwapMatch, error) {
	matches, err := s.store.MatchesByUser(userID)
	if err != nil {
		return nil, apperrors.Internal("failed to load matches", err)
	}
	return matches, nil
}

// GetMatch returns a match the user is a party to.
func (s *SwapService) GetMatch(matchID uint, userID uint) (*models.SwapMatch, error) {
	match, err := s.store.GetMatch(matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("match not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load match", err)
	}
	bidA, err := s.store.GetBid(match.BidAID)
	if err != nil {
		return nil, apperrors.Internal("failed to load bid", err)
	}
	bidB, err := s.store.GetBid(match.BidBID)
	if err != nil {
		return nil, apperrors.Internal("failed to load bid", err)
	}
	if bidA.UserID != userID && bidB.UserID != userID {
		return nil, apperrors.Forbidden("you are not part of this match")
	}
	match.BidA = bidA
	match.BidB = bidB
	return match, nil
}

func (s *SwapService) notify(fn func(MatchNotifier)) {
	if s.notifier == nil {
		return
	}
	fn(s.notifier)
}
