package services

import (
	"sort"
	"strings"
	"sync"

	"homeswap-server/models"

	"gorm.io/gorm"
)

// MemoryStore is an in-memory SwapStore used by tests and local
// development. It mirrors the conditional-write semantics of the gorm
// store, including ErrStaleStatus on lost status transitions.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[uint]models.User
	homes   map[uint]models.Home
	bids    map[uint]models.SwapBid
	matches map[uint]models.SwapMatch
	nextID  uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uint]models.User),
		homes:   make(map[uint]models.Home),
		bids:    make(map[uint]models.SwapBid),
		matches: make(map[uint]models.SwapMatch),
		nextID:  1,
	}
}

func (s *MemoryStore) nextIDLocked() uint {
	id := s.nextID
	s.nextID++
	return id
}

// AddUser stores a user, assigning an id when missing.
func (s *MemoryStore) AddUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextIDLocked()
	}
	s.users[user.ID] = *user
}

// AddHome stores a home, assigning an id when missing.
func (s *MemoryStore) AddHome(home *models.Home) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if home.ID == 0 {
		home.ID = s.nextIDLocked()
	}
	s.homes[home.ID] = *home
}

// SetBidStatus force-writes a bid status, bypassing transition guards.
func (s *MemoryStore) SetBidStatus(bidID uint, status models.SwapBidStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bid, ok := s.bids[bidID]; ok {
		bid.Status = status
		s.bids[bidID] = bid
	}
}

func (s *MemoryStore) GetBid(id uint) (*models.SwapBid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &bid, nil
}

func (s *MemoryStore) GetMatch(id uint) (*models.SwapMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &match, nil
}

func (s *MemoryStore) HomesByOwner(ownerID uint) ([]models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var homes []models.Home
	for _, home := range s.homes {
		if home.OwnerID == ownerID {
			homes = append(homes, home)
		}
	}
	sort.Slice(homes, func(i, j int) bool { return homes[i].ID < homes[j].ID })
	return homes, nil
}

func (s *MemoryStore) HomesByLocation(location string) ([]models.Home, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var homes []models.Home
	for _, home := range s.homes {
		if strings.EqualFold(home.Location, location) {
			homes = append(homes, home)
		}
	}
	sort.Slice(homes, func(i, j int) bool { return homes[i].ID < homes[j].ID })
	return homes, nil
}

func (s *MemoryStore) OwnerHasHomeIn(ownerID uint, location string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, home := range s.homes {
		if home.OwnerID == ownerID && strings.EqualFold(home.Location, location) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) BidsByUser(userID uint) ([]models.SwapBid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bids []models.SwapBid
	for _, bid := range s.bids {
		if bid.UserID == userID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID < bids[j].ID })
	return bids, nil
}

func (s *MemoryStore) PendingBidsByOwners(ownerIDs []uint, excludeOwnerID uint) ([]models.SwapBid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owners := make(map[uint]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var bids []models.SwapBid
	for _, bid := range s.bids {
		if bid.Status == models.SwapBidStatusPending && owners[bid.UserID] && bid.UserID != excludeOwnerID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].ID < bids[j].ID })
	return bids, nil
}

func (s *MemoryStore) MatchesByUser(userID uint) ([]models.SwapMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.SwapMatch
	for _, match := range s.matches {
		bidA, okA := s.bids[match.BidAID]
		bidB, okB := s.bids[match.BidBID]
		if (okA && bidA.UserID == userID) || (okB && bidB.UserID == userID) {
			matches = append(matches, match)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (s *MemoryStore) CreateBid(bid *models.SwapBid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bid.ID == 0 {
		bid.ID = s.nextIDLocked()
	}
	if bid.Status == "" {
		bid.Status = models.SwapBidStatusPending
	}
	s.bids[bid.ID] = *bid
	return nil
}

func (s *MemoryStore) CreateMatchAndMarkBids(match *models.SwapMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, bidID := range []uint{match.BidAID, match.BidBID} {
		bid, ok := s.bids[bidID]
		if !ok || bid.Status != models.SwapBidStatusPending {
			return ErrStaleStatus
		}
	}
	for _, bidID := range []uint{match.BidAID, match.BidBID} {
		bid := s.bids[bidID]
		bid.Status = models.SwapBidStatusMatched
		s.bids[bidID] = bid
	}

	if match.ID == 0 {
		match.ID = s.nextIDLocked()
	}
	s.matches[match.ID] = *match
	return nil
}

func (s *MemoryStore) TransitionMatch(matchID uint, matchStatus models.SwapMatchStatus, bidStatus models.SwapBidStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok || match.Status != models.SwapMatchStatusProposed {
		return ErrStaleStatus
	}
	for _, bidID := range []uint{match.BidAID, match.BidBID} {
		bid, ok := s.bids[bidID]
		if !ok || bid.Status != models.SwapBidStatusMatched {
			return ErrStaleStatus
		}
	}

	match.Status = matchStatus
	s.matches[matchID] = match
	for _, bidID := range []uint{match.BidAID, match.BidBID} {
		bid := s.bids[bidID]
		bid.Status = bidStatus
		s.bids[bidID] = bid
	}
	return nil
}
