package services

import (
	"errors"

	"homeswap-server/models"

	"gorm.io/gorm"
)

// ErrStaleStatus is returned by the conditional-write operations when a
// concurrent request already transitioned one of the rows. The caller
// either moves on to another candidate (match creation) or surfaces an
// invalid-state error (lifecycle transitions).
var ErrStaleStatus = errors.New("row status changed by a concurrent writer")

// SwapStore is the persistence handle for the matching engine. Queries
// are explicit so data-access costs stay visible; the multi-row status
// flips run inside a transaction with the expected prior status as a
// write precondition.
type SwapStore interface {
	GetBid(id uint) (*models.SwapBid, error)
	GetMatch(id uint) (*models.SwapMatch, error)

	HomesByOwner(ownerID uint) ([]models.Home, error)
	HomesByLocation(location string) ([]models.Home, error)
	OwnerHasHomeIn(ownerID uint, location string) (bool, error)

	BidsByUser(userID uint) ([]models.SwapBid, error)
	PendingBidsByOwners(ownerIDs []uint, excludeOwnerID uint) ([]models.SwapBid, error)
	MatchesByUser(userID uint) ([]models.SwapMatch, error)

	CreateBid(bid *models.SwapBid) error

	// CreateMatchAndMarkBids flips both bids pending -> matched and
	// inserts the proposed match in one transaction. Returns
	// ErrStaleStatus if either bid is no longer pending.
	CreateMatchAndMarkBids(match *models.SwapMatch) error

	// TransitionMatch moves a proposed match to matchStatus and both
	// referenced bids from matched to bidStatus in one transaction.
	// Returns ErrStaleStatus if the match is no longer proposed.
	TransitionMatch(matchID uint, matchStatus models.SwapMatchStatus, bidStatus models.SwapBidStatus) error
}

// GormSwapStore implements SwapStore on a gorm handle. It is
// constructed with the handle rather than reading a package global so
// tests can substitute an in-memory store.
type GormSwapStore struct {
	db *gorm.DB
}

func NewGormSwapStore(db *gorm.DB) *GormSwapStore {
	return &GormSwapStore{db: db}
}

func (s *GormSwapStore) GetBid(id uint) (*models.SwapBid, error) {
	var bid models.SwapBid
	if err := s.db.First(&bid, id).Error; err != nil {
		return nil, err
	}
	return &bid, nil
}

func (s *GormSwapStore) GetMatch(id uint) (*models.SwapMatch, error) {
	var match models.SwapMatch
	if err := s.db.First(&match, id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *GormSwapStore) HomesByOwner(ownerID uint) ([]models.Home, error) {
	var homes []models.Home
	if err := s.db.Where("owner_id = ?", ownerID).Find(&homes).Error; err != nil {
		return nil, err
	}
	return homes, nil
}

// HomesByLocation compares locations case-insensitively. The original
// behavior mixed conventions across call sites; one convention is
// picked here and tested for both cases.
func (s *GormSwapStore) HomesByLocation(location string) ([]models.Home, error) {
	var homes []models.Home
	if err := s.db.Where("LOWER(location) = LOWER(?)", location).Find(&homes).Error; err != nil {
		return nil, err
	}
	return homes, nil
}

func (s *GormSwapStore) OwnerHasHomeIn(ownerID uint, location string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Home{}).
		Where("owner_id = ? AND LOWER(location) = LOWER(?)", ownerID, location).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormSwapStore) BidsByUser(userID uint) ([]models.SwapBid, error) {
	var bids []models.SwapBid
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

func (s *GormSwapStore) PendingBidsByOwners(ownerIDs []uint, excludeOwnerID uint) ([]models.SwapBid, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	var bids []models.SwapBid
	err := s.db.
		Where("status = ? AND user_id IN (?) AND user_id <> ?",
			models.SwapBidStatusPending, ownerIDs, excludeOwnerID).
		Order("id ASC").
		Find(&bids).Error
	if err != nil {
		return nil, err
	}
	return bids, nil
}

func (s *GormSwapStore) MatchesByUser(userID uint) ([]models.SwapMatch, error) {
	var matches []models.SwapMatch
	err := s.db.
		Joins("JOIN swap_bids ON swap_bids.id = swap_matches.bid_a_id OR swap_bids.id = swap_matches.bid_b_id").
		Where("swap_bids.user_id = ?", userID).
		Distinct("swap_matches.*").
		Order("swap_matches.id ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *GormSwapStore) CreateBid(bid *models.SwapBid) error {
	return s.db.Create(bid).Error
}

func (s *GormSwapStore) CreateMatchAndMarkBids(match *models.SwapMatch) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, bidID := range []uint{match.BidAID, match.BidBID} {
			res := tx.Model(&models.SwapBid{}).
				Where("id = ? AND status = ?", bidID, models.SwapBidStatusPending).
				Update("status", models.SwapBidStatusMatched)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return ErrStaleStatus
			}
		}
		return tx.Create(match).Error
	})
}

func (s *GormSwapStore) TransitionMatch(matchID uint, matchStatus models.SwapMatchStatus, bidStatus models.SwapBidStatus) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SwapMatch{}).
			Where("id = ? AND status = ?", matchID, models.SwapMatchStatusProposed).
			Update("status", matchStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrStaleStatus
		}

		var match models.SwapMatch
		if err := tx.First(&match, matchID).Error; err != nil {
			return err
		}

		res = tx.Model(&models.SwapBid{}).
			Where("id IN (?) AND status = ?", []uint{match.BidAID, match.BidBID}, models.SwapBidStatusMatched).
			Update("status", bidStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 2 {
			return ErrStaleStatus
		}
		return nil
	})
}
