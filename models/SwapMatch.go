package models

import (
	"time"

	"gorm.io/gorm"
)

type SwapMatchStatus string

const (
	SwapMatchStatusProposed SwapMatchStatus = "proposed"
	SwapMatchStatusAccepted SwapMatchStatus = "accepted"
	SwapMatchStatusRejected SwapMatchStatus = "rejected"
)

// SwapMatch pairs exactly two bids owned by two different users. It
// references bids, never homes; homes are resolved at query time via
// the counterpart's desired location. Accepted and rejected are
// terminal.
type SwapMatch struct {
	gorm.Model
	BidAID    uint            `json:"bidAID" gorm:"not null;index"`
	BidBID    uint            `json:"bidBID" gorm:"not null;index"`
	Status    SwapMatchStatus `json:"status" gorm:"type:varchar(20);default:'proposed';index"`
	MatchDate time.Time       `json:"matchDate"`
	BidA      *SwapBid        `json:"bidA,omitempty" gorm:"foreignKey:BidAID;references:ID"`
	BidB      *SwapBid        `json:"bidB,omitempty" gorm:"foreignKey:BidBID;references:ID"`
}

func (SwapMatch) TableName() string {
	return "swap_matches"
}

// HasBid reports whether the given bid id is one of the pair.
func (m *SwapMatch) HasBid(bidID uint) bool {
	return m.BidAID == bidID || m.BidBID == bidID
}

// OtherBidID returns the counterpart bid id for one of the pair.
func (m *SwapMatch) OtherBidID(bidID uint) (uint, bool) {
	if m.BidAID == bidID {
		return m.BidBID, true
	}
	if m.BidBID == bidID {
		return m.BidAID, true
	}
	return 0, false
}
