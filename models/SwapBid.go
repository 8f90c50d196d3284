package models

import (
	"time"

	"gorm.io/gorm"
)

type SwapBidStatus string

const (
	SwapBidStatusPending  SwapBidStatus = "pending"
	SwapBidStatusMatched  SwapBidStatus = "matched"
	SwapBidStatusAccepted SwapBidStatus = "accepted"
	SwapBidStatusRejected SwapBidStatus = "rejected"
)

// SwapBid is a user's request to swap into a location for a date range.
// Status moves pending -> matched when a reciprocal match is proposed,
// then matched -> accepted on acceptance or back to pending on rejection.
type SwapBid struct {
	gorm.Model
	UserID          uint          `json:"userID" gorm:"not null;index"`
	DesiredLocation string        `json:"desiredLocation" gorm:"not null"`
	StartDate       time.Time     `json:"startDate" gorm:"not null"`
	EndDate         time.Time     `json:"endDate" gorm:"not null"`
	Status          SwapBidStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	User            *User         `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (SwapBid) TableName() string {
	return "swap_bids"
}
