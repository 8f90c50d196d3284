package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Home struct {
	gorm.Model
	OwnerID       uint           `json:"ownerID" gorm:"not null;index"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Location      string         `json:"location" gorm:"not null;index"` // free text, compared case-insensitively
	RoomCount     int            `json:"roomCount"`
	AvailableFrom time.Time      `json:"availableFrom"`
	AvailableTo   time.Time      `json:"availableTo"` // must be after AvailableFrom
	Photos        datatypes.JSON `json:"photos"`      // JSON array of storage URLs, ordered
	Owner         *User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}

// Custom JSON marshaling to convert the Photos column to an array
func (h *Home) MarshalJSON() ([]byte, error) {
	type Alias Home
	aux := &struct {
		Photos []string `json:"photos"`
		Owner  *User    `json:"owner,omitempty"`
		*Alias
	}{
		Photos: []string{},
		Owner:  h.Owner,
		Alias:  (*Alias)(h),
	}

	if h.Photos != nil {
		var photos []string
		if err := json.Unmarshal(h.Photos, &photos); err == nil {
			aux.Photos = photos
		}
	}

	return json.Marshal(aux)
}
