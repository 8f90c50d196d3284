package services

import (
	"encoding/json"
	"fmt"
	"log"

	"homeswap-server/models"
	"homeswap-server/utils"

	"gorm.io/gorm"
)

// NotificationService handles all push notification logic for match
// lifecycle events. Sends are best-effort: failures are logged and
// never propagate to the operation that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotificationData represents the data payload for notifications
type NotificationData struct {
	Type    string `json:"type"`
	MatchID string `json:"matchId,omitempty"`
	BidID   string `json:"bidId,omitempty"`
	// Deep linking data
	Screen string `json:"screen"`
	Params string `json:"params"`
}

// getUserPushTokens retrieves all push tokens for a user
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := ns.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to every device of a user
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("Failed to get push tokens for user %d: %v", userID, err)
		return err
	}

	dataMap := map[string]string{
		"type":    data.Type,
		"matchId": data.MatchID,
		"bidId":   data.BidID,
		"screen":  data.Screen,
		"params":  data.Params,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}

	return lastError
}

// MatchProposed notifies both parties that a swap match was proposed.
func (ns *NotificationService) MatchProposed(match *models.SwapMatch, bidA, bidB *models.SwapBid) {
	title := "New Swap Match!"
	ns.sendMatchEvent(match, bidA, bidB, "match_proposed", title,
		"We found a home swap that fits your dates. Review and accept it.")
}

// MatchAccepted notifies both parties that the swap was finalized.
func (ns *NotificationService) MatchAccepted(match *models.SwapMatch, bidA, bidB *models.SwapBid) {
	title := "Swap Confirmed"
	ns.sendMatchEvent(match, bidA, bidB, "match_accepted", title,
		"Both sides are in. Your home swap is confirmed.")
}

// MatchRejected notifies both parties that the match was declined and
// their bids are pending again.
func (ns *NotificationService) MatchRejected(match *models.SwapMatch, bidA, bidB *models.SwapBid) {
	title := "Swap Declined"
	ns.sendMatchEvent(match, bidA, bidB, "match_rejected", title,
		"The proposed swap was declined. Your bid is back in the pool.")
}

func (ns *NotificationService) sendMatchEvent(match *models.SwapMatch, bidA, bidB *models.SwapBid, eventType, title, body string) {
	params := fmt.Sprintf(`{"matchId": %d}`, match.ID)

	for _, bid := range []*models.SwapBid{bidA, bidB} {
		data := NotificationData{
			Type:    eventType,
			MatchID: fmt.Sprintf("%d", match.ID),
			BidID:   fmt.Sprintf("%d", bid.ID),
			Screen:  "SwapMatchDetails",
			Params:  params,
		}
		if err := ns.SendNotificationToUser(bid.UserID, title, body, data); err != nil {
			log.Printf("Failed to send %s notification to user %d: %v", eventType, bid.UserID, err)
		}
	}
}
