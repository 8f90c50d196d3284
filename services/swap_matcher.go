package services

import (
	"sort"
	"time"

	"homeswap-server/models"
)

// DatesOverlap reports whether two closed date intervals share at least
// one instant. A bid ending exactly when another starts counts as
// overlapping; zero-length intersections are intentional, matching the
// original marketplace behavior.
func DatesOverlap(start1, end1, start2, end2 time.Time) bool {
	return !start1.After(end2) && !start2.After(end1)
}

// FindMatchingBids returns the pending bids that could pair with newBid:
// bids whose owner has a home in newBid's desired location, excluding
// newBid's own owner, with overlapping dates. Read-only and safe to call
// repeatedly. Results are ordered by bid id ascending.
func FindMatchingBids(store SwapStore, newBid *models.SwapBid) ([]models.SwapBid, error) {
	homes, err := store.HomesByLocation(newBid.DesiredLocation)
	if err != nil {
		return nil, err
	}
	if len(homes) == 0 {
		return nil, nil
	}

	seen := make(map[uint]bool)
	var ownerIDs []uint
	for _, home := range homes {
		if !seen[home.OwnerID] {
			seen[home.OwnerID] = true
			ownerIDs = append(ownerIDs, home.OwnerID)
		}
	}

	candidates, err := store.PendingBidsByOwners(ownerIDs, newBid.UserID)
	if err != nil {
		return nil, err
	}

	var matching []models.SwapBid
	for _, candidate := range candidates {
		if DatesOverlap(newBid.StartDate, newBid.EndDate, candidate.StartDate, candidate.EndDate) {
			matching = append(matching, candidate)
		}
	}

	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })
	return matching, nil
}
