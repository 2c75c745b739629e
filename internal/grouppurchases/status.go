package grouppurchases

import (
	"time"

	"github.com/gemcircle/gemcircle-backend/pkg/db/models"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
)

// allowedTransitions is the full transition table. Terminal statuses have no
// outgoing edges, so fulfilled never turns back into open when buyers leave.
var allowedTransitions = map[enums.GroupPurchaseStatus][]enums.GroupPurchaseStatus{
	enums.GroupPurchaseStatusOpen: {
		enums.GroupPurchaseStatusFulfilled,
		enums.GroupPurchaseStatusExpired,
		enums.GroupPurchaseStatusCancelled,
	},
}

// CanTransition reports whether the from→to edge exists in the table.
func CanTransition(from, to enums.GroupPurchaseStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// thresholdMet reports whether the accumulated quantity latches the purchase
// into fulfilled. Overshoot past the target is allowed.
func thresholdMet(currentQuantity, targetQuantity int) bool {
	return currentQuantity >= targetQuantity
}

// deadlinePassed reports whether the optional deadline has elapsed at now.
// Purchases without a deadline stay open indefinitely.
func deadlinePassed(purchase *models.GroupPurchase, now time.Time) bool {
	if purchase == nil || purchase.Deadline == nil {
		return false
	}
	return !now.Before(*purchase.Deadline)
}
