package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/gemcircle/gemcircle-backend/pkg/enums"
)

// GroupPurchaseCreatedEvent announces a freshly opened pool.
type GroupPurchaseCreatedEvent struct {
	PurchaseID     uuid.UUID  `json:"purchaseId"`
	CreatorID      uuid.UUID  `json:"creatorId"`
	VendorName     string     `json:"vendorName"`
	TargetQuantity int        `json:"targetQuantity"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// GroupPurchaseStatusChangedEvent carries exactly the old and new status so
// consumers can fan out the right notification per transition.
type GroupPurchaseStatusChangedEvent struct {
	PurchaseID uuid.UUID                 `json:"purchaseId"`
	OldStatus  enums.GroupPurchaseStatus `json:"oldStatus"`
	NewStatus  enums.GroupPurchaseStatus `json:"newStatus"`
	ChangedAt  time.Time                 `json:"changedAt"`
}

// ParticipantJoinedEvent reports a buyer enrollment and the resulting pool size.
type ParticipantJoinedEvent struct {
	PurchaseID      uuid.UUID `json:"purchaseId"`
	UserID          uuid.UUID `json:"userId"`
	Quantity        int       `json:"quantity"`
	CurrentQuantity int       `json:"currentQuantity"`
	TargetQuantity  int       `json:"targetQuantity"`
}

// ParticipantLeftEvent reports a buyer withdrawal from an open pool.
type ParticipantLeftEvent struct {
	PurchaseID      uuid.UUID `json:"purchaseId"`
	UserID          uuid.UUID `json:"userId"`
	Quantity        int       `json:"quantity"`
	CurrentQuantity int       `json:"currentQuantity"`
}

// NotificationRequestedEvent tells downstream systems to alert a user directly.
type NotificationRequestedEvent struct {
	PurchaseID uuid.UUID `json:"purchaseId"`
	UserID     uuid.UUID `json:"userId"`
	Type       string    `json:"type"`
}
