package grouppurchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gemcircle/gemcircle-backend/pkg/db/models"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
)

// CreateInput carries everything needed to open a new pool.
type CreateInput struct {
	CreatorID           uuid.UUID
	Title               string
	Description         *string
	VendorName          string
	VendorContact       *string
	ProductURL          *string
	ImageURL            *string
	TargetQuantity      int
	UnitPrice           decimal.Decimal
	DiscountedUnitPrice *decimal.Decimal
	Deadline            *time.Time
}

// JoinInput enrolls a buyer with a fixed quantity.
type JoinInput struct {
	PurchaseID uuid.UUID
	UserID     uuid.UUID
	Quantity   int
}

// JoinResult returns the refreshed purchase plus the caller's participant row.
type JoinResult struct {
	Purchase    *models.GroupPurchase
	Participant *models.GroupPurchaseParticipant
}

// CancelInput identifies the purchase and the acting user.
type CancelInput struct {
	PurchaseID uuid.UUID
	UserID     uuid.UUID
}

// LeaveInput identifies the withdrawing participant.
type LeaveInput struct {
	PurchaseID uuid.UUID
	UserID     uuid.UUID
}

// SetParticipantStatusInput updates the informational commitment marker.
type SetParticipantStatusInput struct {
	PurchaseID uuid.UUID
	UserID     uuid.UUID
	Status     enums.ParticipantStatus
}

// ListFilters describe the inputs supported by the purchase browse list.
type ListFilters struct {
	Status    *enums.GroupPurchaseStatus
	CreatorID *uuid.UUID
	Query     string
}

// PurchaseSummary exposes the aggregated fields returned in the browse list.
type PurchaseSummary struct {
	ID                  uuid.UUID                 `json:"id"`
	Title               string                    `json:"title"`
	VendorName          string                    `json:"vendor_name"`
	ImageURL            *string                   `json:"image_url,omitempty"`
	TargetQuantity      int                       `json:"target_quantity"`
	CurrentQuantity     int                       `json:"current_quantity"`
	UnitPrice           decimal.Decimal           `json:"unit_price"`
	DiscountedUnitPrice *decimal.Decimal          `json:"discounted_unit_price,omitempty"`
	Deadline            *time.Time                `json:"deadline,omitempty"`
	Status              enums.GroupPurchaseStatus `json:"status"`
	ParticipantCount    int                       `json:"participant_count"`
	CreatedAt           time.Time                 `json:"created_at"`
}

// PurchaseList wraps the paginated purchases plus the next page cursor.
type PurchaseList struct {
	Purchases  []PurchaseSummary `json:"purchases"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ParticipantSummary exposes a single ledger row.
type ParticipantSummary struct {
	UserID   uuid.UUID               `json:"user_id"`
	Quantity int                     `json:"quantity"`
	Status   enums.ParticipantStatus `json:"status"`
	JoinedAt time.Time               `json:"joined_at"`
}

// ParticipantList wraps paginated participants plus the next cursor.
type ParticipantList struct {
	Participants []ParticipantSummary `json:"participants"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}
