package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gemcircle/gemcircle-backend/pkg/enums"
)

// GroupPurchase is a pooled order against a single vendor listing. Buyers
// accumulate quantity until TargetQuantity is reached or the deadline passes.
type GroupPurchase struct {
	ID                  uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID           uuid.UUID                  `gorm:"column:creator_id;type:uuid;not null"`
	Title               string                     `gorm:"column:title;type:text;not null"`
	Description         *string                    `gorm:"column:description;type:text"`
	VendorName          string                     `gorm:"column:vendor_name;type:text;not null"`
	VendorContact       *string                    `gorm:"column:vendor_contact;type:text"`
	ProductURL          *string                    `gorm:"column:product_url;type:text"`
	ImageURL            *string                    `gorm:"column:image_url;type:text"`
	TargetQuantity      int                        `gorm:"column:target_quantity;not null"`
	CurrentQuantity     int                        `gorm:"column:current_quantity;not null;default:0"`
	UnitPrice           decimal.Decimal            `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DiscountedUnitPrice *decimal.Decimal           `gorm:"column:discounted_unit_price;type:numeric(12,2)"`
	Deadline            *time.Time                 `gorm:"column:deadline;type:timestamptz"`
	Status              enums.GroupPurchaseStatus  `gorm:"column:status;type:group_purchase_status;not null;default:'open'"`
	Version             int64                      `gorm:"column:version;not null;default:0"`
	FulfilledAt         *time.Time                 `gorm:"column:fulfilled_at"`
	ExpiredAt           *time.Time                 `gorm:"column:expired_at"`
	CanceledAt          *time.Time                 `gorm:"column:canceled_at"`
	Participants        []GroupPurchaseParticipant `gorm:"foreignKey:GroupPurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
