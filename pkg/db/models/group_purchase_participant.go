package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gemcircle/gemcircle-backend/pkg/enums"
)

// GroupPurchaseParticipant is a single buyer's enrollment in a group purchase.
// The (group_purchase_id, user_id) pair is unique: one row per buyer.
type GroupPurchaseParticipant struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupPurchaseID uuid.UUID               `gorm:"column:group_purchase_id;type:uuid;not null;uniqueIndex:group_purchase_participants_purchase_user_key"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex:group_purchase_participants_purchase_user_key"`
	Quantity        int                     `gorm:"column:quantity;not null"`
	Status          enums.ParticipantStatus `gorm:"column:status;type:participant_status;not null;default:'interested'"`
	JoinedAt        time.Time               `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
