package grouppurchases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gemcircle/gemcircle-backend/pkg/db/models"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
	"github.com/gemcircle/gemcircle-backend/pkg/pagination"
)

// Repository defines persistence operations for group purchase tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePurchase(ctx context.Context, purchase *models.GroupPurchase) (*models.GroupPurchase, error)
	FindPurchase(ctx context.Context, id uuid.UUID) (*models.GroupPurchase, error)
	ListPurchases(ctx context.Context, params pagination.Params, filters ListFilters) (*PurchaseList, error)
	FindOpenPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.GroupPurchase, error)
	UpdatePurchaseGuarded(ctx context.Context, id uuid.UUID, version int64, updates map[string]any) (bool, error)
	CreateParticipant(ctx context.Context, participant *models.GroupPurchaseParticipant) (*models.GroupPurchaseParticipant, error)
	FindParticipant(ctx context.Context, purchaseID, userID uuid.UUID) (*models.GroupPurchaseParticipant, error)
	RemoveParticipant(ctx context.Context, purchaseID, userID uuid.UUID) error
	UpdateParticipantStatus(ctx context.Context, purchaseID, userID uuid.UUID, status enums.ParticipantStatus) error
	ListParticipants(ctx context.Context, purchaseID uuid.UUID, params pagination.Params) (*ParticipantList, error)
	SumQuantities(ctx context.Context, purchaseID uuid.UUID) (int, error)
}
