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

type repository struct {
	db *gorm.DB
}

// NewRepository builds a group purchase repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.GroupPurchase) (*models.GroupPurchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *repository) FindPurchase(ctx context.Context, id uuid.UUID) (*models.GroupPurchase, error) {
	var purchase models.GroupPurchase
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *repository) ListPurchases(ctx context.Context, params pagination.Params, filters ListFilters) (*PurchaseList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.GroupPurchase{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatorID != nil {
		query = query.Where("creator_id = ?", *filters.CreatorID)
	}
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("title LIKE ? OR vendor_name LIKE ?", pattern, pattern)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var purchases []models.GroupPurchase
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&purchases).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(purchases) > normalized {
		next := purchases[normalized]
		purchases = purchases[:normalized]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
	}

	summaries := make([]PurchaseSummary, 0, len(purchases))
	for _, p := range purchases {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.GroupPurchaseParticipant{}).
			Where("group_purchase_id = ?", p.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, PurchaseSummary{
			ID:                  p.ID,
			Title:               p.Title,
			VendorName:          p.VendorName,
			ImageURL:            p.ImageURL,
			TargetQuantity:      p.TargetQuantity,
			CurrentQuantity:     p.CurrentQuantity,
			UnitPrice:           p.UnitPrice,
			DiscountedUnitPrice: p.DiscountedUnitPrice,
			Deadline:            p.Deadline,
			Status:              p.Status,
			ParticipantCount:    int(count),
			CreatedAt:           p.CreatedAt,
		})
	}

	return &PurchaseList{Purchases: summaries, NextCursor: nextCursor}, nil
}

func (r *repository) FindOpenPastDeadline(ctx context.Context, cutoff time.Time, limit int) ([]models.GroupPurchase, error) {
	var purchases []models.GroupPurchase
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.GroupPurchaseStatusOpen).
		Where("deadline IS NOT NULL AND deadline <= ?", cutoff).
		Order("deadline ASC").
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// UpdatePurchaseGuarded applies updates only if the row still carries the
// expected version, bumping the version on success. A false return means a
// concurrent writer got there first and the caller must reload and retry.
func (r *repository) UpdatePurchaseGuarded(ctx context.Context, id uuid.UUID, version int64, updates map[string]any) (bool, error) {
	guarded := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		guarded[k] = v
	}
	guarded["version"] = version + 1

	res := r.db.WithContext(ctx).
		Model(&models.GroupPurchase{}).
		Where("id = ? AND version = ?", id, version).
		Updates(guarded)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateParticipant(ctx context.Context, participant *models.GroupPurchaseParticipant) (*models.GroupPurchaseParticipant, error) {
	if err := r.db.WithContext(ctx).Create(participant).Error; err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *repository) FindParticipant(ctx context.Context, purchaseID, userID uuid.UUID) (*models.GroupPurchaseParticipant, error) {
	var participant models.GroupPurchaseParticipant
	err := r.db.WithContext(ctx).
		Where("group_purchase_id = ? AND user_id = ?", purchaseID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repository) RemoveParticipant(ctx context.Context, purchaseID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("group_purchase_id = ? AND user_id = ?", purchaseID, userID).
		Delete(&models.GroupPurchaseParticipant{}).Error
}

func (r *repository) UpdateParticipantStatus(ctx context.Context, purchaseID, userID uuid.UUID, status enums.ParticipantStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupPurchaseParticipant{}).
		Where("group_purchase_id = ? AND user_id = ?", purchaseID, userID).
		Update("status", status).Error
}

func (r *repository) ListParticipants(ctx context.Context, purchaseID uuid.UUID, params pagination.Params) (*ParticipantList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.GroupPurchaseParticipant{}).
		Where("group_purchase_id = ?", purchaseID)
	if cursor != nil {
		query = query.Where("(joined_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var participants []models.GroupPurchaseParticipant
	if err := query.Order("joined_at ASC, id ASC").Limit(limit).Find(&participants).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(participants) > normalized {
		next := participants[normalized]
		participants = participants[:normalized]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.JoinedAt, ID: next.ID})
	}

	summaries := make([]ParticipantSummary, 0, len(participants))
	for _, p := range participants {
		summaries = append(summaries, ParticipantSummary{
			UserID:   p.UserID,
			Quantity: p.Quantity,
			Status:   p.Status,
			JoinedAt: p.JoinedAt,
		})
	}

	return &ParticipantList{Participants: summaries, NextCursor: nextCursor}, nil
}

func (r *repository) SumQuantities(ctx context.Context, purchaseID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupPurchaseParticipant{}).
		Where("group_purchase_id = ?", purchaseID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
