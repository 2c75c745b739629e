package grouppurchases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/gemcircle/gemcircle-backend/pkg/db"
	"github.com/gemcircle/gemcircle-backend/pkg/db/models"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
	pkgerrors "github.com/gemcircle/gemcircle-backend/pkg/errors"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/metrics"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox/payloads"
	"github.com/gemcircle/gemcircle-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the group purchase operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.GroupPurchase, error)
	Get(ctx context.Context, purchaseID uuid.UUID) (*models.GroupPurchase, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*PurchaseList, error)
	Join(ctx context.Context, input JoinInput) (*JoinResult, error)
	Leave(ctx context.Context, input LeaveInput) (*models.GroupPurchase, error)
	Cancel(ctx context.Context, input CancelInput) (*models.GroupPurchase, error)
	SetParticipantStatus(ctx context.Context, input SetParticipantStatusInput) error
	ListParticipants(ctx context.Context, purchaseID uuid.UUID, params pagination.Params) (*ParticipantList, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	logg       *logger.Logger
	metrics    *metrics.GroupPurchaseMetrics
	maxRetries int
	now        func() time.Time
}

const defaultMaxConflictRetries = 5

// NewService builds a group purchase service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger, m *metrics.GroupPurchaseMetrics, maxConflictRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("group purchase repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if maxConflictRetries <= 0 {
		maxConflictRetries = defaultMaxConflictRetries
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     outboxSvc,
		logg:       logg,
		metrics:    m,
		maxRetries: maxConflictRetries,
		now:        time.Now,
	}, nil
}

// errVersionConflict is internal backpressure: the guarded update lost the
// race, the whole transaction rolled back, and the operation reruns from a
// fresh read. It never reaches a client.
var errVersionConflict = pkgerrors.New(pkgerrors.CodeConcurrency, "purchase version conflict")

func errNotOpen() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase is not open")
}

func (s *service) withConflictRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err = fn()
		if err == nil || !pkgerrors.HasCode(err, pkgerrors.CodeConcurrency) {
			return err
		}
		s.metrics.IncConflict()
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"operation": op, "attempt": attempt + 1})
			s.logg.Warn(logCtx, "purchase version conflict, retrying")
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "purchase contention retries exhausted")
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.GroupPurchase, error) {
	if input.CreatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.VendorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
	}
	if input.TargetQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target quantity must be at least 1")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	now := s.now()
	if input.Deadline != nil && !input.Deadline.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline must be in the future")
	}

	var out *models.GroupPurchase
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		purchase := &models.GroupPurchase{
			ID:                  uuid.New(),
			CreatorID:           input.CreatorID,
			Title:               input.Title,
			Description:         input.Description,
			VendorName:          input.VendorName,
			VendorContact:       input.VendorContact,
			ProductURL:          input.ProductURL,
			ImageURL:            input.ImageURL,
			TargetQuantity:      input.TargetQuantity,
			CurrentQuantity:     1,
			UnitPrice:           input.UnitPrice,
			DiscountedUnitPrice: input.DiscountedUnitPrice,
			Deadline:            input.Deadline,
			Status:              enums.GroupPurchaseStatusOpen,
		}
		if _, err := repo.CreatePurchase(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert purchase")
		}

		// Creator is enrolled automatically with quantity 1.
		participant := &models.GroupPurchaseParticipant{
			ID:              uuid.New(),
			GroupPurchaseID: purchase.ID,
			UserID:          input.CreatorID,
			Quantity:        1,
			Status:          enums.ParticipantStatusInterested,
		}
		if _, err := repo.CreateParticipant(ctx, participant); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert creator participant")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventGroupPurchaseCreated,
			AggregateType: enums.AggregateGroupPurchase,
			AggregateID:   purchase.ID,
			Version:       1,
			Actor:         buildActor(input.CreatorID),
			Data: payloads.GroupPurchaseCreatedEvent{
				PurchaseID:     purchase.ID,
				CreatorID:      purchase.CreatorID,
				VendorName:     purchase.VendorName,
				TargetQuantity: purchase.TargetQuantity,
				Deadline:       purchase.Deadline,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		// A target of 1 is satisfied by the creator's own enrollment.
		if thresholdMet(purchase.CurrentQuantity, purchase.TargetQuantity) {
			if err := s.fulfillTx(ctx, repo, tx, purchase, input.CreatorID, now); err != nil {
				return err
			}
		}

		out = purchase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, purchaseID uuid.UUID) (*models.GroupPurchase, error) {
	if purchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}

	purchase, err := s.repo.FindPurchase(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}

	if purchase.Status != enums.GroupPurchaseStatusOpen || !deadlinePassed(purchase, s.now()) {
		return purchase, nil
	}

	// Deadline elapsed: commit the expiry before answering.
	var out *models.GroupPurchase
	err = s.withConflictRetry(ctx, "get", func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			fresh, err := repo.FindPurchase(ctx, purchaseID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase")
			}
			if fresh.Status == enums.GroupPurchaseStatusOpen && deadlinePassed(fresh, s.now()) {
				if err := s.expireTx(ctx, repo, tx, fresh, s.now()); err != nil {
					return err
				}
			}
			out = fresh
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*PurchaseList, error) {
	list, err := s.repo.ListPurchases(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	return list, nil
}

func (s *service) Join(ctx context.Context, input JoinInput) (*JoinResult, error) {
	if input.PurchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *JoinResult
	var fulfilled bool
	err := s.withConflictRetry(ctx, "join", func() error {
		var opErr error
		out, fulfilled = nil, false
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			purchase, err := repo.FindPurchase(ctx, input.PurchaseID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
			}

			now := s.now()
			if purchase.Status == enums.GroupPurchaseStatusOpen && deadlinePassed(purchase, now) {
				if err := s.expireTx(ctx, repo, tx, purchase, now); err != nil {
					return err
				}
				// Commit the expiry; the join itself is rejected.
				opErr = errNotOpen()
				return nil
			}
			if purchase.Status != enums.GroupPurchaseStatusOpen {
				return errNotOpen()
			}

			participant := &models.GroupPurchaseParticipant{
				ID:              uuid.New(),
				GroupPurchaseID: purchase.ID,
				UserID:          input.UserID,
				Quantity:        input.Quantity,
				Status:          enums.ParticipantStatusInterested,
			}
			if _, err := repo.CreateParticipant(ctx, participant); err != nil {
				if dbpkg.IsUniqueViolation(err, "group_purchase_participants_purchase_user_key") {
					return pkgerrors.New(pkgerrors.CodeConflict, "user already participating in this purchase")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert participant")
			}

			total, err := repo.SumQuantities(ctx, purchase.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum participant quantities")
			}

			oldStatus := purchase.Status
			updates := map[string]any{"current_quantity": total}
			if thresholdMet(total, purchase.TargetQuantity) {
				updates["status"] = enums.GroupPurchaseStatusFulfilled
				updates["fulfilled_at"] = now
			}

			ok, err := repo.UpdatePurchaseGuarded(ctx, purchase.ID, purchase.Version, updates)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase quantity")
			}
			if !ok {
				return errVersionConflict
			}

			joinEvent := outbox.DomainEvent{
				EventType:     enums.EventParticipantJoined,
				AggregateType: enums.AggregateGroupPurchase,
				AggregateID:   purchase.ID,
				Version:       1,
				Actor:         buildActor(input.UserID),
				Data: payloads.ParticipantJoinedEvent{
					PurchaseID:      purchase.ID,
					UserID:          input.UserID,
					Quantity:        input.Quantity,
					CurrentQuantity: total,
					TargetQuantity:  purchase.TargetQuantity,
				},
			}
			if err := s.outbox.Emit(ctx, tx, joinEvent); err != nil {
				return err
			}

			purchase.CurrentQuantity = total
			purchase.Version++
			if thresholdMet(total, purchase.TargetQuantity) {
				purchase.Status = enums.GroupPurchaseStatusFulfilled
				purchase.FulfilledAt = &now
				fulfilled = true
				if err := s.emitStatusChanged(ctx, tx, purchase.ID, input.UserID, oldStatus, purchase.Status, now); err != nil {
					return err
				}
			}

			out = &JoinResult{Purchase: purchase, Participant: participant}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		return opErr
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncJoin()
	if fulfilled {
		s.metrics.IncTransition(enums.GroupPurchaseStatusFulfilled.String())
	}
	return out, nil
}

func (s *service) Leave(ctx context.Context, input LeaveInput) (*models.GroupPurchase, error) {
	if input.PurchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var out *models.GroupPurchase
	var left bool
	err := s.withConflictRetry(ctx, "leave", func() error {
		var opErr error
		out, left = nil, false
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			purchase, err := repo.FindPurchase(ctx, input.PurchaseID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
			}
			if purchase.CreatorID == input.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "creator cannot leave their own purchase")
			}

			now := s.now()
			if purchase.Status == enums.GroupPurchaseStatusOpen && deadlinePassed(purchase, now) {
				if err := s.expireTx(ctx, repo, tx, purchase, now); err != nil {
					return err
				}
				opErr = errNotOpen()
				return nil
			}
			if purchase.Status != enums.GroupPurchaseStatusOpen {
				return errNotOpen()
			}

			participant, err := repo.FindParticipant(ctx, purchase.ID, input.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Leaving a purchase you never joined is a no-op.
					out = purchase
					return nil
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
			}

			if err := repo.RemoveParticipant(ctx, purchase.ID, input.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove participant")
			}

			total, err := repo.SumQuantities(ctx, purchase.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum participant quantities")
			}

			ok, err := repo.UpdatePurchaseGuarded(ctx, purchase.ID, purchase.Version, map[string]any{
				"current_quantity": total,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase quantity")
			}
			if !ok {
				return errVersionConflict
			}

			leftEvent := outbox.DomainEvent{
				EventType:     enums.EventParticipantLeft,
				AggregateType: enums.AggregateGroupPurchase,
				AggregateID:   purchase.ID,
				Version:       1,
				Actor:         buildActor(input.UserID),
				Data: payloads.ParticipantLeftEvent{
					PurchaseID:      purchase.ID,
					UserID:          input.UserID,
					Quantity:        participant.Quantity,
					CurrentQuantity: total,
				},
			}
			if err := s.outbox.Emit(ctx, tx, leftEvent); err != nil {
				return err
			}

			purchase.CurrentQuantity = total
			purchase.Version++
			out = purchase
			left = true
			return nil
		})
		if txErr != nil {
			return txErr
		}
		return opErr
	})
	if err != nil {
		return nil, err
	}

	if left {
		s.metrics.IncLeave()
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.GroupPurchase, error) {
	if input.PurchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var out *models.GroupPurchase
	var cancelled bool
	err := s.withConflictRetry(ctx, "cancel", func() error {
		var opErr error
		out, cancelled = nil, false
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			purchase, err := repo.FindPurchase(ctx, input.PurchaseID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
			}
			if purchase.CreatorID != input.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the creator can cancel a purchase")
			}

			now := s.now()
			if purchase.Status == enums.GroupPurchaseStatusOpen && deadlinePassed(purchase, now) {
				if err := s.expireTx(ctx, repo, tx, purchase, now); err != nil {
					return err
				}
				opErr = errNotOpen()
				return nil
			}
			if purchase.Status != enums.GroupPurchaseStatusOpen {
				return errNotOpen()
			}

			ok, err := repo.UpdatePurchaseGuarded(ctx, purchase.ID, purchase.Version, map[string]any{
				"status":      enums.GroupPurchaseStatusCancelled,
				"canceled_at": now,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel purchase")
			}
			if !ok {
				return errVersionConflict
			}

			if err := s.emitStatusChanged(ctx, tx, purchase.ID, input.UserID, purchase.Status, enums.GroupPurchaseStatusCancelled, now); err != nil {
				return err
			}

			purchase.Status = enums.GroupPurchaseStatusCancelled
			purchase.CanceledAt = &now
			purchase.Version++
			out = purchase
			cancelled = true
			return nil
		})
		if txErr != nil {
			return txErr
		}
		return opErr
	})
	if err != nil {
		return nil, err
	}

	if cancelled {
		s.metrics.IncTransition(enums.GroupPurchaseStatusCancelled.String())
	}
	return out, nil
}

func (s *service) SetParticipantStatus(ctx context.Context, input SetParticipantStatusInput) error {
	if input.PurchaseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid participant status")
	}

	return s.withConflictRetry(ctx, "set_participant_status", func() error {
		var opErr error
		txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			purchase, err := repo.FindPurchase(ctx, input.PurchaseID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
			}

			now := s.now()
			if purchase.Status == enums.GroupPurchaseStatusOpen && deadlinePassed(purchase, now) {
				if err := s.expireTx(ctx, repo, tx, purchase, now); err != nil {
					return err
				}
				opErr = errNotOpen()
				return nil
			}
			if purchase.Status != enums.GroupPurchaseStatusOpen {
				return errNotOpen()
			}

			if _, err := repo.FindParticipant(ctx, purchase.ID, input.UserID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "participant not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participant")
			}

			if err := repo.UpdateParticipantStatus(ctx, purchase.ID, input.UserID, input.Status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update participant status")
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}
		return opErr
	})
}

func (s *service) ListParticipants(ctx context.Context, purchaseID uuid.UUID, params pagination.Params) (*ParticipantList, error) {
	if purchaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id required")
	}
	if _, err := s.repo.FindPurchase(ctx, purchaseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	list, err := s.repo.ListParticipants(ctx, purchaseID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list participants")
	}
	return list, nil
}

// expireTx commits the open→expired transition inside the caller's
// transaction and mutates purchase to the post-expiry state.
func (s *service) expireTx(ctx context.Context, repo Repository, tx *gorm.DB, purchase *models.GroupPurchase, now time.Time) error {
	ok, err := repo.UpdatePurchaseGuarded(ctx, purchase.ID, purchase.Version, map[string]any{
		"status":     enums.GroupPurchaseStatusExpired,
		"expired_at": now,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire purchase")
	}
	if !ok {
		return errVersionConflict
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventGroupPurchaseStatusChanged,
		AggregateType: enums.AggregateGroupPurchase,
		AggregateID:   purchase.ID,
		Version:       1,
		Data: payloads.GroupPurchaseStatusChangedEvent{
			PurchaseID: purchase.ID,
			OldStatus:  enums.GroupPurchaseStatusOpen,
			NewStatus:  enums.GroupPurchaseStatusExpired,
			ChangedAt:  now,
		},
	}
	// The lazy check and the sweep can race on the same purchase; only one
	// status-changed event may exist per aggregate.
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		return err
	}

	purchase.Status = enums.GroupPurchaseStatusExpired
	purchase.ExpiredAt = &now
	purchase.Version++
	s.metrics.IncTransition(enums.GroupPurchaseStatusExpired.String())
	return nil
}

// fulfillTx latches a purchase into fulfilled at creation time, when the
// creator's own enrollment already satisfies the target.
func (s *service) fulfillTx(ctx context.Context, repo Repository, tx *gorm.DB, purchase *models.GroupPurchase, actorID uuid.UUID, now time.Time) error {
	ok, err := repo.UpdatePurchaseGuarded(ctx, purchase.ID, purchase.Version, map[string]any{
		"status":       enums.GroupPurchaseStatusFulfilled,
		"fulfilled_at": now,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fulfill purchase")
	}
	if !ok {
		return errVersionConflict
	}

	if err := s.emitStatusChanged(ctx, tx, purchase.ID, actorID, enums.GroupPurchaseStatusOpen, enums.GroupPurchaseStatusFulfilled, now); err != nil {
		return err
	}

	purchase.Status = enums.GroupPurchaseStatusFulfilled
	purchase.FulfilledAt = &now
	purchase.Version++
	s.metrics.IncTransition(enums.GroupPurchaseStatusFulfilled.String())
	return nil
}

func (s *service) emitStatusChanged(ctx context.Context, tx *gorm.DB, purchaseID, actorID uuid.UUID, oldStatus, newStatus enums.GroupPurchaseStatus, changedAt time.Time) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventGroupPurchaseStatusChanged,
		AggregateType: enums.AggregateGroupPurchase,
		AggregateID:   purchaseID,
		Version:       1,
		Actor:         buildActor(actorID),
		Data: payloads.GroupPurchaseStatusChangedEvent{
			PurchaseID: purchaseID,
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
			ChangedAt:  changedAt,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func buildActor(userID uuid.UUID) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID.String()}
}
