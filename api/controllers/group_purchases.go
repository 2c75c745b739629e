package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gemcircle/gemcircle-backend/api/middleware"
	"github.com/gemcircle/gemcircle-backend/api/responses"
	"github.com/gemcircle/gemcircle-backend/api/validators"
	"github.com/gemcircle/gemcircle-backend/internal/grouppurchases"
	"github.com/gemcircle/gemcircle-backend/pkg/db/models"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
	pkgerrors "github.com/gemcircle/gemcircle-backend/pkg/errors"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/pagination"
)

// CreateGroupPurchase opens a new pool with the caller enrolled as creator.
func CreateGroupPurchase(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		uid, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createGroupPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Create(r.Context(), payload.toCreateInput(uid))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newPurchaseResponse(purchase))
	}
}

// GetGroupPurchase fetches one purchase, reporting any lapsed deadline.
func GetGroupPurchase(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		purchaseID, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Get(r.Context(), purchaseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPurchaseResponse(purchase))
	}
}

// ListGroupPurchases returns the browse list with cursor pagination.
func ListGroupPurchases(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters grouppurchases.ListFilters

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseGroupPurchaseStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("creatorId")); raw != "" {
			creatorID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid creator id"))
				return
			}
			filters.CreatorID = &creatorID
		}

		filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// JoinGroupPurchase enrolls the caller with a fixed quantity.
func JoinGroupPurchase(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		uid, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseID, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload joinGroupPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Join(r.Context(), grouppurchases.JoinInput{
			PurchaseID: purchaseID,
			UserID:     uid,
			Quantity:   payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, joinResponse{
			Purchase:    newPurchaseResponse(result.Purchase),
			Participant: newParticipantResponse(result.Participant),
		})
	}
}

// LeaveGroupPurchase withdraws the caller's enrollment.
func LeaveGroupPurchase(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		uid, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseID, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Leave(r.Context(), grouppurchases.LeaveInput{
			PurchaseID: purchaseID,
			UserID:     uid,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPurchaseResponse(purchase))
	}
}

// CancelGroupPurchase lets the creator close an open pool.
func CancelGroupPurchase(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		uid, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseID, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Cancel(r.Context(), grouppurchases.CancelInput{
			PurchaseID: purchaseID,
			UserID:     uid,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPurchaseResponse(purchase))
	}
}

// ListGroupPurchaseParticipants exposes the ledger for one purchase.
func ListGroupPurchaseParticipants(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		purchaseID, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListParticipants(r.Context(), purchaseID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// SetMyParticipantStatus updates the caller's commitment marker.
func SetMyParticipantStatus(svc grouppurchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "group purchase service unavailable"))
			return
		}

		uid, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchaseID, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setParticipantStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseParticipantStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid participant status"))
			return
		}

		if err := svc.SetParticipantStatus(r.Context(), grouppurchases.SetParticipantStatusInput{
			PurchaseID: purchaseID,
			UserID:     uid,
			Status:     status,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return uid, nil
}

func purchaseIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "purchaseId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase id")
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	var params pagination.Params

	if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
		value, err := strconv.Atoi(limitStr)
		if err != nil || value <= 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		params.Limit = value
	}

	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))
	return params, nil
}

type createGroupPurchaseRequest struct {
	Title               string           `json:"title" validate:"required"`
	Description         *string          `json:"description,omitempty"`
	VendorName          string           `json:"vendor_name" validate:"required"`
	VendorContact       *string          `json:"vendor_contact,omitempty"`
	ProductURL          *string          `json:"product_url,omitempty" validate:"omitempty,url"`
	ImageURL            *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	TargetQuantity      int              `json:"target_quantity" validate:"required,min=1"`
	UnitPrice           decimal.Decimal  `json:"unit_price" validate:"required"`
	DiscountedUnitPrice *decimal.Decimal `json:"discounted_unit_price,omitempty"`
	Deadline            *time.Time       `json:"deadline,omitempty"`
}

func (p createGroupPurchaseRequest) toCreateInput(creatorID uuid.UUID) grouppurchases.CreateInput {
	return grouppurchases.CreateInput{
		CreatorID:           creatorID,
		Title:               strings.TrimSpace(p.Title),
		Description:         p.Description,
		VendorName:          strings.TrimSpace(p.VendorName),
		VendorContact:       p.VendorContact,
		ProductURL:          p.ProductURL,
		ImageURL:            p.ImageURL,
		TargetQuantity:      p.TargetQuantity,
		UnitPrice:           p.UnitPrice,
		DiscountedUnitPrice: p.DiscountedUnitPrice,
		Deadline:            p.Deadline,
	}
}

type joinGroupPurchaseRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type setParticipantStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type purchaseResponse struct {
	ID                  uuid.UUID                 `json:"id"`
	CreatorID           uuid.UUID                 `json:"creator_id"`
	Title               string                    `json:"title"`
	Description         *string                   `json:"description,omitempty"`
	VendorName          string                    `json:"vendor_name"`
	VendorContact       *string                   `json:"vendor_contact,omitempty"`
	ProductURL          *string                   `json:"product_url,omitempty"`
	ImageURL            *string                   `json:"image_url,omitempty"`
	TargetQuantity      int                       `json:"target_quantity"`
	CurrentQuantity     int                       `json:"current_quantity"`
	UnitPrice           decimal.Decimal           `json:"unit_price"`
	DiscountedUnitPrice *decimal.Decimal          `json:"discounted_unit_price,omitempty"`
	Deadline            *time.Time                `json:"deadline,omitempty"`
	Status              enums.GroupPurchaseStatus `json:"status"`
	FulfilledAt         *time.Time                `json:"fulfilled_at,omitempty"`
	ExpiredAt           *time.Time                `json:"expired_at,omitempty"`
	CanceledAt          *time.Time                `json:"canceled_at,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
}

func newPurchaseResponse(purchase *models.GroupPurchase) *purchaseResponse {
	if purchase == nil {
		return nil
	}
	return &purchaseResponse{
		ID:                  purchase.ID,
		CreatorID:           purchase.CreatorID,
		Title:               purchase.Title,
		Description:         purchase.Description,
		VendorName:          purchase.VendorName,
		VendorContact:       purchase.VendorContact,
		ProductURL:          purchase.ProductURL,
		ImageURL:            purchase.ImageURL,
		TargetQuantity:      purchase.TargetQuantity,
		CurrentQuantity:     purchase.CurrentQuantity,
		UnitPrice:           purchase.UnitPrice,
		DiscountedUnitPrice: purchase.DiscountedUnitPrice,
		Deadline:            purchase.Deadline,
		Status:              purchase.Status,
		FulfilledAt:         purchase.FulfilledAt,
		ExpiredAt:           purchase.ExpiredAt,
		CanceledAt:          purchase.CanceledAt,
		CreatedAt:           purchase.CreatedAt,
		UpdatedAt:           purchase.UpdatedAt,
	}
}

type participantResponse struct {
	UserID   uuid.UUID               `json:"user_id"`
	Quantity int                     `json:"quantity"`
	Status   enums.ParticipantStatus `json:"status"`
	JoinedAt time.Time               `json:"joined_at"`
}

func newParticipantResponse(participant *models.GroupPurchaseParticipant) *participantResponse {
	if participant == nil {
		return nil
	}
	return &participantResponse{
		UserID:   participant.UserID,
		Quantity: participant.Quantity,
		Status:   participant.Status,
		JoinedAt: participant.JoinedAt,
	}
}

type joinResponse struct {
	Purchase    *purchaseResponse    `json:"purchase"`
	Participant *participantResponse `json:"participant"`
}
