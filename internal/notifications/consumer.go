package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/gemcircle/gemcircle-backend/pkg/db/models"
	"github.com/gemcircle/gemcircle-backend/pkg/enums"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox/idempotency"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox/payloads"
)

const purchaseNotificationConsumer = "notifications-worker"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ParticipantUserIDs(ctx context.Context, purchaseID uuid.UUID) ([]uuid.UUID, error)
}

// Consumer watches domain events and fans purchase status transitions out
// into one notification row per participant.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a purchase notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	handled := eventType == string(enums.EventGroupPurchaseStatusChanged) ||
		eventType == string(enums.EventNotificationRequested)
	if !handled {
		c.logg.Info(logCtx, "skipping event without notification handling")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, purchaseNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	switch eventType {
	case string(enums.EventGroupPurchaseStatusChanged):
		err = c.handleStatusChanged(ctx, envelope.Data, logCtx)
	case string(enums.EventNotificationRequested):
		err = c.handleNotificationRequested(ctx, envelope.Data, logCtx)
	}
	if err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, purchaseNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handleStatusChanged(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.GroupPurchaseStatusChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse status changed payload: %w", err)
	}
	if payload.PurchaseID == uuid.Nil {
		return fmt.Errorf("purchase id missing")
	}

	notificationType, err := enums.NotificationTypeForStatus(payload.NewStatus)
	if err != nil {
		return err
	}

	userIDs, err := c.repo.ParticipantUserIDs(ctx, payload.PurchaseID)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	if len(userIDs) == 0 {
		c.logg.Info(logCtx, "no participants to notify")
		return nil
	}

	title, message := statusNotificationCopy(payload)
	link := fmt.Sprintf("/group-purchases/%s", payload.PurchaseID)
	rows := make([]models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, models.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    notificationType,
			Title:   title,
			Message: message,
			Link:    stringPtr(link),
		})
	}
	if err := c.repo.CreateBatch(ctx, rows); err != nil {
		return err
	}

	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
		"purchase_id": payload.PurchaseID.String(),
		"new_status":  payload.NewStatus.String(),
		"recipients":  len(rows),
	}), "participants notified of status change")
	return nil
}

func (c *Consumer) handleNotificationRequested(ctx context.Context, data json.RawMessage, logCtx context.Context) error {
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse notification request payload: %w", err)
	}
	if payload.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	notificationType, err := enums.ParseNotificationType(payload.Type)
	if err != nil {
		notificationType = enums.NotificationTypeSystemAnnouncement
	}

	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  payload.UserID,
		Type:    notificationType,
		Title:   "Group purchase update",
		Message: fmt.Sprintf("There is an update on group purchase %s.", payload.PurchaseID),
		Link:    stringPtr(fmt.Sprintf("/group-purchases/%s", payload.PurchaseID)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "user notified")
	return nil
}

func statusNotificationCopy(payload payloads.GroupPurchaseStatusChangedEvent) (string, string) {
	switch payload.NewStatus {
	case enums.GroupPurchaseStatusFulfilled:
		return "Group purchase fulfilled",
			"Your group purchase reached its target quantity. The vendor order can now be placed."
	case enums.GroupPurchaseStatusExpired:
		return "Group purchase expired",
			"The deadline passed before the target quantity was reached."
	case enums.GroupPurchaseStatusCancelled:
		return "Group purchase cancelled",
			"The creator cancelled this group purchase."
	default:
		return "Group purchase updated",
			fmt.Sprintf("Status changed from %s to %s.", payload.OldStatus, payload.NewStatus)
	}
}

func stringPtr(value string) *string {
	return &value
}
