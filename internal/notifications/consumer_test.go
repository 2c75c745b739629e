package notifications

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gemcircle/gemcircle-backend/pkg/enums"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/outbox/payloads"
)

func testConsumer(repo *fakeRepository) *Consumer {
	return &Consumer{
		repo: repo,
		logg: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func TestHandleStatusChangedFansOutToParticipants(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	repo := &fakeRepository{userIDs: []uuid.UUID{userA, userB}}
	consumer := testConsumer(repo)

	purchaseID := uuid.New()
	payload, err := json.Marshal(payloads.GroupPurchaseStatusChangedEvent{
		PurchaseID: purchaseID,
		OldStatus:  enums.GroupPurchaseStatusOpen,
		NewStatus:  enums.GroupPurchaseStatusFulfilled,
		ChangedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	if err := consumer.handleStatusChanged(context.Background(), payload, context.Background()); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected two notifications got %d", len(repo.created))
	}
	for _, notification := range repo.created {
		if notification.Type != enums.NotificationTypePurchaseFulfilled {
			t.Fatalf("unexpected type %s", notification.Type)
		}
		if notification.Link == nil || *notification.Link != "/group-purchases/"+purchaseID.String() {
			t.Fatalf("unexpected link %v", notification.Link)
		}
	}
	if repo.created[0].UserID != userA || repo.created[1].UserID != userB {
		t.Fatal("notifications must target the participant users")
	}
}

func TestHandleStatusChangedWithoutParticipants(t *testing.T) {
	repo := &fakeRepository{}
	consumer := testConsumer(repo)

	payload, _ := json.Marshal(payloads.GroupPurchaseStatusChangedEvent{
		PurchaseID: uuid.New(),
		OldStatus:  enums.GroupPurchaseStatusOpen,
		NewStatus:  enums.GroupPurchaseStatusExpired,
	})
	if err := consumer.handleStatusChanged(context.Background(), payload, context.Background()); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no notifications got %d", len(repo.created))
	}
}

func TestHandleStatusChangedRejectsNonTerminalStatus(t *testing.T) {
	repo := &fakeRepository{userIDs: []uuid.UUID{uuid.New()}}
	consumer := testConsumer(repo)

	payload, _ := json.Marshal(payloads.GroupPurchaseStatusChangedEvent{
		PurchaseID: uuid.New(),
		OldStatus:  enums.GroupPurchaseStatusOpen,
		NewStatus:  enums.GroupPurchaseStatusOpen,
	})
	if err := consumer.handleStatusChanged(context.Background(), payload, context.Background()); err == nil {
		t.Fatal("expected error for status without notification type")
	}
}

func TestHandleNotificationRequested(t *testing.T) {
	repo := &fakeRepository{}
	consumer := testConsumer(repo)

	userID := uuid.New()
	payload, _ := json.Marshal(payloads.NotificationRequestedEvent{
		PurchaseID: uuid.New(),
		UserID:     userID,
		Type:       string(enums.NotificationTypeSystemAnnouncement),
	})
	if err := consumer.handleNotificationRequested(context.Background(), payload, context.Background()); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one notification got %d", len(repo.created))
	}
	if repo.created[0].UserID != userID {
		t.Fatalf("unexpected user %s", repo.created[0].UserID)
	}
}

func TestStatusNotificationCopy(t *testing.T) {
	cases := []struct {
		status enums.GroupPurchaseStatus
		title  string
	}{
		{enums.GroupPurchaseStatusFulfilled, "Group purchase fulfilled"},
		{enums.GroupPurchaseStatusExpired, "Group purchase expired"},
		{enums.GroupPurchaseStatusCancelled, "Group purchase cancelled"},
	}
	for _, tc := range cases {
		title, message := statusNotificationCopy(payloads.GroupPurchaseStatusChangedEvent{NewStatus: tc.status})
		if title != tc.title {
			t.Fatalf("status %s: unexpected title %q", tc.status, title)
		}
		if message == "" {
			t.Fatalf("status %s: empty message", tc.status)
		}
	}
}
