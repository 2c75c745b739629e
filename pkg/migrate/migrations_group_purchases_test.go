package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGroupPurchaseMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_group_purchases.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no group purchase migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS group_purchases",
		"CHECK (target_quantity > 0)",
		"CHECK (current_quantity >= 0)",
		"CHECK (quantity >= 1)",
		"CONSTRAINT group_purchase_participants_purchase_user_key UNIQUE (group_purchase_id, user_id)",
		"FOREIGN KEY (group_purchase_id) REFERENCES group_purchases(id) ON DELETE CASCADE",
		"version BIGINT NOT NULL DEFAULT 0",
		"DROP TABLE IF EXISTS group_purchase_participants",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationCoversEveryEventType(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_outbox.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no outbox migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"'group_purchase_created'",
		"'group_purchase_status_changed'",
		"'participant_joined'",
		"'participant_left'",
		"'notification_requested'",
		"ux_outbox_events_event_aggregate",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
