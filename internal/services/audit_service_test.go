package services

import (
	"testing"

	"budgetapp/internal/models"
	"budgetapp/internal/testutil"
)

func TestAuditService_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(db)

	svc.Log("alice", "CREATE_EXPENSE", "expense", 1710063000000, "127.0.0.1", map[string]any{"amount": "12.50"})
	svc.Log("alice", "LOGIN", "user", 0, "127.0.0.1", nil)

	var count int64
	db.Model(&models.AuditLog{}).Where("username = ?", "alice").Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 entries, got %d", count)
	}

	var created models.AuditLog
	if err := db.Where("action = ?", "CREATE_EXPENSE").First(&created).Error; err != nil {
		t.Fatalf("failed to query audit log: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.ResourceID != 1710063000000 || created.Changes != `{"amount":"12.50"}` {
		t.Errorf("unexpected entry %+v", created)
	}

	var login models.AuditLog
	if err := db.Where("action = ?", "LOGIN").First(&login).Error; err != nil {
		t.Fatalf("failed to query audit log: %v", err)
	}
	if login.Changes != "" {
		t.Errorf("expected empty changes, got %q", login.Changes)
	}
}

func TestNopAuditService(t *testing.T) {
	NewNopAuditService().Log("alice", "LOGIN", "user", 0, "", nil)
}
