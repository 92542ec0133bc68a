package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"budgetapp/internal/logger"
	"budgetapp/internal/models"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer backed by the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(username, action, resourceType string, resourceID int64, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		Username:     username,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"username", username,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// nopAudit discards every event. It is used with the memory store backend.
type nopAudit struct{}

// NewNopAuditService returns an AuditServicer that records nothing.
func NewNopAuditService() AuditServicer {
	return nopAudit{}
}

func (nopAudit) Log(string, string, string, int64, string, map[string]any) {}
