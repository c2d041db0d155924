package entities

import "time"

type AuditEventType string

const (
	AuditEventAdd         AuditEventType = "add"
	AuditEventDelete      AuditEventType = "delete"
	AuditEventImport      AuditEventType = "import"
	AuditEventExport      AuditEventType = "export"
	AuditEventMaintenance AuditEventType = "maintenance"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "pocket_import", "entry_delete"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
