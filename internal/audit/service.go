package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/readlater/internal/database/audit"
	"github.com/mrlokans/readlater/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogAdd records a saved link. replacedID is the id of the older duplicate
// that the add superseded, 0 when there was none.
func (s *Service) LogAdd(userID, entryID uint, url string, replacedID uint) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAdd,
		Action:      "entry_add",
		Description: truncate("Saved "+url, 500),
		EntityID:    &entryID,
		Status:      entities.AuditStatusSuccess,
	}
	if replacedID != 0 {
		event.Action = "entry_replace"
		event.Metadata = marshalMetadata(map[string]any{"replaced_id": replacedID})
	}

	s.LogAsync(event)
}

// LogDelete records a deleted entry.
func (s *Service) LogDelete(userID, entryID uint) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDelete,
		Action:      "entry_delete",
		Description: fmt.Sprintf("Deleted entry %d", entryID),
		EntityID:    &entryID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogImport records an import run.
func (s *Service) LogImport(userID uint, provider, description string, imported, skipped int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventImport,
		Action:      provider + "_import",
		Description: description,
		Metadata: marshalMetadata(map[string]any{
			"imported": imported,
			"skipped":  skipped,
		}),
		Status: entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogExport records an export event.
func (s *Service) LogExport(userID uint, format, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventExport,
		Action:      format + "_export",
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogMaintenance records a background cleanup run. It is not tied to a user.
func (s *Service) LogMaintenance(action string, affected int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      action,
		Description: fmt.Sprintf("%s affected %d rows", action, affected),
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func marshalMetadata(metadata map[string]any) string {
	data, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(data)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
