package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	CleanupAuditEventsName = "cleanup_audit_events"

	defaultAuditRetentionDays = 30
)

type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask removes audit events older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        CleanupAuditEventsName,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func (t CleanupAuditEventsTask) retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = defaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, reporter MaintenanceReporter) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(_ context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}

		deleted, err := cleaner.DeleteOldEvents(task.retention())
		report(reporter, CleanupAuditEventsName, deleted, err)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		log.Printf("[queue] removed %d audit events older than %s", deleted, task.retention())
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, reporter MaintenanceReporter) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, reporter))
}
