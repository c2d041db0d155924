package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const CleanupOrphanTagsName = "cleanup_orphan_tags"

// OrphanTagsCleaner deletes tags no longer attached to any entry.
type OrphanTagsCleaner interface {
	DeleteOrphanTags(ctx context.Context) (int64, error)
}

// MaintenanceReporter records the outcome of a maintenance job.
type MaintenanceReporter interface {
	LogMaintenance(action string, affected int64, err error)
}

// CleanupOrphanTagsTask drops tags left behind by deleted or superseded entries.
type CleanupOrphanTagsTask struct{}

func (t CleanupOrphanTagsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        CleanupOrphanTagsName,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupOrphanTagsProcessor(cleaner OrphanTagsCleaner, reporter MaintenanceReporter) backlite.QueueProcessor[CleanupOrphanTagsTask] {
	return func(ctx context.Context, _ CleanupOrphanTagsTask) error {
		if cleaner == nil {
			return errors.New("orphan tags cleaner not configured")
		}

		deleted, err := cleaner.DeleteOrphanTags(ctx)
		report(reporter, CleanupOrphanTagsName, deleted, err)
		if err != nil {
			return fmt.Errorf("cleanup orphan tags: %w", err)
		}

		log.Printf("[queue] removed %d orphan tags", deleted)
		return nil
	}
}

func NewCleanupOrphanTagsQueue(cleaner OrphanTagsCleaner, reporter MaintenanceReporter) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanTagsProcessor(cleaner, reporter))
}

func report(reporter MaintenanceReporter, action string, affected int64, err error) {
	if reporter != nil {
		reporter.LogMaintenance(action, affected, err)
	}
}
