package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

const RefreshVersionName = "refresh_version"

// VersionRefresher re-downloads a cached version value.
type VersionRefresher interface {
	Refresh(ctx context.Context, name string) (string, error)
}

// RefreshVersionTask refreshes one entry of the version cache, e.g. "prod".
type RefreshVersionTask struct {
	Name string `json:"name"`
}

func (t RefreshVersionTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        RefreshVersionName,
		MaxAttempts: 3,
		Backoff:     10 * time.Minute,
		Timeout:     30 * time.Second,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RefreshVersionProcessor(refresher VersionRefresher, reporter MaintenanceReporter) backlite.QueueProcessor[RefreshVersionTask] {
	return func(ctx context.Context, task RefreshVersionTask) error {
		if refresher == nil {
			return errors.New("version cache not configured")
		}

		value, err := refresher.Refresh(ctx, task.Name)
		if err != nil {
			report(reporter, RefreshVersionName, 0, err)
			return fmt.Errorf("refresh version %q: %w", task.Name, err)
		}

		log.Printf("[queue] version %s is %s", task.Name, value)
		return nil
	}
}

func NewRefreshVersionQueue(refresher VersionRefresher, reporter MaintenanceReporter) backlite.Queue {
	return backlite.NewQueue(RefreshVersionProcessor(refresher, reporter))
}
