package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TaskStatusReader is satisfied by *tasks.Client.
type TaskStatusReader interface {
	Status(ctx context.Context, id string) (backlite.TaskStatus, error)
}

// TasksController triggers and inspects maintenance jobs.
type TasksController struct {
	statuses TaskStatusReader
	runner   MaintenanceRunner
}

func NewTasksController(statuses TaskStatusReader, runner MaintenanceRunner) *TasksController {
	return &TasksController{statuses: statuses, runner: runner}
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.statuses.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunMaintenance enqueues tag cleanup, audit retention and version refresh.
// POST /api/maintenance/run
func (tc *TasksController) RunMaintenance(c *gin.Context) {
	ids, err := tc.runner.RunNow(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "run maintenance")
		return
	}
	respondAccepted(c, "maintenance enqueued", gin.H{"task_ids": ids})
}

// MaintenanceStatus reports when the next scheduled run happens.
// GET /api/maintenance
func (tc *TasksController) MaintenanceStatus(c *gin.Context) {
	next := tc.runner.NextRun()
	c.JSON(http.StatusOK, gin.H{
		"scheduled": tc.runner.IsRunning(),
		"next_run":  next,
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
