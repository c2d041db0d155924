package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/entities"
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// GetAuditEvents returns paginated audit events, optionally of one type.
// GET /api/audit?type=import&page=1&limit=25
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, limit := parsePage(c, 25, 100)
	offset := (page - 1) * limit
	userID := GetUserID(c)

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.events.GetEventsByType(entities.AuditEventType(eventType), userID, limit, offset)
	} else {
		events, total, err = ac.events.GetEvents(userID, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}
