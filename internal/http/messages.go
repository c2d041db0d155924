package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/messages"
)

type MessagesController struct {
	queue MessageDrainer
}

func NewMessagesController(queue MessageDrainer) *MessagesController {
	return &MessagesController{queue: queue}
}

// Drain returns the pending status messages of this session and forgets them.
// GET /api/messages
func (mc *MessagesController) Drain(c *gin.Context) {
	pending := mc.queue.Drain(c.Request.Context())
	if pending == nil {
		pending = []messages.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": pending})
}
