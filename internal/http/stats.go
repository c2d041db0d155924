package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	stats StatsReader
}

func NewStatsController(stats StatsReader) *StatsController {
	return &StatsController{stats: stats}
}

// GetStats returns the entry counters of the current user.
// GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	total, unread, err := sc.stats.GetStatsForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "entry stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"unread":   unread,
		"archived": total - unread,
	})
}
