package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/version"
)

type VersionController struct {
	cache VersionCache
}

func NewVersionController(cache VersionCache) *VersionController {
	return &VersionController{cache: cache}
}

// Latest returns the cached latest version for a channel such as "prod" or "dev".
// GET /api/version/:which
func (vc *VersionController) Latest(c *gin.Context) {
	which := c.Param("which")
	value, err := vc.cache.Get(c.Request.Context(), which)
	switch {
	case errors.Is(err, version.ErrInvalidName):
		respondBadRequest(c, "invalid version name")
	case err != nil:
		log.Printf("Version lookup for %s failed: %v", which, err)
		respondError(c, http.StatusBadGateway, "version unavailable", "upstream")
	default:
		c.JSON(http.StatusOK, gin.H{"name": which, "version": value})
	}
}

// EmptyCache removes every cached value.
// POST /api/cache/empty
func (vc *VersionController) EmptyCache(c *gin.Context) {
	removed, err := vc.cache.Clear()
	if err != nil {
		respondInternalError(c, err, "empty cache")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "cache emptied", Data: gin.H{"removed": removed}})
}
