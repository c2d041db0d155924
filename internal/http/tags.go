package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/entities"
)

type TagsController struct {
	store TagLister
}

func NewTagsController(store TagLister) *TagsController {
	return &TagsController{store: store}
}

// GetAllTags returns the tags attached to any entry of the current user.
// GET /api/tags
func (tc *TagsController) GetAllTags(c *gin.Context) {
	tags, err := tc.store.ListTagsForUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list tags")
		return
	}
	if tags == nil {
		tags = []entities.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}
