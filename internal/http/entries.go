package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/auth"
	"github.com/mrlokans/readlater/internal/database/entries"
	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/exporters"
	"github.com/mrlokans/readlater/internal/utils"
)

// EntriesController exposes the dispatcher verbs and the entry listings.
type EntriesController struct {
	dispatcher Dispatcher
	reader     EntryReader
}

func NewEntriesController(dispatcher Dispatcher, reader EntryReader) *EntriesController {
	return &EntriesController{dispatcher: dispatcher, reader: reader}
}

type addEntryRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}

type addTagsRequest struct {
	Value string `json:"value" form:"value" binding:"required"`
}

func (ec *EntriesController) dispatch(c *gin.Context, req actions.Request) (actions.Outcome, error) {
	req.OwnerID = GetUserID(c)
	return ec.dispatcher.Dispatch(c.Request.Context(), req)
}

// Add saves a link.
// POST /api/entries
func (ec *EntriesController) Add(c *gin.Context) {
	var req addEntryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}

	out, err := ec.dispatch(c, actions.Request{
		Verb:        actions.VerbAdd,
		URL:         req.URL,
		Credentials: auth.GetCredentials(c),
	})
	respondOutcome(c, http.StatusCreated, out, err)
}

// List returns one of the home, fav or archive views, or the entries carrying a tag.
// GET /api/entries?view=home|fav|archive&tag=ID
func (ec *EntriesController) List(c *gin.Context) {
	tagID, ok := parseOptionalQueryID(c, "tag")
	if !ok {
		return
	}

	var (
		list []entities.Entry
		err  error
	)
	if tagID > 0 {
		list, err = ec.reader.ListByTag(c.Request.Context(), GetUserID(c), tagID)
	} else {
		list, err = ec.reader.ListByView(c.Request.Context(), GetUserID(c), entries.ParseView(c.Query("view")))
	}
	if err != nil {
		respondInternalError(c, err, "list entries")
		return
	}
	if list == nil {
		list = []entities.Entry{}
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one entry with its tags.
// GET /api/entries/:id
func (ec *EntriesController) Get(c *gin.Context) {
	entry, ok := ec.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Markdown downloads one entry converted to markdown.
// GET /api/entries/:id/markdown
func (ec *EntriesController) Markdown(c *gin.Context) {
	entry, ok := ec.lookup(c)
	if !ok {
		return
	}

	content, err := exporters.GenerateMarkdown(entry)
	if err != nil {
		respondInternalError(c, err, "render markdown")
		return
	}

	filename := utils.SanitizeFilename(entry.Title) + ".md"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}

func (ec *EntriesController) lookup(c *gin.Context) (*entities.Entry, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	entry, err := ec.reader.RetrieveOneByID(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get entry")
		return nil, false
	}
	if entry == nil {
		respondNotFound(c, "entry")
		return nil, false
	}
	return entry, true
}

// Delete removes an entry. Unknown ids succeed silently.
// DELETE /api/entries/:id
func (ec *EntriesController) Delete(c *gin.Context) {
	ec.onEntry(c, actions.VerbDelete)
}

// ToggleFavorite flips the favorite flag.
// POST /api/entries/:id/favorite
func (ec *EntriesController) ToggleFavorite(c *gin.Context) {
	ec.onEntry(c, actions.VerbToggleFavorite)
}

// ToggleArchive flips the read flag.
// POST /api/entries/:id/archive
func (ec *EntriesController) ToggleArchive(c *gin.Context) {
	ec.onEntry(c, actions.VerbToggleArchive)
}

func (ec *EntriesController) onEntry(c *gin.Context, verb actions.Verb) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := ec.dispatch(c, actions.Request{Verb: verb, EntryID: id})
	respondOutcome(c, http.StatusOK, out, err)
}

// ArchiveAll marks every unread entry as read.
// POST /api/entries/archive-all
func (ec *EntriesController) ArchiveAll(c *gin.Context) {
	out, err := ec.dispatch(c, actions.Request{Verb: actions.VerbArchiveAll})
	respondOutcome(c, http.StatusOK, out, err)
}

// AddTags attaches comma separated tag values, creating missing tags.
// POST /api/entries/:id/tags
func (ec *EntriesController) AddTags(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addTagsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "value is required")
		return
	}

	out, err := ec.dispatch(c, actions.Request{
		Verb:      actions.VerbAddTag,
		EntryID:   id,
		TagValues: req.Value,
	})
	respondOutcome(c, http.StatusOK, out, err)
}

// RemoveTag detaches a tag. The tag itself is kept.
// DELETE /api/entries/:id/tags/:tagId
func (ec *EntriesController) RemoveTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		return
	}

	out, err := ec.dispatch(c, actions.Request{
		Verb:    actions.VerbRemoveTag,
		EntryID: id,
		TagID:   tagID,
	})
	respondOutcome(c, http.StatusOK, out, err)
}
