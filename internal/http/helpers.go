package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/actions"
	"github.com/mrlokans/readlater/internal/auth"
)

// GetUserID returns the owner resolved by the auth middleware.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error code
}

type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: "not_found"})
}

// respondInternalError logs err and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
}

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// --- Success Response Helpers ---

func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// respondOutcome writes a dispatcher outcome, mapping its error onto a status.
func respondOutcome(c *gin.Context, status int, out actions.Outcome, err error) {
	switch {
	case err == nil:
		c.JSON(status, out)
	case errors.Is(err, actions.ErrInvalidURL):
		respondError(c, http.StatusBadRequest, out.Message.Text, "invalid_url")
	case errors.Is(err, actions.ErrUnknownVerb):
		respondError(c, http.StatusBadRequest, out.Message.Text, "unknown_verb")
	case errors.Is(err, actions.ErrEntryNotFound):
		respondError(c, http.StatusNotFound, out.Message.Text, "not_found")
	case errors.Is(err, actions.ErrInsertFailed):
		log.Printf("Add failed: %v", err)
		respondError(c, http.StatusInternalServerError, out.Message.Text, "insert_failed")
	default:
		log.Printf("Action %s failed: %v", out.Verb, err)
		respondError(c, http.StatusInternalServerError, out.Message.Text, "storage")
	}
}

// --- Parameter Parsing ---

// parseIDParam responds with 400 and returns false when the URL parameter is
// not an unsigned integer.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parseOptionalQueryID returns 0 for a missing query parameter.
func parseOptionalQueryID(c *gin.Context, paramName string) (uint, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

func parsePage(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}
