package http

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/auth"
	"github.com/mrlokans/readlater/internal/importers"
)

// ImportController accepts export files from other read-later services.
type ImportController struct {
	importer    Importer
	archive     ImportArchive
	sessions    ImportSessionLister
	maxFileSize int64
}

// NewImportController wires the controller. archive and sessions may be nil.
func NewImportController(importer Importer, archive ImportArchive, sessions ImportSessionLister, maxFileSize int64) *ImportController {
	return &ImportController{
		importer:    importer,
		archive:     archive,
		sessions:    sessions,
		maxFileSize: maxFileSize,
	}
}

// Import reads the multipart "file" field in the provider's format.
// POST /api/import/:provider
func (ic *ImportController) Import(c *gin.Context) {
	provider, err := importers.ParseProvider(c.Param("provider"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Unknown import provider.", "unknown_provider")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return
	}
	if ic.maxFileSize > 0 && fileHeader.Size > ic.maxFileSize {
		respondError(c, http.StatusRequestEntityTooLarge, "file too large", "too_large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondInternalError(c, err, "read uploaded file")
		return
	}

	if ic.archive != nil {
		if _, err := ic.archive.SaveImport(string(provider), fileHeader.Filename, data); err != nil {
			log.Printf("Failed to archive %s upload %q: %v", provider, fileHeader.Filename, err)
		}
	}

	userID := GetUserID(c)
	result, err := ic.importer.Import(c.Request.Context(), provider, bytes.NewReader(data), userID, auth.GetCredentials(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, importers.ErrMalformedFile):
		respondError(c, http.StatusUnprocessableEntity, result.Message.Text, "malformed_file")
	default:
		// Partial results are still reported when the run was interrupted.
		log.Printf("Import from %s for user %d stopped: %v", provider, userID, err)
		c.JSON(http.StatusInternalServerError, result)
	}
}

// Providers lists the accepted provider names.
// GET /api/import/providers
func (ic *ImportController) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": importers.Providers()})
}

// Sessions lists past import runs of the current user.
// GET /api/import/sessions
func (ic *ImportController) Sessions(c *gin.Context) {
	if ic.sessions == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	sessions, err := ic.sessions.GetImportSessionsForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list import sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}
