package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ExportController downloads every entry of the owner in the poche JSON
// format, which the poche importer reads back.
type ExportController struct {
	exporter Exporter
	audit    ExportAuditor
}

func NewExportController(exporter Exporter, audit ExportAuditor) *ExportController {
	return &ExportController{exporter: exporter, audit: audit}
}

// Export renders the full export before sending so a storage error still
// produces a proper error response.
// GET /api/export
func (ec *ExportController) Export(c *gin.Context) {
	userID := GetUserID(c)

	var buf bytes.Buffer
	result, err := ec.exporter.Export(c.Request.Context(), &buf, userID)
	if ec.audit != nil {
		ec.audit.LogExport(userID, "json", fmt.Sprintf("Exported %d entries", result.EntriesProcessed), err)
	}
	if err != nil {
		respondInternalError(c, err, "export entries")
		return
	}

	filename := fmt.Sprintf("readlater-export-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}
