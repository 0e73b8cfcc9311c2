package api

import (
	"io"
	"net/http"

	"alcyxob/routine-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportBytes bounds an uploaded backup.
const maxImportBytes = 16 << 20

// DataHandler covers whole-workspace operations: backup, restore, clear,
// publishing and the persistence status.
type DataHandler struct {
	workspaces service.WorkspaceService
	exports    service.ExportService
}

func NewDataHandler(workspaces service.WorkspaceService, exports service.ExportService) *DataHandler {
	return &DataHandler{workspaces: workspaces, exports: exports}
}

// Export downloads the full backup document.
// GET /api/v1/data/export
func (h *DataHandler) Export(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	file, err := h.exports.Render(c.Request.Context(), owner, service.ExportBackup)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sendFile(c, file)
}

// Import replaces the workspace with an uploaded backup. A malformed
// document is rejected and nothing changes.
// POST /api/v1/data/import
func (h *DataHandler) Import(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Unable to read request body.")
		return
	}
	if err := h.exports.Restore(c.Request.Context(), owner, body); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Data imported successfully"})
}

// Clear empties exercises, routines and the calendar. Tags are kept.
// DELETE /api/v1/data
func (h *DataHandler) Clear(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	if err := h.exports.Clear(c.Request.Context(), owner); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Publish uploads an export (calendar, schedule or backup) to object storage
// and returns a temporary link.
// POST /api/v1/exports/:kind/publish
func (h *DataHandler) Publish(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	published, err := h.exports.Publish(c.Request.Context(), owner, service.ExportKind(c.Param("kind")))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, published)
}

// Status reports whether the last save succeeded.
// GET /api/v1/status
func (h *DataHandler) Status(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	status, err := h.workspaces.Status(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Flush writes pending edits immediately.
// POST /api/v1/status/flush
func (h *DataHandler) Flush(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	// Save failures are reported through the status, not as a request error.
	_ = h.workspaces.Flush(c.Request.Context(), owner)
	status, err := h.workspaces.Status(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
