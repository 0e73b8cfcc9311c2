package api

import (
	"net/http"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// TagHandler serves the tag registry.
type TagHandler struct {
	workspaces service.WorkspaceService
}

func NewTagHandler(workspaces service.WorkspaceService) *TagHandler {
	return &TagHandler{workspaces: workspaces}
}

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

// ListTags returns the registry with usage counts.
// GET /api/v1/tags
func (h *TagHandler) ListTags(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Tags())
}

// Palette lists the allowed color tokens.
// GET /api/v1/tags/palette
func (h *TagHandler) Palette(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Palette)
}

// CreateTag registers a tag.
// POST /api/v1/tags
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	tag, err := ws.CreateTag(req.Name, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// DeleteTag removes a tag and strips it from every exercise.
// DELETE /api/v1/tags/:name
func (h *TagHandler) DeleteTag(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.DeleteTag(c.Param("name")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
