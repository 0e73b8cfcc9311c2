package api

import (
	"net/http"
	"strconv"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/service"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise catalog.
type ExerciseHandler struct {
	workspaces service.WorkspaceService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(workspaces service.WorkspaceService) *ExerciseHandler {
	return &ExerciseHandler{workspaces: workspaces}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	ID          int64    `json:"id"` // optional, assigned when zero
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	VideoURL    string   `json:"videoUrl" binding:"omitempty,url"`
	Rating      int      `json:"rating"`
}

// ExerciseResponse is the DTO for returning exercise details together with
// the derived player link.
type ExerciseResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	VideoURL    string   `json:"videoUrl"`
	Rating      int      `json:"rating"`
	EmbedURL    string   `json:"embedUrl,omitempty"`
}

type ExerciseGroupResponse struct {
	Tag       domain.Tag         `json:"tag"`
	Exercises []ExerciseResponse `json:"exercises"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:          ex.ID,
		Title:       ex.Title,
		Description: ex.Description,
		Categories:  ex.Tags,
		VideoURL:    ex.MediaLink,
		Rating:      ex.Rating,
		EmbedURL:    domain.EmbedURL(ex.MediaLink),
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(ex)
	}
	return responses
}

// parseIDParam reads an integer path parameter or aborts with 400.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return 0, false
	}
	return id, true
}

func catalogQuery(c *gin.Context) workspace.CatalogQuery {
	return workspace.CatalogQuery{Search: c.Query("search"), Tag: c.Query("tag")}
}

// --- Handler Methods ---

// ListExercises returns the catalog, filtered by ?search= and ?tag=.
// GET /api/v1/exercises
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(ws.Exercises(catalogQuery(c))))
}

// GroupedExercises returns the catalog grouped by tag in registry order.
// GET /api/v1/exercises/grouped
func (h *ExerciseHandler) GroupedExercises(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	groups := ws.GroupedExercises(catalogQuery(c))
	resp := make([]ExerciseGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = ExerciseGroupResponse{Tag: g.Tag, Exercises: MapExercisesToResponse(g.Exercises)}
	}
	c.JSON(http.StatusOK, resp)
}

// CreateExercise adds an exercise to the catalog.
// POST /api/v1/exercises
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}

	ex, err := ws.CreateExercise(workspace.ExerciseInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Categories,
		MediaLink:   req.VideoURL,
		Rating:      req.Rating,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(ex))
}

// GetExercise returns one exercise.
// GET /api/v1/exercises/:exerciseId
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	ex, found := ws.Exercise(id)
	if !found {
		respondWithError(c, workspace.ErrExerciseNotFound)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(ex))
}

// UpdateExercise patches the given fields.
// PATCH /api/v1/exercises/:exerciseId
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}
	var patch domain.ExercisePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}

	ex, err := ws.UpdateExercise(id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(ex))
}

// DeleteExercise removes an exercise. References to it in routines stay and
// render as missing.
// DELETE /api/v1/exercises/:exerciseId
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	id, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.DeleteExercise(id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
