package api

import (
	"fmt"
	"net/http"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/service"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/gin-gonic/gin"
)

// RoutineHandler serves the routine tree: routines, sections, the exercise
// references inside them and every way of moving those around.
type RoutineHandler struct {
	workspaces service.WorkspaceService
}

func NewRoutineHandler(workspaces service.WorkspaceService) *RoutineHandler {
	return &RoutineHandler{workspaces: workspaces}
}

// --- DTOs ---

type CreateRoutineRequest struct {
	Name string `json:"name"`
}

type CreateSectionRequest struct {
	Name string `json:"name"`
}

// RoutineSummary is a list entry with the total number of references.
type RoutineSummary struct {
	domain.Routine
	ExerciseCount int `json:"exerciseCount"`
}

type ReorderRequest struct {
	From int `json:"from" binding:"min=0"`
	To   int `json:"to" binding:"min=0"`
}

// ToggleItemRequest adds or removes an exercise in the routine's top-level
// list, or in a section when SectionID is set.
type ToggleItemRequest struct {
	SectionID  int64 `json:"sectionId"`
	ExerciseID int64 `json:"exerciseId" binding:"required"`
}

type NewItemRequest struct {
	SectionID int64  `json:"sectionId"`
	Title     string `json:"title" binding:"required"`
}

type MoveItemRequest struct {
	SectionID int64 `json:"sectionId"`
	From      int   `json:"from" binding:"min=0"`
	To        int   `json:"to" binding:"min=0"`
}

// MoveAcrossRequest moves a reference between any two containers. A missing
// index appends.
type MoveAcrossRequest struct {
	Source domain.Container `json:"source"`
	From   int              `json:"from" binding:"min=0"`
	Target domain.Container `json:"target"`
	Index  *int             `json:"index"`
}

// DragPayloadRequest is the wire form of a drag payload.
type DragPayloadRequest struct {
	Type       string            `json:"type" binding:"required,oneof=routine exercise"`
	RoutineID  int64             `json:"routineId"`
	Source     *domain.Container `json:"source"`
	Index      int               `json:"index"`
	ExerciseID int64             `json:"exerciseId"`
}

// DropTargetRequest is the wire form of a drop target.
type DropTargetRequest struct {
	Type      string            `json:"type" binding:"required,oneof=routine date container"`
	Index     *int              `json:"index"`
	Date      string            `json:"date"`
	Container *domain.Container `json:"container"`
}

type DropRequest struct {
	Payload DragPayloadRequest `json:"payload"`
	Target  DropTargetRequest  `json:"target"`
}

func (r DragPayloadRequest) toDomain() (domain.DragPayload, error) {
	switch r.Type {
	case "routine":
		return domain.RoutineDrag{RoutineID: r.RoutineID}, nil
	case "exercise":
		if r.Source == nil {
			return nil, fmt.Errorf("exercise payload needs a source container")
		}
		return domain.ExerciseDrag{Source: *r.Source, Index: r.Index, ExerciseID: r.ExerciseID}, nil
	}
	return nil, fmt.Errorf("unknown payload type %q", r.Type)
}

func (r DropTargetRequest) toDomain() (domain.DropTarget, error) {
	switch r.Type {
	case "routine":
		return domain.RoutineSlot{Index: indexOrEnd(r.Index)}, nil
	case "date":
		return domain.DateSlot{Date: r.Date}, nil
	case "container":
		if r.Container == nil {
			return nil, fmt.Errorf("container target needs a container")
		}
		return domain.ContainerSlot{Container: *r.Container, Index: indexOrEnd(r.Index)}, nil
	}
	return nil, fmt.Errorf("unknown target type %q", r.Type)
}

func indexOrEnd(i *int) int {
	if i == nil {
		return domain.EndOfList
	}
	return *i
}

// --- Routines ---

// ListRoutines returns every routine in display order.
// GET /api/v1/routines
func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	routines := ws.Routines()
	resp := make([]RoutineSummary, len(routines))
	for i, r := range routines {
		resp[i] = RoutineSummary{Routine: r, ExerciseCount: r.ExerciseCount()}
	}
	c.JSON(http.StatusOK, resp)
}

// CreateRoutine puts a new routine at the top of the list.
// POST /api/v1/routines
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	var req CreateRoutineRequest
	// An empty body is fine, the routine gets the default name.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	r, err := ws.CreateRoutine(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GetRoutine GET /api/v1/routines/:routineId
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	id, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	r, found := ws.Routine(id)
	if !found {
		respondWithError(c, workspace.ErrRoutineNotFound)
		return
	}
	c.JSON(http.StatusOK, RoutineSummary{Routine: r, ExerciseCount: r.ExerciseCount()})
}

// UpdateRoutine renames or expands/collapses a routine.
// PATCH /api/v1/routines/:routineId
func (h *RoutineHandler) UpdateRoutine(c *gin.Context) {
	id, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	var patch domain.RoutinePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	r, err := ws.UpdateRoutine(id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteRoutine DELETE /api/v1/routines/:routineId
func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	id, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.DeleteRoutine(id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderRoutines POST /api/v1/routines/reorder
func (h *RoutineHandler) ReorderRoutines(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.ReorderRoutines(req.From, req.To); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws.Routines())
}

// --- Schedules ---

// UpdateSchedule edits the routine's own recurring schedule.
// PUT /api/v1/routines/:routineId/schedule
func (h *RoutineHandler) UpdateSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	var patch domain.SchedulePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	s, err := ws.UpdateSchedule(id, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ClearSchedule DELETE /api/v1/routines/:routineId/schedule
func (h *RoutineHandler) ClearSchedule(c *gin.Context) {
	id, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.ClearSchedule(id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Sections ---

// AddSection POST /api/v1/routines/:routineId/sections
func (h *RoutineHandler) AddSection(c *gin.Context) {
	id, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	var req CreateSectionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	s, err := ws.AddSection(id, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// UpdateSection PATCH /api/v1/routines/:routineId/sections/:sectionId
func (h *RoutineHandler) UpdateSection(c *gin.Context) {
	routineID, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	var patch domain.SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	s, err := ws.UpdateSection(routineID, sectionID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DeleteSection DELETE /api/v1/routines/:routineId/sections/:sectionId
func (h *RoutineHandler) DeleteSection(c *gin.Context) {
	routineID, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	sectionID, ok := parseIDParam(c, "sectionId")
	if !ok {
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.DeleteSection(routineID, sectionID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Exercise references ---

// ToggleItem adds the exercise to the container, or removes its first
// reference when already present.
// POST /api/v1/routines/:routineId/items/toggle
func (h *RoutineHandler) ToggleItem(c *gin.Context) {
	routineID, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	var req ToggleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	added, err := ws.ToggleExercise(domain.Container{RoutineID: routineID, SectionID: req.SectionID}, req.ExerciseID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	r, _ := ws.Routine(routineID)
	c.JSON(http.StatusOK, gin.H{"added": added, "routine": r})
}

// NewItem creates an exercise with just a title and adds it to the container.
// POST /api/v1/routines/:routineId/items/new
func (h *RoutineHandler) NewItem(c *gin.Context) {
	routineID, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	var req NewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	ex, err := ws.AddNewExercise(domain.Container{RoutineID: routineID, SectionID: req.SectionID}, req.Title)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(ex))
}

// MoveItem reorders a reference inside one container.
// POST /api/v1/routines/:routineId/items/move
func (h *RoutineHandler) MoveItem(c *gin.Context) {
	routineID, ok := parseIDParam(c, "routineId")
	if !ok {
		return
	}
	var req MoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.MoveWithin(domain.Container{RoutineID: routineID, SectionID: req.SectionID}, req.From, req.To); err != nil {
		respondWithError(c, err)
		return
	}
	r, _ := ws.Routine(routineID)
	c.JSON(http.StatusOK, r)
}

// MoveAcross moves a reference between containers, possibly across routines.
// POST /api/v1/moves
func (h *RoutineHandler) MoveAcross(c *gin.Context) {
	var req MoveAcrossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	res, err := ws.MoveAcross(req.Source, req.From, req.Target, indexOrEnd(req.Index))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Drop applies a drag-and-drop gesture.
// POST /api/v1/drops
func (h *RoutineHandler) Drop(c *gin.Context) {
	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	payload, err := req.Payload.toDomain()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	target, err := req.Target.toDomain()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	res, err := ws.Drop(payload, target)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
