package api

import (
	"net/http"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/service"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/gin-gonic/gin"
)

// CalendarHandler serves scheduled placements and the iCalendar downloads.
type CalendarHandler struct {
	workspaces service.WorkspaceService
	exports    service.ExportService
}

func NewCalendarHandler(workspaces service.WorkspaceService, exports service.ExportService) *CalendarHandler {
	return &CalendarHandler{workspaces: workspaces, exports: exports}
}

type PlaceRoutineRequest struct {
	RoutineID int64  `json:"routineId" binding:"required"`
	Date      string `json:"date" binding:"required"`
}

// InstanceResponse is a placement with its routine's name, empty when the
// routine was deleted.
type InstanceResponse struct {
	domain.ScheduledInstance
	RoutineName string `json:"routineName,omitempty"`
	Missing     bool   `json:"missing"`
}

func mapInstances(ws *workspace.Workspace, instances []domain.ScheduledInstance) []InstanceResponse {
	resp := make([]InstanceResponse, len(instances))
	for i, si := range instances {
		resp[i] = InstanceResponse{ScheduledInstance: si}
		if r, ok := ws.Routine(si.RoutineID); ok {
			resp[i].RoutineName = r.Name
		} else {
			resp[i].Missing = true
		}
	}
	return resp
}

// ListInstances returns placements on ?date=, within ?from=&to=, or all.
// GET /api/v1/calendar/instances
func (h *CalendarHandler) ListInstances(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}

	var instances []domain.ScheduledInstance
	switch {
	case c.Query("date") != "":
		instances = ws.InstancesOn(c.Query("date"))
	case c.Query("from") != "" || c.Query("to") != "":
		var err error
		instances, err = ws.InstancesBetween(c.Query("from"), c.Query("to"))
		if err != nil {
			respondWithError(c, err)
			return
		}
	default:
		instances = ws.Instances()
	}
	c.JSON(http.StatusOK, mapInstances(ws, instances))
}

// PlaceRoutine puts a routine on a date.
// POST /api/v1/calendar/instances
func (h *CalendarHandler) PlaceRoutine(c *gin.Context) {
	var req PlaceRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	inst, err := ws.PlaceOnDate(req.RoutineID, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inst)
}

// UpdateInstance PATCH /api/v1/calendar/instances/:instanceId
func (h *CalendarHandler) UpdateInstance(c *gin.Context) {
	var patch domain.InstancePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	inst, err := ws.UpdateInstance(c.Param("instanceId"), patch)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

// RemoveInstance DELETE /api/v1/calendar/instances/:instanceId
func (h *CalendarHandler) RemoveInstance(c *gin.Context) {
	ws, ok := openWorkspace(c, h.workspaces)
	if !ok {
		return
	}
	if err := ws.RemoveInstance(c.Param("instanceId")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportCalendar downloads the placements as routine_schedule.ics.
// GET /api/v1/calendar/export.ics
func (h *CalendarHandler) ExportCalendar(c *gin.Context) {
	h.download(c, service.ExportCalendar)
}

// ExportSchedules downloads the routine-level recurring schedules.
// GET /api/v1/calendar/routines.ics
func (h *CalendarHandler) ExportSchedules(c *gin.Context) {
	h.download(c, service.ExportSchedule)
}

func (h *CalendarHandler) download(c *gin.Context, kind service.ExportKind) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	file, err := h.exports.Render(c.Request.Context(), owner, kind)
	if err != nil {
		respondWithError(c, err)
		return
	}
	sendFile(c, file)
}

// sendFile writes an export as an attachment.
func sendFile(c *gin.Context, file service.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
