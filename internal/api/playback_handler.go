package api

import (
	"context"
	"net/http"

	"alcyxob/routine-builder/internal/service"

	"github.com/gin-gonic/gin"
)

// PlaybackHandler drives step-by-step playback of a routine.
type PlaybackHandler struct {
	playback service.PlaybackService
}

func NewPlaybackHandler(playback service.PlaybackService) *PlaybackHandler {
	return &PlaybackHandler{playback: playback}
}

type StartPlaybackRequest struct {
	RoutineID int64 `json:"routineId" binding:"required"`
}

// Start opens a session on the routine's first step.
// POST /api/v1/playback
func (h *PlaybackHandler) Start(c *gin.Context) {
	var req StartPlaybackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	view, err := h.playback.Start(c.Request.Context(), owner, req.RoutineID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Current GET /api/v1/playback/:sessionId
func (h *PlaybackHandler) Current(c *gin.Context) {
	h.step(c, h.playback.Current)
}

// Next POST /api/v1/playback/:sessionId/next
func (h *PlaybackHandler) Next(c *gin.Context) {
	h.step(c, h.playback.Advance)
}

// Previous POST /api/v1/playback/:sessionId/previous
func (h *PlaybackHandler) Previous(c *gin.Context) {
	h.step(c, h.playback.Retreat)
}

// Stop DELETE /api/v1/playback/:sessionId
func (h *PlaybackHandler) Stop(c *gin.Context) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	if err := h.playback.Stop(c.Request.Context(), owner, c.Param("sessionId")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlaybackHandler) step(c *gin.Context, move func(ctx context.Context, owner, sessionID string) (service.PlaybackView, error)) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return
	}
	view, err := move(c.Request.Context(), owner, c.Param("sessionId"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
