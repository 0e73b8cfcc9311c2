package api

import (
	"errors"
	"net/http"
	"strings"

	"alcyxob/routine-builder/internal/domain"
	"alcyxob/routine-builder/internal/playback"
	"alcyxob/routine-builder/internal/service"
	"alcyxob/routine-builder/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ContextOwnerIDKey holds the id of the workspace owner for the request.
const ContextOwnerIDKey = "ownerID"

// AuthMiddleware resolves the workspace owner. When token auth is enabled
// every request needs a valid bearer token carrying the owner in its uid
// claim. Otherwise all requests act on defaultOwner.
func AuthMiddleware(auth service.AuthService, defaultOwner string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Enabled() {
			c.Set(ContextOwnerIDKey, defaultOwner)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		owner, err := auth.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		c.Set(ContextOwnerIDKey, owner)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// respondWithError maps service and model errors onto HTTP status codes.
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrMalformedImport),
		errors.Is(err, workspace.ErrIndexOutOfRange),
		errors.Is(err, workspace.ErrInvalidDrop),
		errors.Is(err, service.ErrInvalidOwner):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, workspace.ErrExerciseNotFound),
		errors.Is(err, workspace.ErrTagNotFound),
		errors.Is(err, workspace.ErrRoutineNotFound),
		errors.Is(err, workspace.ErrInstanceNotFound),
		errors.Is(err, workspace.ErrContainerNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUnknownExportKind):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, playback.ErrEmptyPlayback):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrWorkspaceUnavailable),
		errors.Is(err, service.ErrShuttingDown),
		errors.Is(err, service.ErrPublishingDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// Helper function to get the owner id from context (used by handlers)
func getOwnerFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextOwnerIDKey)
	if !exists {
		return "", errors.New("owner ID not found in context")
	}
	id, ok := idRaw.(string)
	if !ok || id == "" {
		return "", errors.New("invalid owner ID in context")
	}
	return id, nil
}

// openWorkspace loads the caller's workspace or aborts the request.
func openWorkspace(c *gin.Context, workspaces service.WorkspaceService) (*workspace.Workspace, bool) {
	owner, err := getOwnerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify owner from token.")
		return nil, false
	}
	ws, err := workspaces.Open(c.Request.Context(), owner)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return ws, true
}
