package api

import (
	"net/http"

	"alcyxob/routine-builder/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the handlers need.
type Services struct {
	Auth       service.AuthService
	Workspaces service.WorkspaceService
	Playback   service.PlaybackService
	Exports    service.ExportService
}

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	DefaultOwner string
	CORSOrigins  []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig, svc Services) {
	exerciseHandler := NewExerciseHandler(svc.Workspaces)
	tagHandler := NewTagHandler(svc.Workspaces)
	routineHandler := NewRoutineHandler(svc.Workspaces)
	calendarHandler := NewCalendarHandler(svc.Workspaces, svc.Exports)
	playbackHandler := NewPlaybackHandler(svc.Playback)
	dataHandler := NewDataHandler(svc.Workspaces, svc.Exports)

	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(svc.Auth, cfg.DefaultOwner))
	{
		protected.GET("/me", func(c *gin.Context) {
			owner, err := getOwnerFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get owner ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"ownerId": owner, "tokenAuth": svc.Auth.Enabled()})
		})

		protected.GET("/status", dataHandler.Status)
		protected.POST("/status/flush", dataHandler.Flush)

		// --- Exercise catalog ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.GET("/grouped", exerciseHandler.GroupedExercises)
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PATCH("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)
		}

		// --- Tags ---
		tagGroup := protected.Group("/tags")
		{
			tagGroup.GET("", tagHandler.ListTags)
			tagGroup.GET("/palette", tagHandler.Palette)
			tagGroup.POST("", tagHandler.CreateTag)
			tagGroup.DELETE("/:name", tagHandler.DeleteTag)
		}

		// --- Routine tree ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.GET("", routineHandler.ListRoutines)
			routineGroup.POST("", routineHandler.CreateRoutine)
			routineGroup.POST("/reorder", routineHandler.ReorderRoutines)
			routineGroup.GET("/:routineId", routineHandler.GetRoutine)
			routineGroup.PATCH("/:routineId", routineHandler.UpdateRoutine)
			routineGroup.DELETE("/:routineId", routineHandler.DeleteRoutine)

			routineGroup.PUT("/:routineId/schedule", routineHandler.UpdateSchedule)
			routineGroup.DELETE("/:routineId/schedule", routineHandler.ClearSchedule)

			routineGroup.POST("/:routineId/sections", routineHandler.AddSection)
			routineGroup.PATCH("/:routineId/sections/:sectionId", routineHandler.UpdateSection)
			routineGroup.DELETE("/:routineId/sections/:sectionId", routineHandler.DeleteSection)

			routineGroup.POST("/:routineId/items/toggle", routineHandler.ToggleItem)
			routineGroup.POST("/:routineId/items/new", routineHandler.NewItem)
			routineGroup.POST("/:routineId/items/move", routineHandler.MoveItem)
		}
		protected.POST("/moves", routineHandler.MoveAcross)
		protected.POST("/drops", routineHandler.Drop)

		// --- Calendar ---
		calendarGroup := protected.Group("/calendar")
		{
			calendarGroup.GET("/instances", calendarHandler.ListInstances)
			calendarGroup.POST("/instances", calendarHandler.PlaceRoutine)
			calendarGroup.PATCH("/instances/:instanceId", calendarHandler.UpdateInstance)
			calendarGroup.DELETE("/instances/:instanceId", calendarHandler.RemoveInstance)
			calendarGroup.GET("/export.ics", calendarHandler.ExportCalendar)
			calendarGroup.GET("/routines.ics", calendarHandler.ExportSchedules)
		}

		// --- Playback ---
		playbackGroup := protected.Group("/playback")
		{
			playbackGroup.POST("", playbackHandler.Start)
			playbackGroup.GET("/:sessionId", playbackHandler.Current)
			playbackGroup.POST("/:sessionId/next", playbackHandler.Next)
			playbackGroup.POST("/:sessionId/previous", playbackHandler.Previous)
			playbackGroup.DELETE("/:sessionId", playbackHandler.Stop)
		}

		// --- Whole-workspace data ---
		dataGroup := protected.Group("/data")
		{
			dataGroup.GET("/export", dataHandler.Export)
			dataGroup.POST("/import", dataHandler.Import)
			dataGroup.DELETE("", dataHandler.Clear)
		}
		protected.POST("/exports/:kind/publish", dataHandler.Publish)
	}
}
