package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SurajMnnit/VideoStreamer/internal/api/auth"
	"github.com/SurajMnnit/VideoStreamer/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "video-service",
		})
	})

	videoHandler := handler.NewVideoHandler(deps)
	eventsHandler := handler.NewEventsHandler(deps)

	// API v1 routes; every caller arrives with gateway identity headers
	v1 := r.Group("/api/v1")
	v1.Use(auth.Identity())
	{
		// Mutating routes need the editor or admin role; viewers only read
		canMutate := auth.RequireRole(auth.RoleEditor, auth.RoleAdmin)

		videos := v1.Group("/videos")
		{
			// POST /api/v1/videos - Upload a new video
			videos.POST("", canMutate, videoHandler.Upload)

			// GET /api/v1/videos - List videos with filtering and pagination
			videos.GET("", videoHandler.List)

			// GET /api/v1/videos/stats - Aggregated per-status counts
			videos.GET("/stats", videoHandler.Stats)

			// GET /api/v1/videos/:video_id - Get video details
			videos.GET("/:video_id", videoHandler.Get)

			// PATCH /api/v1/videos/:video_id - Update video metadata
			videos.PATCH("/:video_id", canMutate, videoHandler.Update)

			// DELETE /api/v1/videos/:video_id - Delete a video
			videos.DELETE("/:video_id", canMutate, videoHandler.Delete)

			// POST /api/v1/videos/:video_id/reprocess - Queue another pipeline run
			videos.POST("/:video_id/reprocess", canMutate, videoHandler.Reprocess)

			// GET /api/v1/videos/:video_id/stream - Stream the video file
			videos.GET("/:video_id/stream", videoHandler.Stream)
		}

		// GET /api/v1/events - Server-sent progress event stream
		v1.GET("/events", eventsHandler.Stream)
	}

	return r
}
