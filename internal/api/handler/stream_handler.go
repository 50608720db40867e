package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Stream handles GET /api/v1/videos/:video_id/stream
// Serves the video file with HTTP range support so players can seek. The
// processed rendition is preferred once the pipeline has produced one.
func (h *VideoHandler) Stream(c *gin.Context) {
	v, ok := h.fetch(c, true)
	if !ok {
		return
	}

	path := v.Filepath
	if v.ProcessedFilepath != nil && *v.ProcessedFilepath != "" {
		path = *v.ProcessedFilepath
	}

	f, err := os.Open(path)
	if err != nil {
		h.logger.Error("Video file missing on disk",
			slog.String("video_id", v.ID),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stream video"})
		return
	}

	if err := h.store.IncrementViews(c.Request.Context(), v.ID); err != nil {
		// View counting must never break playback
		h.logger.Warn("Failed to increment views",
			slog.String("video_id", v.ID),
			slog.String("error", err.Error()),
		)
	}

	c.Header("Content-Type", v.Mimetype)
	http.ServeContent(c.Writer, c.Request, v.Filename, info.ModTime(), f)
}
