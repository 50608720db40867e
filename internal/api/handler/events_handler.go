package handler

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/SurajMnnit/VideoStreamer/internal/api/auth"
)

// Stream handles GET /api/v1/events
// Opens a server-sent events stream delivering the caller's progress events.
// An optional video_id query parameter additionally joins that video's
// topic, which lets moderators follow someone else's processing run.
func (h *EventsHandler) Stream(c *gin.Context) {
	ownerID := auth.UserID(c)

	sub := h.hub.Subscribe(ownerID)
	defer sub.Close()

	if videoID := c.Query("video_id"); videoID != "" {
		sub.JoinVideo(videoID)
	}

	h.logger.Info("Event stream opened",
		slog.String("owner_id", ownerID),
		slog.String("ip", c.ClientIP()),
	)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"ownerId": ownerID})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-sub.Events():
			if !open {
				return false
			}
			c.SSEvent("progress", event)
			return true
		case <-clientGone:
			return false
		}
	})

	h.logger.Info("Event stream closed",
		slog.String("owner_id", ownerID),
	)
}
