package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SurajMnnit/VideoStreamer/internal/api/auth"
	"github.com/SurajMnnit/VideoStreamer/internal/api/dto"
	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Upload handles POST /api/v1/videos
// Accepts a multipart upload, persists the record and queues it for
// processing. The response returns immediately with the uploaded record;
// processing progress arrives over the events stream.
func (h *VideoHandler) Upload(c *gin.Context) {
	ownerID := auth.UserID(c)

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video file is required"})
		return
	}

	if file.Size > h.uploads.MaxSizeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "video file exceeds the maximum allowed size"})
		return
	}

	mimetype := file.Header.Get("Content-Type")
	if !h.isAllowedType(mimetype) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported video type: " + mimetype})
		return
	}

	if err := os.MkdirAll(h.uploads.Dir, 0o755); err != nil {
		h.logger.Error("Failed to create upload dir", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store video"})
		return
	}

	id := uuid.New().String()
	filename := id + filepath.Ext(file.Filename)
	dst := filepath.Join(h.uploads.Dir, filename)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.logger.Error("Failed to save uploaded file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store video"})
		return
	}

	var tags []string
	if raw := strings.TrimSpace(c.PostForm("tags")); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	now := time.Now().UTC()
	v := &video.Video{
		ID:           id,
		OwnerID:      ownerID,
		Title:        title,
		Description:  c.PostForm("description"),
		Filename:     filename,
		OriginalName: file.Filename,
		Filepath:     dst,
		Mimetype:     mimetype,
		Size:         file.Size,
		Status:       video.StatusUploaded,
		Progress:     0,
		Tags:         tags,
		IsPublic:     c.PostForm("is_public") == "true",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.Create(c.Request.Context(), v); err != nil {
		h.logger.Error("Failed to create video record", slog.String("error", err.Error()))
		os.Remove(dst)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
		return
	}

	h.queue.Submit(v)

	c.JSON(http.StatusCreated, dto.NewVideoResponse(v))
}

// List handles GET /api/v1/videos
// Admins see every owner's videos; everyone else sees their own.
func (h *VideoHandler) List(c *gin.Context) {
	var req dto.ListVideosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	if req.Status != "" && !video.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter: " + req.Status})
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = defaultPageLimit
	}
	if req.Limit > maxPageLimit {
		req.Limit = maxPageLimit
	}

	filter := video.Filter{
		OwnerID: auth.UserID(c),
		Status:  req.Status,
		Search:  req.Search,
		Sort:    req.Sort,
		Page:    req.Page,
		Limit:   req.Limit,
	}
	if auth.IsAdmin(c) {
		filter.OwnerID = ""
	}

	videos, total, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list videos", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}

	items := make([]dto.VideoResponse, len(videos))
	for i := range videos {
		items[i] = dto.NewVideoResponse(&videos[i])
	}

	totalPages := (total + req.Limit - 1) / req.Limit

	c.JSON(http.StatusOK, dto.ListVideosResponse{
		Videos:     items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/v1/videos/:video_id
func (h *VideoHandler) Get(c *gin.Context) {
	v, ok := h.fetch(c, true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.NewVideoResponse(v))
}

// Update handles PATCH /api/v1/videos/:video_id
// Only the caller-editable metadata fields can change here; the processing
// fields belong to the worker.
func (h *VideoHandler) Update(c *gin.Context) {
	v, ok := h.fetch(c, false)
	if !ok {
		return
	}

	var req dto.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
		return
	}

	if err := h.store.UpdateMeta(c.Request.Context(), v.ID, req.Title, req.Description, req.Tags); err != nil {
		h.logger.Error("Failed to update video", slog.String("video_id", v.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update video"})
		return
	}

	updated, err := h.store.GetByID(c.Request.Context(), v.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load video"})
		return
	}

	c.JSON(http.StatusOK, dto.NewVideoResponse(updated))
}

// Delete handles DELETE /api/v1/videos/:video_id
func (h *VideoHandler) Delete(c *gin.Context) {
	v, ok := h.fetch(c, false)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), v.ID); err != nil {
		h.logger.Error("Failed to delete video", slog.String("video_id", v.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete video"})
		return
	}

	// File cleanup is best effort; the record is already gone
	removeIfSet(v.Filepath)
	if v.ProcessedFilepath != nil && *v.ProcessedFilepath != v.Filepath {
		removeIfSet(*v.ProcessedFilepath)
	}
	if v.Thumbnail != nil {
		removeIfSet(*v.Thumbnail)
	}

	c.Status(http.StatusNoContent)
}

// Reprocess handles POST /api/v1/videos/:video_id/reprocess
// Re-queues a video whose processing has already finished. A video that is
// currently mid-flight is refused with 409.
func (h *VideoHandler) Reprocess(c *gin.Context) {
	v, ok := h.fetch(c, false)
	if !ok {
		return
	}

	reset, err := h.store.ResetForReprocess(c.Request.Context(), v.ID)
	if err != nil {
		switch {
		case errors.Is(err, video.ErrVideoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		case errors.Is(err, video.ErrReprocessInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "Video is already being processed"})
		default:
			h.logger.Error("Failed to reset video", slog.String("video_id", v.ID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reprocess video"})
		}
		return
	}

	h.queue.Submit(reset)

	c.JSON(http.StatusAccepted, dto.NewVideoResponse(reset))
}

// Stats handles GET /api/v1/videos/stats
// Admins get system-wide totals; everyone else their own.
func (h *VideoHandler) Stats(c *gin.Context) {
	ownerID := auth.UserID(c)
	if auth.IsAdmin(c) {
		ownerID = ""
	}

	stats, err := h.store.GetStats(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to get stats", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// fetch loads the addressed video and enforces access. With allowPublic a
// public video is readable by anyone; otherwise only the owner and admins
// pass.
func (h *VideoHandler) fetch(c *gin.Context, allowPublic bool) (*video.Video, bool) {
	id := c.Param("video_id")

	v, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		} else {
			h.logger.Error("Failed to get video", slog.String("video_id", id), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get video"})
		}
		return nil, false
	}

	if v.OwnerID != auth.UserID(c) && !auth.IsAdmin(c) {
		if allowPublic && v.IsPublic {
			return v, true
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}

	return v, true
}

func (h *VideoHandler) isAllowedType(mimetype string) bool {
	for _, t := range h.uploads.AllowedTypes {
		if t == mimetype {
			return true
		}
	}
	return false
}

func removeIfSet(path string) {
	if path != "" {
		os.Remove(path)
	}
}
