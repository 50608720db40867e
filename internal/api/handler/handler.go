package handler

import (
	"context"
	"log/slog"

	"github.com/SurajMnnit/VideoStreamer/internal/config"
	"github.com/SurajMnnit/VideoStreamer/internal/notify"
	"github.com/SurajMnnit/VideoStreamer/internal/pipeline"
	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

// VideoStore is the persistence surface the handlers work against.
// Satisfied by *video.Store.
type VideoStore interface {
	Create(ctx context.Context, v *video.Video) error
	GetByID(ctx context.Context, id string) (*video.Video, error)
	List(ctx context.Context, filter video.Filter) ([]video.Video, int, error)
	UpdateMeta(ctx context.Context, id string, title, description *string, tags []string) error
	Delete(ctx context.Context, id string) error
	ResetForReprocess(ctx context.Context, id string) (*video.Video, error)
	IncrementViews(ctx context.Context, id string) error
	GetStats(ctx context.Context, ownerID string) (*video.Stats, error)
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Store   VideoStore
	Queue   *pipeline.Queue
	Hub     *notify.Hub
	Uploads config.UploadsConfig
}

// VideoHandler handles video-related HTTP requests
type VideoHandler struct {
	logger  *slog.Logger
	store   VideoStore
	queue   *pipeline.Queue
	uploads config.UploadsConfig
}

// NewVideoHandler creates a new VideoHandler instance
func NewVideoHandler(deps *Dependencies) *VideoHandler {
	return &VideoHandler{
		logger:  deps.Logger,
		store:   deps.Store,
		queue:   deps.Queue,
		uploads: deps.Uploads,
	}
}

// EventsHandler streams progress events to connected clients
type EventsHandler struct {
	logger *slog.Logger
	hub    *notify.Hub
}

// NewEventsHandler creates a new EventsHandler instance
func NewEventsHandler(deps *Dependencies) *EventsHandler {
	return &EventsHandler{
		logger: deps.Logger,
		hub:    deps.Hub,
	}
}
