package notify

import (
	"log/slog"
	"sync"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

// subscriptionBuffer is the per-subscriber event channel capacity. A
// subscriber that falls this far behind starts losing events rather than
// blocking the pipeline.
const subscriptionBuffer = 16

// Hub is the in-process pub/sub bus for progress events. Subscriptions are
// keyed by owner id; a subscription may additionally join per-video topics.
type Hub struct {
	mu     sync.RWMutex
	owners map[string]map[*Subscription]struct{}
	videos map[string]map[*Subscription]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		owners: make(map[string]map[*Subscription]struct{}),
		videos: make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscription is one live client connection's view of the hub
type Subscription struct {
	hub     *Hub
	ownerID string
	events  chan video.ProgressEvent

	mu     sync.Mutex
	closed bool
	videos map[string]struct{}
}

// Subscribe registers a new subscription under the given owner's channel
func (h *Hub) Subscribe(ownerID string) *Subscription {
	sub := &Subscription{
		hub:     h,
		ownerID: ownerID,
		events:  make(chan video.ProgressEvent, subscriptionBuffer),
		videos:  make(map[string]struct{}),
	}

	h.mu.Lock()
	if h.owners[ownerID] == nil {
		h.owners[ownerID] = make(map[*Subscription]struct{})
	}
	h.owners[ownerID][sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("Client subscribed",
		slog.String("owner_id", ownerID),
	)

	return sub
}

// Events returns the channel progress events arrive on
func (s *Subscription) Events() <-chan video.ProgressEvent {
	return s.events
}

// JoinVideo additionally subscribes to a specific video's topic. Advisory
// only; no subscription state is persisted.
func (s *Subscription) JoinVideo(videoID string) {
	// The closed check and the topic registration happen under the hub lock
	// together, so a concurrent Close cannot leave a closed subscription
	// registered on the topic.
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.videos[videoID] = struct{}{}
	s.mu.Unlock()

	if s.hub.videos[videoID] == nil {
		s.hub.videos[videoID] = make(map[*Subscription]struct{})
	}
	s.hub.videos[videoID][s] = struct{}{}
}

// LeaveVideo drops a per-video topic membership
func (s *Subscription) LeaveVideo(videoID string) {
	s.mu.Lock()
	delete(s.videos, videoID)
	s.mu.Unlock()

	s.hub.mu.Lock()
	s.hub.removeFromVideoLocked(videoID, s)
	s.hub.mu.Unlock()
}

// Close unregisters the subscription and releases its channel
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	videoIDs := make([]string, 0, len(s.videos))
	for id := range s.videos {
		videoIDs = append(videoIDs, id)
	}
	s.videos = nil
	s.mu.Unlock()

	s.hub.mu.Lock()
	if subs, ok := s.hub.owners[s.ownerID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.hub.owners, s.ownerID)
		}
	}
	for _, id := range videoIDs {
		s.hub.removeFromVideoLocked(id, s)
	}
	// Closed under the hub lock so Publish can never send on a closed channel
	close(s.events)
	s.hub.mu.Unlock()
}

func (h *Hub) removeFromVideoLocked(videoID string, s *Subscription) {
	if subs, ok := h.videos[videoID]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.videos, videoID)
		}
	}
}

// Publish delivers an event to every subscription on the owner's channel and
// on the event's per-video topic. Non-blocking: a full subscriber buffer
// drops the event for that subscriber.
func (h *Hub) Publish(ownerID string, event video.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := make(map[*Subscription]struct{}, len(h.owners[ownerID]))
	for sub := range h.owners[ownerID] {
		targets[sub] = struct{}{}
	}
	for sub := range h.videos[event.VideoID] {
		targets[sub] = struct{}{}
	}

	for sub := range targets {
		select {
		case sub.events <- event:
		default:
			h.logger.Warn("Dropping progress event - subscriber buffer full",
				slog.String("owner_id", ownerID),
				slog.String("video_id", event.VideoID),
			)
		}
	}
}
