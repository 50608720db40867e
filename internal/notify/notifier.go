// Package notify delivers video progress events to interested clients.
//
// Delivery is best-effort and fire-and-forget: events are routed by the
// owning user's id, a publish with no subscribers is a no-op, and no missed
// event is ever queued or replayed. Clients reconcile by re-reading the
// video record when they (re)connect.
package notify

import "github.com/SurajMnnit/VideoStreamer/internal/video"

// Notifier publishes a progress event to the owner's channel
type Notifier interface {
	Publish(ownerID string, event video.ProgressEvent)
}

// Multi fans one event out to several notifiers
type Multi []Notifier

// Publish delivers the event to every underlying notifier
func (m Multi) Publish(ownerID string, event video.ProgressEvent) {
	for _, n := range m {
		n.Publish(ownerID, event)
	}
}

// Noop discards every event
type Noop struct{}

// Publish implements Notifier
func (Noop) Publish(string, video.ProgressEvent) {}
