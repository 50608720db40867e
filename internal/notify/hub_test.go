package notify

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_OwnerIsolation(t *testing.T) {
	hub := NewHub(testLogger())

	subA := hub.Subscribe("user-a")
	defer subA.Close()
	subB := hub.Subscribe("user-b")
	defer subB.Close()

	hub.Publish("user-a", video.ProgressEvent{
		VideoID:  "vid-1",
		Status:   video.StatusProcessing,
		Progress: 10,
	})

	select {
	case evt := <-subA.Events():
		assert.Equal(t, "vid-1", evt.VideoID)
		assert.Equal(t, 10, evt.Progress)
	default:
		t.Fatal("owner A should have received the event")
	}

	select {
	case evt := <-subB.Events():
		t.Fatalf("owner B must not receive owner A's event, got %+v", evt)
	default:
	}
}

func TestHub_PublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub(testLogger())

	// Must not panic or block
	hub.Publish("nobody", video.ProgressEvent{VideoID: "vid-1", Progress: 50})
}

func TestHub_MultipleSubscribersSameOwner(t *testing.T) {
	hub := NewHub(testLogger())

	sub1 := hub.Subscribe("user-a")
	defer sub1.Close()
	sub2 := hub.Subscribe("user-a")
	defer sub2.Close()

	hub.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: 25})

	for _, sub := range []*Subscription{sub1, sub2} {
		select {
		case evt := <-sub.Events():
			assert.Equal(t, 25, evt.Progress)
		default:
			t.Fatal("every subscription under the owner should receive the event")
		}
	}
}

func TestHub_VideoTopic(t *testing.T) {
	hub := NewHub(testLogger())

	// Subscriber under another owner explicitly joins vid-1's topic
	watcher := hub.Subscribe("moderator")
	defer watcher.Close()
	watcher.JoinVideo("vid-1")

	hub.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: 40})

	select {
	case evt := <-watcher.Events():
		assert.Equal(t, "vid-1", evt.VideoID)
	default:
		t.Fatal("video topic subscriber should have received the event")
	}

	// After leaving the topic, nothing more arrives
	watcher.LeaveVideo("vid-1")
	hub.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: 55})

	select {
	case evt := <-watcher.Events():
		t.Fatalf("unsubscribed watcher must not receive events, got %+v", evt)
	default:
	}
}

func TestHub_NoDuplicateForOwnerAlsoOnTopic(t *testing.T) {
	hub := NewHub(testLogger())

	sub := hub.Subscribe("user-a")
	defer sub.Close()
	sub.JoinVideo("vid-1")

	hub.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: 70})

	count := 0
	for {
		select {
		case <-sub.Events():
			count++
			continue
		default:
		}
		break
	}
	assert.Equal(t, 1, count, "owner-and-topic subscriber receives the event once")
}

func TestHub_CloseStopsDelivery(t *testing.T) {
	hub := NewHub(testLogger())

	sub := hub.Subscribe("user-a")
	sub.Close()

	// Publish after close must not panic
	hub.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: 10})

	_, open := <-sub.Events()
	assert.False(t, open, "events channel should be closed")

	// Double close is safe
	sub.Close()
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(testLogger())

	sub := hub.Subscribe("user-a")
	defer sub.Close()

	// Overfill the subscriber buffer; Publish must never block
	for i := 0; i < subscriptionBuffer*2; i++ {
		hub.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: i})
	}

	received := 0
	for {
		select {
		case <-sub.Events():
			received++
			continue
		default:
		}
		break
	}
	require.Equal(t, subscriptionBuffer, received)
}

func TestHub_ConcurrentJoinAndCloseNeverPanics(t *testing.T) {
	hub := NewHub(testLogger())

	// A join racing a close must never leave a closed subscription on the
	// topic, which a later publish would send to.
	for i := 0; i < 200; i++ {
		sub := hub.Subscribe("user-a")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub.JoinVideo("vid-1")
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
		wg.Wait()

		hub.Publish("other-owner", video.ProgressEvent{VideoID: "vid-1", Progress: 50})
	}
}

func TestMulti_FansOut(t *testing.T) {
	hub1 := NewHub(testLogger())
	hub2 := NewHub(testLogger())

	sub1 := hub1.Subscribe("user-a")
	defer sub1.Close()
	sub2 := hub2.Subscribe("user-a")
	defer sub2.Close()

	multi := Multi{hub1, hub2, Noop{}}
	multi.Publish("user-a", video.ProgressEvent{VideoID: "vid-1", Progress: 100})

	for _, sub := range []*Subscription{sub1, sub2} {
		select {
		case evt := <-sub.Events():
			assert.Equal(t, 100, evt.Progress)
		default:
			t.Fatal("multi notifier should deliver to every hub")
		}
	}
}
