package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

// Runner executes the processing pipeline for one video. Satisfied by
// *Worker.
type Runner interface {
	Run(ctx context.Context, v *video.Video) error
}

// Queue serializes video processing: submissions append to an ordered
// pending list and a single drain goroutine works through it head-first,
// so at most one video is under processing system-wide at any time.
//
// There is no per-job timeout; a stage that never returns blocks the whole
// queue. Jobs cannot be cancelled or pulled back once submitted.
type Queue struct {
	runner Runner
	logger *slog.Logger

	mu       sync.Mutex
	ctx      context.Context
	pending  []*video.Video
	draining bool

	wg sync.WaitGroup
}

// NewQueue creates an idle queue. No drain goroutine exists until the first
// submission.
func NewQueue(runner Runner, logger *slog.Logger) *Queue {
	return &Queue{
		runner: runner,
		logger: logger,
		ctx:    context.Background(),
	}
}

// Start binds processing runs to ctx. Cancelling it makes in-flight and
// queued jobs fail fast to their error state during shutdown.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	q.ctx = ctx
	q.mu.Unlock()
}

// Submit appends a video to the pending list and returns immediately. The
// caller must hand over a record in the uploaded state; from here until a
// terminal state the worker owns it.
func (q *Queue) Submit(v *video.Video) {
	q.mu.Lock()
	q.pending = append(q.pending, v)
	depth := len(q.pending)
	if !q.draining {
		q.draining = true
		q.wg.Add(1)
		go q.drain()
	}
	q.mu.Unlock()

	q.logger.Info("Video queued for processing",
		slog.String("video_id", v.ID),
		slog.String("owner_id", v.OwnerID),
		slog.Int("queue_depth", depth),
	)
}

// drain processes pending videos head-first until the list empties, then
// exits. A failing job is logged and the loop moves on; retry only happens
// through an explicit reprocess submission.
func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		v := q.pending[0]
		q.pending = q.pending[1:]
		ctx := q.ctx
		q.mu.Unlock()

		if err := q.runner.Run(ctx, v); err != nil {
			q.logger.Error("Queued video failed",
				slog.String("video_id", v.ID),
				slog.Any("error", err),
			)
		}
	}
}

// Depth returns the number of videos waiting behind the one in flight
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Stop waits for the current drain to finish. Call after cancelling the
// Start context during shutdown.
func (q *Queue) Stop() {
	q.wg.Wait()
	q.logger.Info("Processing queue drained")
}
