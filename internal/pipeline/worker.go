package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SurajMnnit/VideoStreamer/internal/notify"
	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

// Stage is one named unit of simulated work. Order and progress values are
// part of the client contract; the delays only shape pacing.
type Stage struct {
	Name     string
	Message  string
	Progress int
	Delay    time.Duration
}

// Stages is the fixed processing pipeline every video runs through, in order
var Stages = []Stage{
	{Name: "analyze_format", Message: "Analyzing video format...", Progress: 10, Delay: 800 * time.Millisecond},
	{Name: "extract_metadata", Message: "Extracting video metadata...", Progress: 25, Delay: 1000 * time.Millisecond},
	{Name: "process_frames", Message: "Processing video frames...", Progress: 40, Delay: 1500 * time.Millisecond},
	{Name: "apply_optimizations", Message: "Applying optimizations...", Progress: 55, Delay: 1200 * time.Millisecond},
	{Name: "sensitivity_analysis", Message: "Running sensitivity analysis...", Progress: 70, Delay: 2000 * time.Millisecond},
	{Name: "generate_thumbnail", Message: "Generating thumbnail...", Progress: 85, Delay: 1000 * time.Millisecond},
	{Name: "finalize", Message: "Finalizing processing...", Progress: 95, Delay: 800 * time.Millisecond},
	{Name: "complete", Message: "Processing complete!", Progress: 100, Delay: 500 * time.Millisecond},
}

// Store is the persistence surface the worker mutates the video record
// through. Every stage persists before its notification goes out.
type Store interface {
	MarkProcessing(ctx context.Context, id string) error
	SaveProgress(ctx context.Context, id string, progress int) error
	SaveResult(ctx context.Context, id, status string, score int, details *video.SensitivityDetails, duration int, processedFilepath, thumbnail string) error
	SaveError(ctx context.Context, id, message string) error
}

// Sleeper paces the stage loop. Tests inject an instant implementation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Thumbnailer produces a thumbnail image for a completed video
type Thumbnailer interface {
	Generate(v *video.Video) (string, error)
}

// WorkerConfig holds worker dependencies
type WorkerConfig struct {
	Logger      *slog.Logger
	Store       Store
	Notifier    notify.Notifier
	Scorer      Scorer
	Sleeper     Sleeper
	Thumbnailer Thumbnailer
}

// Worker drives one video at a time through the processing stages, updating
// the record and notifying the owner's channel after every persisted step.
type Worker struct {
	logger   *slog.Logger
	store    Store
	notifier notify.Notifier
	scorer   Scorer
	sleeper  Sleeper
	thumbs   Thumbnailer
}

// NewWorker creates a worker instance. Scorer and Sleeper fall back to the
// production implementations when nil; Thumbnailer is optional.
func NewWorker(cfg *WorkerConfig) *Worker {
	w := &Worker{
		logger:   cfg.Logger,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		scorer:   cfg.Scorer,
		sleeper:  cfg.Sleeper,
		thumbs:   cfg.Thumbnailer,
	}
	if w.scorer == nil {
		w.scorer = RandomScorer{}
	}
	if w.sleeper == nil {
		w.sleeper = realSleeper{}
	}
	if w.notifier == nil {
		w.notifier = notify.Noop{}
	}
	return w
}

// Run processes a single video to a terminal state. Any failure marks the
// record as errored, notifies the owner, and is returned to the caller.
func (w *Worker) Run(ctx context.Context, v *video.Video) error {
	w.logger.Info("Processing video",
		slog.String("video_id", v.ID),
		slog.String("owner_id", v.OwnerID),
	)

	v.Status = video.StatusProcessing
	v.Progress = 0
	if err := w.store.MarkProcessing(ctx, v.ID); err != nil {
		return w.fail(ctx, v, err)
	}

	w.notifier.Publish(v.OwnerID, video.ProgressEvent{
		VideoID:  v.ID,
		Status:   video.StatusProcessing,
		Progress: 0,
		Message:  "Starting video processing...",
	})

	for _, stage := range Stages {
		if err := w.sleeper.Sleep(ctx, stage.Delay); err != nil {
			return w.fail(ctx, v, err)
		}

		v.Progress = stage.Progress
		if err := w.store.SaveProgress(ctx, v.ID, stage.Progress); err != nil {
			return w.fail(ctx, v, err)
		}

		w.logger.Debug("Stage complete",
			slog.String("video_id", v.ID),
			slog.String("stage", stage.Name),
			slog.Int("progress", stage.Progress),
		)

		w.notifier.Publish(v.OwnerID, video.ProgressEvent{
			VideoID:  v.ID,
			Status:   video.StatusProcessing,
			Progress: stage.Progress,
			Message:  stage.Message,
		})
	}

	result, err := w.scorer.Score(ctx, v)
	if err != nil {
		return w.fail(ctx, v, err)
	}

	thumbnail := ""
	if w.thumbs != nil {
		thumbnail, err = w.thumbs.Generate(v)
		if err != nil {
			return w.fail(ctx, v, err)
		}
	}

	status := video.StatusSafe
	message := "Video is safe and ready"
	if result.Score > video.FlagThreshold {
		status = video.StatusFlagged
		message = "Video flagged for review"
	}

	details := &video.SensitivityDetails{
		Score:      result.Score,
		Categories: result.Categories,
		AnalyzedAt: time.Now().UTC(),
	}

	v.Status = status
	v.Progress = 100
	score := result.Score
	v.SensitivityScore = &score
	v.SensitivityDetails = details
	v.Duration = result.Duration
	processedPath := v.Filepath // a real transcoder would write a new file
	v.ProcessedFilepath = &processedPath
	if thumbnail != "" {
		v.Thumbnail = &thumbnail
	}

	if err := w.store.SaveResult(ctx, v.ID, status, result.Score, details, result.Duration, processedPath, thumbnail); err != nil {
		return w.fail(ctx, v, err)
	}

	w.notifier.Publish(v.OwnerID, video.ProgressEvent{
		VideoID:            v.ID,
		Status:             status,
		Progress:           100,
		Message:            message,
		SensitivityScore:   &score,
		SensitivityDetails: details,
	})

	w.logger.Info("Video processing complete",
		slog.String("video_id", v.ID),
		slog.String("status", status),
		slog.Int("score", result.Score),
	)

	return nil
}

// fail marks the video as errored, notifies the owner, and returns the
// cause so the queue can observe it. Persistence errors here are logged
// only; the failure is already being reported.
func (w *Worker) fail(ctx context.Context, v *video.Video, cause error) error {
	w.logger.Error("Video processing failed",
		slog.String("video_id", v.ID),
		slog.Any("error", cause),
	)

	msg := cause.Error()
	v.Status = video.StatusError
	v.ErrorMessage = &msg

	if err := w.store.SaveError(ctx, v.ID, msg); err != nil {
		w.logger.Error("Failed to persist error status",
			slog.String("video_id", v.ID),
			slog.Any("error", err),
		)
	}

	w.notifier.Publish(v.OwnerID, video.ProgressEvent{
		VideoID:  v.ID,
		Status:   video.StatusError,
		Progress: 0,
		Message:  "Processing failed: " + msg,
		Error:    true,
	})

	return fmt.Errorf("processing video %s: %w", v.ID, cause)
}
