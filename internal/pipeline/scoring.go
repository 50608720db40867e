package pipeline

import (
	"context"
	"math/rand"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

// Simulated media duration bounds, in seconds
const (
	minDurationSeconds = 30
	maxDurationSeconds = 600
)

// ScoreResult is the outcome of a sensitivity analysis run
type ScoreResult struct {
	Score      int
	Categories video.SensitivityCategories
	Duration   int // seconds
}

// Scorer produces the sensitivity analysis for a processed video. The
// production implementation is a random placeholder; a real content
// analysis model plugs in behind the same interface.
type Scorer interface {
	Score(ctx context.Context, v *video.Video) (ScoreResult, error)
}

// RandomScorer simulates content analysis with uniformly random scores
type RandomScorer struct{}

// Score implements Scorer
func (RandomScorer) Score(_ context.Context, _ *video.Video) (ScoreResult, error) {
	return ScoreResult{
		Score: rand.Intn(101),
		Categories: video.SensitivityCategories{
			Violence: rand.Intn(101),
			Adult:    rand.Intn(101),
			Medical:  rand.Intn(101),
			Racy:     rand.Intn(101),
		},
		Duration: minDurationSeconds + rand.Intn(maxDurationSeconds-minDurationSeconds+1),
	}, nil
}
