package video

import "errors"

var (
	// ErrVideoNotFound is returned when a video cannot be found in the database
	ErrVideoNotFound = errors.New("video not found")

	// ErrReprocessInFlight is returned when a reprocess is requested for a
	// video that is currently being processed
	ErrReprocessInFlight = errors.New("video is currently processing")
)
