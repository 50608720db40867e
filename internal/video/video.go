package video

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Video lifecycle statuses. The worker only ever writes processing, safe,
// flagged and error; "processed" is a legacy label older records may carry
// and is treated as "safe" for display.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusSafe       = "safe"
	StatusFlagged    = "flagged"
	StatusError      = "error"
)

// FlagThreshold separates safe from flagged sensitivity scores.
// A score strictly greater than the threshold flags the video.
const FlagThreshold = 70

// ValidStatuses lists every status value a record or filter may carry
var ValidStatuses = []string{
	StatusUploaded,
	StatusProcessing,
	StatusProcessed,
	StatusSafe,
	StatusFlagged,
	StatusError,
}

// IsValidStatus reports whether s is a known status label
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeStatus maps the legacy "processed" label to "safe"
func NormalizeStatus(s string) string {
	if s == StatusProcessed {
		return StatusSafe
	}
	return s
}

// IsTerminal reports whether a status is stable until an explicit reprocess
func IsTerminal(s string) bool {
	switch s {
	case StatusSafe, StatusFlagged, StatusError, StatusProcessed:
		return true
	}
	return false
}

// Video is the persisted record of one uploaded video and its analysis
// lifecycle. The processing worker is its only writer while status is
// "processing"; API handlers read it concurrently.
type Video struct {
	ID                 string              `db:"id"`
	OwnerID            string              `db:"owner_id"`
	Title              string              `db:"title"`
	Description        string              `db:"description"`
	Filename           string              `db:"filename"`
	OriginalName       string              `db:"original_name"`
	Filepath           string              `db:"filepath"`
	ProcessedFilepath  *string             `db:"processed_filepath"`
	Mimetype           string              `db:"mimetype"`
	Size               int64               `db:"size"`
	Duration           int                 `db:"duration"`
	Thumbnail          *string             `db:"thumbnail"`
	Status             string              `db:"status"`
	Progress           int                 `db:"progress"`
	SensitivityScore   *int                `db:"sensitivity_score"`
	SensitivityDetails *SensitivityDetails `db:"sensitivity_details"`
	ErrorMessage       *string             `db:"error_message"`
	Views              int                 `db:"views"`
	Tags               pq.StringArray      `db:"tags"`
	IsPublic           bool                `db:"is_public"`
	CreatedAt          time.Time           `db:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at"`
}

// SensitivityCategories is the fixed per-category breakdown of the analysis
type SensitivityCategories struct {
	Violence int `json:"violence"`
	Adult    int `json:"adult"`
	Medical  int `json:"medical"`
	Racy     int `json:"racy"`
}

// SensitivityDetails is the structured analysis result stored alongside the
// overall score. Persisted as JSONB.
type SensitivityDetails struct {
	Score      int                   `json:"score"`
	Categories SensitivityCategories `json:"categories"`
	AnalyzedAt time.Time             `json:"analyzedAt"`
}

// Value implements driver.Valuer for JSONB storage
func (d SensitivityDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB storage
func (d *SensitivityDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type for sensitivity details: %T", src)
	}
}

// ProgressEvent is the payload pushed to a video owner's channel after each
// persisted state transition. On completion the score and details are
// included; on failure Error is set and the message explains why.
type ProgressEvent struct {
	VideoID            string              `json:"videoId"`
	Status             string              `json:"status"`
	Progress           int                 `json:"progress"`
	Message            string              `json:"message"`
	SensitivityScore   *int                `json:"sensitivityScore,omitempty"`
	SensitivityDetails *SensitivityDetails `json:"sensitivityDetails,omitempty"`
	Error              bool                `json:"error,omitempty"`
}

// StatusCounts holds per-status video totals for the stats endpoint
type StatusCounts struct {
	Uploaded   int `json:"uploaded"`
	Processing int `json:"processing"`
	Processed  int `json:"processed"`
	Flagged    int `json:"flagged"`
	Safe       int `json:"safe"`
	Error      int `json:"error"`
}

// Stats aggregates a user's (or the whole system's) video counts
type Stats struct {
	TotalVideos  int          `json:"totalVideos"`
	TotalSize    int64        `json:"totalSize"`
	StatusCounts StatusCounts `json:"statusCounts"`
}
