package video

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const videoColumns = `
	id, owner_id, title, description, filename, original_name,
	filepath, processed_filepath, mimetype, size, duration, thumbnail,
	status, progress, sensitivity_score, sensitivity_details,
	error_message, views, tags, is_public, created_at, updated_at
`

// Store handles all database operations on video records
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Create inserts a freshly uploaded video record
func (s *Store) Create(ctx context.Context, v *Video) error {
	query := `
		INSERT INTO videos (
			id, owner_id, title, description, filename, original_name,
			filepath, mimetype, size, status, progress, tags, is_public,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		v.ID,
		v.OwnerID,
		v.Title,
		v.Description,
		v.Filename,
		v.OriginalName,
		v.Filepath,
		v.Mimetype,
		v.Size,
		v.Status,
		v.Progress,
		v.Tags,
		v.IsPublic,
		v.CreatedAt,
		v.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetByID retrieves a single video record
func (s *Store) GetByID(ctx context.Context, id string) (*Video, error) {
	var v Video
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`

	err := s.db.GetContext(ctx, &v, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &v, nil
}

// Filter narrows and pages the video listing
type Filter struct {
	OwnerID string // empty means all owners (admin listing)
	Status  string
	Search  string
	Sort    string // newest (default), oldest, title, size
	Page    int
	Limit   int
}

// List returns a page of videos plus the total count matching the filter
func (s *Store) List(ctx context.Context, filter Filter) ([]Video, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.OwnerID != "" {
		where += fmt.Sprintf(" AND owner_id = $%d", argIdx)
		args = append(args, filter.OwnerID)
		argIdx++
	}

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM videos` + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	orderBy := " ORDER BY created_at DESC"
	switch filter.Sort {
	case "oldest":
		orderBy = " ORDER BY created_at ASC"
	case "title":
		orderBy = " ORDER BY title ASC"
	case "size":
		orderBy = " ORDER BY size DESC"
	}

	query := `SELECT ` + videoColumns + ` FROM videos` + where + orderBy
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	var videos []Video
	if err := s.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list videos: %w", err)
	}

	return videos, total, nil
}

// UpdateMeta updates the caller-editable fields of a video
func (s *Store) UpdateMeta(ctx context.Context, id string, title, description *string, tags []string) error {
	query := `
		UPDATE videos
		SET title = COALESCE($1, title),
			description = COALESCE($2, description),
			tags = COALESCE($3, tags),
			updated_at = NOW()
		WHERE id = $4
	`

	var tagsArg interface{}
	if tags != nil {
		tagsArg = pq.Array(tags)
	}

	result, err := s.db.ExecContext(ctx, query, title, description, tagsArg, id)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	return requireRow(result)
}

// Delete removes a video record
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	return requireRow(result)
}

// MarkProcessing moves a video into the processing state with zero progress
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	query := `
		UPDATE videos
		SET status = $1, progress = 0, updated_at = NOW()
		WHERE id = $2
	`

	result, err := s.db.ExecContext(ctx, query, StatusProcessing, id)
	if err != nil {
		return fmt.Errorf("failed to mark video processing: %w", err)
	}

	return requireRow(result)
}

// SaveProgress persists a stage's progress value for a processing video
func (s *Store) SaveProgress(ctx context.Context, id string, progress int) error {
	query := `
		UPDATE videos
		SET progress = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := s.db.ExecContext(ctx, query, progress, id, StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return requireRow(result)
}

// SaveResult persists a successful analysis outcome and terminal status
func (s *Store) SaveResult(ctx context.Context, id, status string, score int, details *SensitivityDetails, duration int, processedFilepath, thumbnail string) error {
	query := `
		UPDATE videos
		SET status = $1,
			progress = 100,
			sensitivity_score = $2,
			sensitivity_details = $3,
			duration = $4,
			processed_filepath = $5,
			thumbnail = NULLIF($6, ''),
			updated_at = NOW()
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query, status, score, details, duration, processedFilepath, thumbnail, id)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}

	s.logger.Info("Video analysis result saved",
		slog.String("video_id", id),
		slog.String("status", status),
		slog.Int("score", score),
	)

	return requireRow(result)
}

// SaveError marks a video as failed and records the failure message
func (s *Store) SaveError(ctx context.Context, id, message string) error {
	query := `
		UPDATE videos
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, StatusError, message, id)
	if err != nil {
		return fmt.Errorf("failed to save error status: %w", err)
	}

	return requireRow(result)
}

// ResetForReprocess re-arms a terminal video for another pipeline run,
// clearing every analysis field. The status guard makes the reset refuse a
// record that is mid-flight in the pipeline.
func (s *Store) ResetForReprocess(ctx context.Context, id string) (*Video, error) {
	query := `
		UPDATE videos
		SET status = $1,
			progress = 0,
			sensitivity_score = NULL,
			sensitivity_details = NULL,
			error_message = NULL,
			updated_at = NOW()
		WHERE id = $2 AND status <> $3
		RETURNING ` + videoColumns

	var v Video
	err := s.db.QueryRowxContext(ctx, query, StatusUploaded, id, StatusProcessing).StructScan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the video doesn't exist or it is mid-flight
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			s.logger.Warn("Reprocess rejected - video is mid-flight",
				slog.String("video_id", id),
			)
			return nil, ErrReprocessInFlight
		}
		return nil, fmt.Errorf("failed to reset video: %w", err)
	}

	return &v, nil
}

// IncrementViews bumps the view counter for the stream endpoint
func (s *Store) IncrementViews(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// GetStats aggregates per-status counts and total size, optionally scoped to
// one owner
func (s *Store) GetStats(ctx context.Context, ownerID string) (*Stats, error) {
	query := `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(size), 0) AS total_size
		FROM videos
	`
	args := []interface{}{}
	if ownerID != "" {
		query += " WHERE owner_id = $1"
		args = append(args, ownerID)
	}
	query += " GROUP BY status"

	rows := []struct {
		Status    string `db:"status"`
		Count     int    `db:"count"`
		TotalSize int64  `db:"total_size"`
	}{}

	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get video stats: %w", err)
	}

	stats := &Stats{}
	for _, row := range rows {
		stats.TotalVideos += row.Count
		stats.TotalSize += row.TotalSize

		switch row.Status {
		case StatusUploaded:
			stats.StatusCounts.Uploaded = row.Count
		case StatusProcessing:
			stats.StatusCounts.Processing = row.Count
		case StatusProcessed:
			stats.StatusCounts.Processed = row.Count
		case StatusFlagged:
			stats.StatusCounts.Flagged = row.Count
		case StatusSafe:
			stats.StatusCounts.Safe = row.Count
		case StatusError:
			stats.StatusCounts.Error = row.Count
		}
	}

	return stats, nil
}

// requireRow converts a zero-row update into ErrVideoNotFound
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVideoNotFound
	}
	return nil
}
