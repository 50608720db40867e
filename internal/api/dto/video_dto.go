package dto

import (
	"time"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
)

type UpdateVideoRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

type ListVideosRequest struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type ListVideosResponse struct {
	Videos     []VideoResponse `json:"videos"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
}

type VideoResponse struct {
	ID                 string                    `json:"id"`
	OwnerID            string                    `json:"ownerId"`
	Title              string                    `json:"title"`
	Description        string                    `json:"description"`
	OriginalName       string                    `json:"originalName"`
	Mimetype           string                    `json:"mimetype"`
	Size               int64                     `json:"size"`
	Duration           int                       `json:"duration"`
	Thumbnail          *string                   `json:"thumbnail"`
	Status             string                    `json:"status"`
	Progress           int                       `json:"progress"`
	SensitivityScore   *int                      `json:"sensitivityScore"`
	SensitivityDetails *video.SensitivityDetails `json:"sensitivityDetails,omitempty"`
	ErrorMessage       *string                   `json:"errorMessage,omitempty"`
	Views              int                       `json:"views"`
	Tags               []string                  `json:"tags"`
	IsPublic           bool                      `json:"isPublic"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpdatedAt          time.Time                 `json:"updatedAt"`
}

// NewVideoResponse maps a stored record to its API shape, folding the legacy
// "processed" status into "safe"
func NewVideoResponse(v *video.Video) VideoResponse {
	tags := []string(v.Tags)
	if tags == nil {
		tags = []string{}
	}

	return VideoResponse{
		ID:                 v.ID,
		OwnerID:            v.OwnerID,
		Title:              v.Title,
		Description:        v.Description,
		OriginalName:       v.OriginalName,
		Mimetype:           v.Mimetype,
		Size:               v.Size,
		Duration:           v.Duration,
		Thumbnail:          v.Thumbnail,
		Status:             video.NormalizeStatus(v.Status),
		Progress:           v.Progress,
		SensitivityScore:   v.SensitivityScore,
		SensitivityDetails: v.SensitivityDetails,
		ErrorMessage:       v.ErrorMessage,
		Views:              v.Views,
		Tags:               tags,
		IsPublic:           v.IsPublic,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}
