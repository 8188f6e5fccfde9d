package dto

import "creator-dashboard/domain/model"

// ChannelStatsResponse wraps the cached channel statistics record.
type ChannelStatsResponse struct {
	Stats *model.ChannelStats `json:"stats"`
}

// CachedRecordResponse wraps a membership-backed record (top videos or
// search results) for the route layer.
type CachedRecordResponse struct {
	Success bool                `json:"success"`
	Data    *model.CachedRecord `json:"data"`
}

// VideoMirrorResponse wraps a single mirror row.
type VideoMirrorResponse struct {
	Success bool               `json:"success"`
	Data    *model.VideoMirror `json:"data"`
}

// RefreshRequest is the body of a batch video-mirror refresh.
type RefreshRequest struct {
	VideoIDs []string `json:"videoIds" binding:"required"`
}

// RefreshResponse reports a completed batch refresh.
type RefreshResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
