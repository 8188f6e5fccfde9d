package model

import (
	"fmt"
	"time"
)

// RefreshPurpose identifies which refresh path produced a batch of
// upstream videos. Top-videos batches carry engagement statistics,
// search and library batches carry snippet metadata only.
type RefreshPurpose string

const (
	PurposeTopVideos RefreshPurpose = "top_videos"
	PurposeSearch    RefreshPurpose = "search"
	PurposeLibrary   RefreshPurpose = "library"
)

// Scope returns the path segment used when deriving media-host
// destination keys for this purpose. Library refreshes keep the flat
// {owner}/{videoId} layout.
func (p RefreshPurpose) Scope() string {
	if p == PurposeLibrary {
		return ""
	}
	return string(p)
}

// ThumbnailKey returns the deterministic media-host destination key for
// a video refreshed under this purpose. The same key is produced on
// every refresh, so a re-upload overwrites instead of duplicating.
func (p RefreshPurpose) ThumbnailKey(owner, videoID string) string {
	if scope := p.Scope(); scope != "" {
		return fmt.Sprintf("%s/%s/%s", owner, scope, videoID)
	}
	return fmt.Sprintf("%s/%s", owner, videoID)
}

// CarriesStats reports whether mirrors produced under this purpose keep
// per-video engagement statistics.
func (p RefreshPurpose) CarriesStats() bool {
	return p == PurposeTopVideos
}

// EngagementStats holds the per-video counters sourced from a
// top-videos refresh.
type EngagementStats struct {
	ViewCount     int64 `json:"view_count"`
	LikeCount     int64 `json:"like_count"`
	DislikeCount  int64 `json:"dislike_count"`
	FavoriteCount int64 `json:"favorite_count"`
	CommentCount  int64 `json:"comment_count"`
}

// VideoMirror is the locally persisted copy of an upstream video,
// keyed by the upstream video id. Rows are shared between membership
// sets and are never deleted by a refresh.
type VideoMirror struct {
	VideoID        string           `json:"video_id"`
	Owner          string           `json:"owner"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	PublishedAt    time.Time        `json:"published_at"`
	Tags           []string         `json:"tags,omitempty"`
	ImageThumbnail string           `json:"image_thumbnail"`
	Stats          *EngagementStats `json:"stats,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// UpstreamVideo is one item of a raw upstream fetch, before thumbnail
// re-hosting and persistence.
type UpstreamVideo struct {
	VideoID      string           `json:"video_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	PublishedAt  time.Time        `json:"published_at"`
	Tags         []string         `json:"tags,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url"`
	Stats        *EngagementStats `json:"stats,omitempty"`
}
