package model

import "time"

// RecordKind names a cached-record family. Channel stats are keyed by
// owner alone and live in their own table; the membership-backed kinds
// below are keyed by (kind, owner[, query]).
type RecordKind string

const (
	KindChannelStats RecordKind = "channel_stats"
	KindTopVideos    RecordKind = "top_videos"
	KindSearch       RecordKind = "search"
)

// ChannelSummary is the channel-level metadata fetched from the
// upstream data API.
type ChannelSummary struct {
	ChannelID       string    `json:"channel_id"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"published_at"`
	SubscriberCount int64     `json:"subscriber_count"`
	VideoCount      int64     `json:"video_count"`
	ViewCount       int64     `json:"view_count"`
}

// ChannelStats is the cached channel statistics record: channel summary
// merged with lifetime analytics metrics, keyed by owner. UpdatedAt is
// nil until the first successful refresh.
type ChannelStats struct {
	Owner string `json:"owner"`
	ChannelSummary
	Analytics map[string]float64 `json:"analytics,omitempty"`
	UpdatedAt *time.Time         `json:"updated_at,omitempty"`
}

// CachedRecord is a membership-backed cache entry (top videos or a
// search result set). Videos holds the expanded membership in upstream
// order. UpdatedAt is nil for a placeholder that has never been
// populated by a successful refresh.
type CachedRecord struct {
	ID        int64         `json:"id"`
	Kind      RecordKind    `json:"kind"`
	Owner     string        `json:"owner"`
	Query     string        `json:"query,omitempty"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
	Videos    []VideoMirror `json:"videos"`
}

// Empty reports whether the record has no members. An empty result set
// is never served as a fresh answer.
func (r *CachedRecord) Empty() bool {
	return r == nil || len(r.Videos) == 0
}

// VideoIDs returns the membership ids in order.
func (r *CachedRecord) VideoIDs() []string {
	ids := make([]string, len(r.Videos))
	for i := range r.Videos {
		ids[i] = r.Videos[i].VideoID
	}
	return ids
}
