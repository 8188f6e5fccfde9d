package repository

import (
	"context"

	"creator-dashboard/domain/model"
)

// IMirrorStore is the data mirror store consumed by the coordinator and
// the reconciler. Every mutation primitive is atomic per call; there is
// no application-level locking above it.
type IMirrorStore interface {
	// GetChannelStats returns the cached stats for the owner, or nil
	// when never populated.
	GetChannelStats(ctx context.Context, owner string) (*model.ChannelStats, error)
	// UpsertChannelStats stores the refreshed stats, bumping UpdatedAt,
	// and returns the persisted record.
	UpsertChannelStats(ctx context.Context, stats *model.ChannelStats) (*model.ChannelStats, error)

	// FindCachedRecord returns the record for (kind, owner, query) with
	// membership expanded in stored order, or nil when absent. Query is
	// empty for non-search kinds.
	FindCachedRecord(ctx context.Context, kind model.RecordKind, owner, query string) (*model.CachedRecord, error)
	// EnsureCachedRecord creates the record row if absent (no-op update
	// when present) so a membership set can be attached before the
	// first refresh completes.
	EnsureCachedRecord(ctx context.Context, kind model.RecordKind, owner, query string) (*model.CachedRecord, error)

	// UpsertVideoMirrors stores the batch keyed by video id,
	// all-or-nothing in a single transaction.
	UpsertVideoMirrors(ctx context.Context, videos []model.VideoMirror) error
	// ReplaceMembership sets the record's membership to exactly the
	// given ids in the given order, bumps UpdatedAt and returns the
	// record with membership resolved.
	ReplaceMembership(ctx context.Context, recordID int64, videoIDs []string) (*model.CachedRecord, error)

	// GetVideoMirror returns a mirror row by upstream id, or nil when
	// absent. Rows removed from a membership remain readable here.
	GetVideoMirror(ctx context.Context, videoID string) (*model.VideoMirror, error)
}
