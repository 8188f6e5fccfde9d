package repository

import (
	"context"

	"creator-dashboard/domain/model"
)

// IYouTube defines the upstream video-platform operations the refresh
// paths depend on. Calls authenticate with the owner's bearer token and
// surface provider failures as *model.ProviderError.
type IYouTube interface {
	// SearchMyVideos searches the authenticated owner's own videos.
	// Results carry snippet-level metadata only (no statistics). An
	// empty q lists without a query filter.
	SearchMyVideos(ctx context.Context, accessToken, q, order string, maxResults int64) ([]model.UpstreamVideo, error)
	// ListVideos fetches full snippet plus statistics for the given
	// ids, in the order the API returns them.
	ListVideos(ctx context.Context, accessToken string, videoIDs []string) ([]model.UpstreamVideo, error)
	// GetMyChannel returns the authenticated owner's channel summary.
	GetMyChannel(ctx context.Context, accessToken string) (*model.ChannelSummary, error)
	// ChannelAnalytics queries lifetime channel metrics between the
	// given dates (YYYY-MM-DD) keyed by metric name.
	ChannelAnalytics(ctx context.Context, accessToken, startDate, endDate string) (map[string]float64, error)
}
