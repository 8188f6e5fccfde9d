package usecase

import (
	"context"
	"fmt"
	"time"

	"creator-dashboard/domain/model"
	"creator-dashboard/domain/repository"
	"creator-dashboard/infrastructure/logger"
)

// stalenessWindow is the single freshness policy: a cached record older
// than this must be refreshed from upstream before being served.
const stalenessWindow = 4 * time.Hour

const (
	dateFormat     = "2006-01-02"
	topVideosLimit = 10
	searchLimit    = 50
)

// IDashboardUseCase defines the cached dashboard operations. Each read
// either serves the mirror store's cached record or refreshes it from
// upstream, governed by one staleness policy.
type IDashboardUseCase interface {
	GetChannelStats(ctx context.Context, owner, accessToken string, forceRefresh bool) (*model.ChannelStats, error)
	GetTopVideos(ctx context.Context, owner, accessToken string, forceRefresh bool) (*model.CachedRecord, error)
	SearchVideos(ctx context.Context, owner, accessToken, query string, forceRefresh bool) (*model.CachedRecord, error)
	// RefreshVideos re-mirrors the given library videos (metadata and
	// thumbnails), returning the number refreshed. No membership is
	// touched.
	RefreshVideos(ctx context.Context, owner, accessToken string, videoIDs []string) (int, error)
	// GetVideoMirror reads one mirror row directly; rows removed from a
	// membership remain readable.
	GetVideoMirror(ctx context.Context, videoID string) (*model.VideoMirror, error)
}

// DashboardUseCase implements the freshness coordinator over the mirror
// store, the upstream client and the batch reconciler.
type DashboardUseCase struct {
	youtubeRepo repository.IYouTube
	store       repository.IMirrorStore
	reconciler  *Reconciler
	events      repository.IRefreshEvents // optional
}

// NewDashboardUseCase creates the coordinator.
func NewDashboardUseCase(youtubeRepo repository.IYouTube, store repository.IMirrorStore, host repository.IMediaHost) *DashboardUseCase {
	return &DashboardUseCase{
		youtubeRepo: youtubeRepo,
		store:       store,
		reconciler:  NewReconciler(store, host),
	}
}

// WithEvents enables refresh-completed event publishing (fluent).
func (u *DashboardUseCase) WithEvents(events repository.IRefreshEvents) *DashboardUseCase {
	u.events = events
	return u
}

// isStale reports whether a record must be refreshed. A record that was
// never populated (nil UpdatedAt) is maximally stale.
func isStale(updatedAt *time.Time) bool {
	if updatedAt == nil {
		return true
	}
	return time.Since(*updatedAt) >= stalenessWindow
}

// GetChannelStats serves the cached channel statistics, refreshing from
// the upstream data and analytics APIs when missing, stale or forced.
func (u *DashboardUseCase) GetChannelStats(ctx context.Context, owner, accessToken string, forceRefresh bool) (*model.ChannelStats, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if !forceRefresh {
		stats, err := u.store.GetChannelStats(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("failed to read channel stats: %w", err)
		}
		if stats != nil && !isStale(stats.UpdatedAt) {
			return stats, nil
		}
	}
	return u.refreshChannelStats(ctx, owner, accessToken)
}

func (u *DashboardUseCase) refreshChannelStats(ctx context.Context, owner, accessToken string) (*model.ChannelStats, error) {
	summary, err := u.youtubeRepo.GetMyChannel(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	// Lifetime bounds: channel creation date through today.
	startDate := summary.PublishedAt.UTC().Format(dateFormat)
	endDate := time.Now().UTC().Format(dateFormat)
	analytics, err := u.youtubeRepo.ChannelAnalytics(ctx, accessToken, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel analytics: %w", err)
	}
	stored, err := u.store.UpsertChannelStats(ctx, &model.ChannelStats{
		Owner:          owner,
		ChannelSummary: *summary,
		Analytics:      analytics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save channel stats: %w", err)
	}
	u.publishRefresh(ctx, owner, model.KindChannelStats, 1)
	return stored, nil
}

// GetTopVideos serves the cached top-videos record. A record that
// exists but has an empty membership is refreshed regardless of its
// age: an empty result set is never a valid fresh answer.
func (u *DashboardUseCase) GetTopVideos(ctx context.Context, owner, accessToken string, forceRefresh bool) (*model.CachedRecord, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	record, err := u.store.FindCachedRecord(ctx, model.KindTopVideos, owner, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read top videos: %w", err)
	}
	if !forceRefresh && !record.Empty() && !isStale(record.UpdatedAt) {
		return record, nil
	}

	found, err := u.youtubeRepo.SearchMyVideos(ctx, accessToken, "", "viewCount", topVideosLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search top videos: %w", err)
	}
	items := found
	if len(found) > 0 {
		ids := make([]string, len(found))
		for i := range found {
			ids[i] = found[i].VideoID
		}
		items, err = u.youtubeRepo.ListVideos(ctx, accessToken, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to list top videos: %w", err)
		}
	}

	if record == nil {
		record, err = u.store.EnsureCachedRecord(ctx, model.KindTopVideos, owner, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create top videos record: %w", err)
		}
	}
	updated, err := u.reconciler.ReconcileRecord(ctx, record, model.PurposeTopVideos, items)
	if err != nil {
		return nil, err
	}
	u.publishRefresh(ctx, owner, model.KindTopVideos, len(updated.Videos))
	return updated, nil
}

// SearchVideos serves the cached result set for (owner, query) under
// the same freshness policy as top videos.
func (u *DashboardUseCase) SearchVideos(ctx context.Context, owner, accessToken, query string, forceRefresh bool) (*model.CachedRecord, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	record, err := u.store.FindCachedRecord(ctx, model.KindSearch, owner, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	if !forceRefresh && !record.Empty() && !isStale(record.UpdatedAt) {
		return record, nil
	}

	items, err := u.youtubeRepo.SearchMyVideos(ctx, accessToken, query, "date", searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}
	if record == nil {
		record, err = u.store.EnsureCachedRecord(ctx, model.KindSearch, owner, query)
		if err != nil {
			return nil, fmt.Errorf("failed to create search record: %w", err)
		}
	}
	updated, err := u.reconciler.ReconcileRecord(ctx, record, model.PurposeSearch, items)
	if err != nil {
		return nil, err
	}
	u.publishRefresh(ctx, owner, model.KindSearch, len(updated.Videos))
	return updated, nil
}

// RefreshVideos re-fetches the given videos from upstream and upserts
// their mirrors, re-hosting thumbnails under the owner's library keys.
func (u *DashboardUseCase) RefreshVideos(ctx context.Context, owner, accessToken string, videoIDs []string) (int, error) {
	if owner == "" {
		return 0, fmt.Errorf("owner is required")
	}
	if len(videoIDs) == 0 {
		return 0, fmt.Errorf("videoIds are required")
	}
	items, err := u.youtubeRepo.ListVideos(ctx, accessToken, videoIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to list videos: %w", err)
	}
	mirrors, err := u.reconciler.Reconcile(ctx, owner, model.PurposeLibrary, items)
	if err != nil {
		return 0, err
	}
	return len(mirrors), nil
}

// GetVideoMirror reads one mirror row by upstream id.
func (u *DashboardUseCase) GetVideoMirror(ctx context.Context, videoID string) (*model.VideoMirror, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	video, err := u.store.GetVideoMirror(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (u *DashboardUseCase) publishRefresh(ctx context.Context, owner string, kind model.RecordKind, count int) {
	if u.events == nil {
		return
	}
	if err := u.events.PublishRefresh(ctx, owner, kind, count); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed publishing refresh event")
	}
}
