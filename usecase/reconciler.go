package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"creator-dashboard/domain/model"
	"creator-dashboard/domain/repository"
)

// Reconciler turns a batch of freshly fetched upstream videos into
// durable mirror rows plus an updated membership list. Work happens in
// two phases: first every candidate is built (including the idempotent
// thumbnail re-host, keyed deterministically), then the batch commits
// atomically. A single item failure aborts the whole batch before any
// store write.
type Reconciler struct {
	store repository.IMirrorStore
	host  repository.IMediaHost
}

// NewReconciler creates a reconciler bound to a mirror store and a
// media-hosting client.
func NewReconciler(store repository.IMirrorStore, host repository.IMediaHost) *Reconciler {
	return &Reconciler{store: store, host: host}
}

// Reconcile re-hosts every item's thumbnail concurrently, then upserts
// all mirrors in one transaction. Output order matches input order.
// Engagement statistics are kept only for purposes that carry them.
func (r *Reconciler) Reconcile(ctx context.Context, owner string, purpose model.RefreshPurpose, items []model.UpstreamVideo) ([]model.VideoMirror, error) {
	if len(items) == 0 {
		return nil, nil
	}

	mirrors := make([]model.VideoMirror, len(items))
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		item := items[i]
		idx := i
		g.Go(func() error {
			hosted, err := r.host.Upload(gctx, item.ThumbnailURL, purpose.ThumbnailKey(owner, item.VideoID))
			if err != nil {
				return &model.BatchError{VideoID: item.VideoID, Index: idx, Err: err}
			}
			var stats *model.EngagementStats
			if purpose.CarriesStats() {
				stats = item.Stats
			}
			mirrors[idx] = model.VideoMirror{
				VideoID:        item.VideoID,
				Owner:          owner,
				Title:          item.Title,
				Description:    item.Description,
				PublishedAt:    item.PublishedAt,
				Tags:           item.Tags,
				ImageThumbnail: hosted,
				Stats:          stats,
				UpdatedAt:      now,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to re-host thumbnails: %w", err)
	}

	if err := r.store.UpsertVideoMirrors(ctx, mirrors); err != nil {
		return nil, fmt.Errorf("failed to upsert video mirrors: %w", err)
	}
	return mirrors, nil
}

// ReconcileRecord runs Reconcile for the record's owner and then
// replaces the record's membership with exactly the reconciled ids, in
// upstream order. Mirror rows dropped from the membership are kept.
func (r *Reconciler) ReconcileRecord(ctx context.Context, record *model.CachedRecord, purpose model.RefreshPurpose, items []model.UpstreamVideo) (*model.CachedRecord, error) {
	mirrors, err := r.Reconcile(ctx, record.Owner, purpose, items)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(mirrors))
	for i := range mirrors {
		ids[i] = mirrors[i].VideoID
	}
	updated, err := r.store.ReplaceMembership(ctx, record.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to replace membership: %w", err)
	}
	return updated, nil
}
