package repository

import (
	"context"

	"creator-dashboard/domain/model"
)

// IRefreshEvents publishes refresh-completed notifications. Publishing
// is best-effort; a publish failure never fails the refresh itself.
type IRefreshEvents interface {
	PublishRefresh(ctx context.Context, owner string, kind model.RecordKind, count int) error
}
