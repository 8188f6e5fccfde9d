package repository

import (
	"context"

	"creator-dashboard/domain/model"
)

// IOAuthToken persists per-user platform OAuth tokens.
type IOAuthToken interface {
	UpsertToken(ctx context.Context, token *model.OAuthToken) error
	GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error)
}

// ITokenSource resolves the upstream access token for an owner, with
// whatever caching the implementation chooses.
type ITokenSource interface {
	AccessToken(ctx context.Context, userID string) (string, error)
}
