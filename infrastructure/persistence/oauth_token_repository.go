package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"creator-dashboard/domain/model"
)

// EnsureOAuthTokenSchema creates the oauth_tokens table if it does not exist.
func EnsureOAuthTokenSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS oauth_tokens (
        id BIGSERIAL PRIMARY KEY,
        user_id TEXT NOT NULL,
        platform TEXT NOT NULL,
        access_token TEXT NOT NULL,
        refresh_token TEXT,
        expires_at TIMESTAMPTZ NULL,
        scopes TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        UNIQUE (user_id, platform)
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create oauth_tokens: %w", err)
	}
	return nil
}

type OAuthTokenRepository struct{ db *sql.DB }

func NewOAuthTokenRepository(db *sql.DB) *OAuthTokenRepository { return &OAuthTokenRepository{db: db} }

func (r *OAuthTokenRepository) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	q := `INSERT INTO oauth_tokens (user_id, platform, access_token, refresh_token, expires_at, scopes, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		  ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, t.UserID, t.Platform, t.AccessToken, t.RefreshToken, t.ExpiresAt, t.Scopes, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *OAuthTokenRepository) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, created_at, updated_at FROM oauth_tokens WHERE user_id=$1 AND platform=$2`, userID, platform)
	tok := &model.OAuthToken{}
	var exp sql.NullTime
	if err := row.Scan(&tok.ID, &tok.UserID, &tok.Platform, &tok.AccessToken, &tok.RefreshToken, &exp, &tok.Scopes, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		return nil, err
	}
	if exp.Valid {
		tok.ExpiresAt = &exp.Time
	}
	return tok, nil
}
