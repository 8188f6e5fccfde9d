package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"creator-dashboard/domain/model"
)

type OAuthTokenRepositoryMSSQL struct{ db *sql.DB }

func NewOAuthTokenRepositoryMSSQL(db *sql.DB) *OAuthTokenRepositoryMSSQL {
	return &OAuthTokenRepositoryMSSQL{db: db}
}

// EnsureOAuthTokenSchemaMSSQL creates the oauth_tokens table for SQL Server if it does not exist.
func EnsureOAuthTokenSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.oauth_tokens') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[oauth_tokens] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        user_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(64) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        refresh_token NVARCHAR(MAX) NULL,
        expires_at DATETIME2 NULL,
        scopes NVARCHAR(MAX) NOT NULL,
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_oauth_tokens_user_platform ON dbo.[oauth_tokens](user_id, platform);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create oauth_tokens (mssql): %w", err)
	}
	return nil
}

func (r *OAuthTokenRepositoryMSSQL) UpsertToken(ctx context.Context, t *model.OAuthToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	// Normalize nullable values for MSSQL driver
	var exp sql.NullTime
	if t.ExpiresAt != nil {
		exp.Valid = true
		exp.Time = *t.ExpiresAt
	}
	// MERGE upsert by (user_id, platform)
	q := `MERGE dbo.[oauth_tokens] AS target
USING (VALUES (@p1, @p2)) AS src(user_id, platform)
ON target.user_id = src.user_id AND target.platform = src.platform
WHEN MATCHED THEN UPDATE SET
    access_token=@p3,
    refresh_token=@p4,
    expires_at=@p5,
    scopes=@p6,
    updated_at=@p8
WHEN NOT MATCHED THEN
    INSERT (user_id, platform, access_token, refresh_token, expires_at, scopes, created_at, updated_at)
    VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8);`
	_, err := r.db.ExecContext(ctx, q,
		t.UserID, t.Platform,
		t.AccessToken,
		t.RefreshToken,
		exp,
		t.Scopes,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *OAuthTokenRepositoryMSSQL) GetToken(ctx context.Context, userID, platform string) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, platform, access_token, refresh_token, expires_at, scopes, created_at, updated_at FROM dbo.[oauth_tokens] WHERE user_id=@p1 AND platform=@p2`, userID, platform)
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
