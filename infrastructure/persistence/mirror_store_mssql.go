package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"creator-dashboard/domain/model"
)

// EnsureMirrorSchemaMSSQL creates the data-mirror tables for SQL Server
// if they do not exist. JSON payloads live in NVARCHAR(MAX).
func EnsureMirrorSchemaMSSQL(db *sql.DB) error {
	ddls := []string{
		`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.channel_stats') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[channel_stats] (
        user_name NVARCHAR(128) NOT NULL PRIMARY KEY,
        data NVARCHAR(MAX) NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
END`,
		`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.video_mirror') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[video_mirror] (
        video_id NVARCHAR(64) NOT NULL PRIMARY KEY,
        user_name NVARCHAR(128) NOT NULL,
        data NVARCHAR(MAX) NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
END`,
		`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.cached_records') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[cached_records] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        kind NVARCHAR(32) NOT NULL,
        user_name NVARCHAR(128) NOT NULL,
        query NVARCHAR(255) NOT NULL DEFAULT N'',
        updated_at DATETIME2 NULL
    );
    CREATE UNIQUE INDEX UX_cached_records_kind_user_query ON dbo.[cached_records](kind, user_name, query);
END`,
		`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.cached_record_videos') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[cached_record_videos] (
        record_id BIGINT NOT NULL,
        position INT NOT NULL,
        video_id NVARCHAR(64) NOT NULL,
        PRIMARY KEY (record_id, position)
    );
    CREATE INDEX IX_cached_record_videos_video_id ON dbo.[cached_record_videos](video_id);
END`,
	}
	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create mirror schema (mssql): %w", err)
		}
	}
	return nil
}

// MirrorStoreMSSQL is the SQL Server implementation of the data mirror
// store, used when the service runs against Azure SQL.
type MirrorStoreMSSQL struct{ db *sql.DB }

func NewMirrorStoreMSSQL(db *sql.DB) *MirrorStoreMSSQL {
	return &MirrorStoreMSSQL{db: db}
}

func (r *MirrorStoreMSSQL) GetChannelStats(ctx context.Context, owner string) (*model.ChannelStats, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data, updated_at FROM dbo.[channel_stats] WHERE user_name=@p1`, owner)
	var raw []byte
	var updatedAt time.Time
	if err := row.Scan(&raw, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr("read channel stats", err)
	}
	var stats model.ChannelStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, storageErr("decode channel stats", err)
	}
	stats.Owner = owner
	stats.UpdatedAt = &updatedAt
	return &stats, nil
}

func (r *MirrorStoreMSSQL) UpsertChannelStats(ctx context.Context, stats *model.ChannelStats) (*model.ChannelStats, error) {
	out := *stats
	out.UpdatedAt = nil
	raw, err := json.Marshal(&out)
	if err != nil {
		return nil, storageErr("encode channel stats", err)
	}
	now := time.Now().UTC()
	q := `MERGE dbo.[channel_stats] AS target
USING (VALUES (@p1)) AS src(user_name)
ON target.user_name = src.user_name
WHEN MATCHED THEN UPDATE SET data=@p2, updated_at=@p3
WHEN NOT MATCHED THEN INSERT (user_name, data, updated_at) VALUES (@p1,@p2,@p3);`
	if _, err := r.db.ExecContext(ctx, q, stats.Owner, string(raw), now); err != nil {
		return nil, storageErr("upsert channel stats", err)
	}
	out.UpdatedAt = &now
	return &out, nil
}

func (r *MirrorStoreMSSQL) FindCachedRecord(ctx context.Context, kind model.RecordKind, owner, query string) (*model.CachedRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, updated_at FROM dbo.[cached_records] WHERE kind=@p1 AND user_name=@p2 AND query=@p3`, string(kind), owner, query)
	var id int64
	var updatedAt sql.NullTime
	if err := row.Scan(&id, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr("read cached record", err)
	}
	record := &model.CachedRecord{ID: id, Kind: kind, Owner: owner, Query: query}
	if updatedAt.Valid {
		t := updatedAt.Time
		record.UpdatedAt = &t
	}
	videos, err := r.membership(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Videos = videos
	return record, nil
}

func (r *MirrorStoreMSSQL) EnsureCachedRecord(ctx context.Context, kind model.RecordKind, owner, query string) (*model.CachedRecord, error) {
	q := `IF NOT EXISTS (SELECT 1 FROM dbo.[cached_records] WHERE kind=@p1 AND user_name=@p2 AND query=@p3)
    INSERT INTO dbo.[cached_records] (kind, user_name, query) VALUES (@p1,@p2,@p3);`
	if _, err := r.db.ExecContext(ctx, q, string(kind), owner, query); err != nil {
		return nil, storageErr("ensure cached record", err)
	}
	record, err := r.FindCachedRecord(ctx, kind, owner, query)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storageErr("ensure cached record", sql.ErrNoRows)
	}
	return record, nil
}

func (r *MirrorStoreMSSQL) UpsertVideoMirrors(ctx context.Context, videos []model.VideoMirror) error {
	if len(videos) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin upsert", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	q := `MERGE dbo.[video_mirror] AS target
USING (VALUES (@p1)) AS src(video_id)
ON target.video_id = src.video_id
WHEN MATCHED THEN UPDATE SET user_name=@p2, data=@p3, updated_at=@p4
WHEN NOT MATCHED THEN INSERT (video_id, user_name, data, updated_at) VALUES (@p1,@p2,@p3,@p4);`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return storageErr("prepare upsert", err)
	}
	defer stmt.Close()
	for i := range videos {
		raw, mErr := json.Marshal(&videos[i])
		if mErr != nil {
			err = storageErr("encode video mirror", mErr)
			return err
		}
		if _, e := stmt.ExecContext(ctx, videos[i].VideoID, videos[i].Owner, string(raw), videos[i].UpdatedAt); e != nil {
			err = storageErr("upsert video mirror", e)
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return storageErr("commit upsert", err)
	}
	return nil
}

func (r *MirrorStoreMSSQL) ReplaceMembership(ctx context.Context, recordID int64, videoIDs []string) (*model.CachedRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin replace membership", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT kind, user_name, query FROM dbo.[cached_records] WHERE id=@p1`, recordID)
	var kind, owner, query string
	if err = row.Scan(&kind, &owner, &query); err != nil {
		return nil, storageErr("read cached record", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM dbo.[cached_record_videos] WHERE record_id=@p1`, recordID); err != nil {
		return nil, storageErr("clear membership", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dbo.[cached_record_videos](record_id, position, video_id) VALUES (@p1,@p2,@p3)`)
	if err != nil {
		return nil, storageErr("prepare membership", err)
	}
	defer stmt.Close()
	for i, id := range videoIDs {
		if _, e := stmt.ExecContext(ctx, recordID, i, id); e != nil {
			err = storageErr("insert membership", e)
			return nil, err
		}
	}
	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE dbo.[cached_records] SET updated_at=@p1 WHERE id=@p2`, now, recordID); err != nil {
		return nil, storageErr("bump cached record", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, storageErr("commit replace membership", err)
	}

	record := &model.CachedRecord{
		ID:        recordID,
		Kind:      model.RecordKind(kind),
		Owner:     owner,
		Query:     query,
		UpdatedAt: &now,
	}
	videos, err := r.membership(ctx, recordID)
	if err != nil {
		return nil, err
	}
	record.Videos = videos
	return record, nil
}

func (r *MirrorStoreMSSQL) GetVideoMirror(ctx context.Context, videoID string) (*model.VideoMirror, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM dbo.[video_mirror] WHERE video_id=@p1`, videoID)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storageErr("read video mirror", err)
	}
	var video model.VideoMirror
	if err := json.Unmarshal(raw, &video); err != nil {
		return nil, storageErr("decode video mirror", err)
	}
	return &video, nil
}

func (r *MirrorStoreMSSQL) membership(ctx context.Context, recordID int64) ([]model.VideoMirror, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT v.data FROM dbo.[cached_record_videos] m
        JOIN dbo.[video_mirror] v ON v.video_id = m.video_id
        WHERE m.record_id=@p1 ORDER BY m.position`, recordID)
	if err != nil {
		return nil, storageErr("read membership", err)
	}
	defer rows.Close()
	out := make([]model.VideoMirror, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr("scan membership", err)
		}
		var video model.VideoMirror
		if err := json.Unmarshal(raw, &video); err != nil {
			return nil, storageErr("decode video mirror", err)
		}
		out = append(out, video)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate membership", err)
	}
	return out, nil
}
