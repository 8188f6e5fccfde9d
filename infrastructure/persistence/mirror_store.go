package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"creator-dashboard/domain/model"
	"creator-dashboard/infrastructure/logger"
)

// EnsureMirrorSchema creates the data-mirror tables if not exists.
func EnsureMirrorSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS channel_stats (
            user_name TEXT PRIMARY KEY,
            data JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS video_mirror (
            video_id TEXT PRIMARY KEY,
            user_name TEXT NOT NULL,
            data JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS cached_records (
            id BIGSERIAL PRIMARY KEY,
            kind TEXT NOT NULL,
            user_name TEXT NOT NULL,
            query TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ NULL,
            UNIQUE (kind, user_name, query)
        )`,
		`CREATE TABLE IF NOT EXISTS cached_record_videos (
            record_id BIGINT NOT NULL REFERENCES cached_records(id) ON DELETE CASCADE,
            position INT NOT NULL,
            video_id TEXT NOT NULL,
            PRIMARY KEY (record_id, position)
        )`,
	}
	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create mirror schema: %w", err)
		}
	}

	// Helpful index for reverse lookups (which memberships hold a video)
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_cached_record_videos_video_id ON cached_record_videos(video_id)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_cached_record_videos_video_id")
	}
	return nil
}

// MirrorStore implements the data mirror store on PostgreSQL. Video and
// stats payloads are stored as JSONB for flexibility without strict
// relational mapping; membership is relational for ordered expansion.
type MirrorStore struct{ db *sql.DB }

func NewMirrorStore(db *sql.DB) *MirrorStore {
	return &MirrorStore{db: db}
}

func storageErr(op string, err error) error {
	return &model.StorageError{Op: op, Err: err}
}

// GetChannelStats returns the cached stats row for the owner, or nil
// when never populated.
func (r *MirrorStore) GetChannelStats(ctx context.Context, owner string) (*model.ChannelStats, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data, updated_at FROM channel_stats WHERE user_name=$1`, owner)
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

// UpsertChannelStats stores the refreshed stats keyed by owner, bumping
// updated_at, and returns the persisted record.
func (r *MirrorStore) UpsertChannelStats(ctx context.Context, stats *model.ChannelStats) (*model.ChannelStats, error) {
	out := *stats
	out.UpdatedAt = nil // updated_at lives in its own column
	raw, err := json.Marshal(&out)
	if err != nil {
		return nil, storageErr("encode channel stats", err)
	}
	now := time.Now().UTC()
	q := `INSERT INTO channel_stats(user_name, data, updated_at)
          VALUES ($1,$2,$3)
          ON CONFLICT (user_name) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q, stats.Owner, raw, now); err != nil {
		return nil, storageErr("upsert channel stats", err)
	}
	out.UpdatedAt = &now
	return &out, nil
}

// FindCachedRecord returns the record for (kind, owner, query) with its
// membership expanded in stored order, or nil when absent.
func (r *MirrorStore) FindCachedRecord(ctx context.Context, kind model.RecordKind, owner, query string) (*model.CachedRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, updated_at FROM cached_records WHERE kind=$1 AND user_name=$2 AND query=$3`, string(kind), owner, query)
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

// EnsureCachedRecord creates the record row if absent (no-op when
// present) and returns it with membership expanded.
func (r *MirrorStore) EnsureCachedRecord(ctx context.Context, kind model.RecordKind, owner, query string) (*model.CachedRecord, error) {
	q := `INSERT INTO cached_records (kind, user_name, query) VALUES ($1,$2,$3)
          ON CONFLICT (kind, user_name, query) DO NOTHING`
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

// UpsertVideoMirrors bulk upserts mirror rows keyed by video id in a
// single transaction.
func (r *MirrorStore) UpsertVideoMirrors(ctx context.Context, videos []model.VideoMirror) error {
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
	q := `INSERT INTO video_mirror(video_id, user_name, data, updated_at)
		  VALUES ($1,$2,$3,$4)
		  ON CONFLICT (video_id) DO UPDATE SET user_name=EXCLUDED.user_name, data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`
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
		if _, e := stmt.ExecContext(ctx, videos[i].VideoID, videos[i].Owner, raw, videos[i].UpdatedAt); e != nil {
			err = storageErr("upsert video mirror", e)
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return storageErr("commit upsert", err)
	}
	return nil
}

// ReplaceMembership sets the record's membership to exactly videoIDs in
// order, bumps updated_at, and returns the record expanded.
func (r *MirrorStore) ReplaceMembership(ctx context.Context, recordID int64, videoIDs []string) (*model.CachedRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr("begin replace membership", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, `SELECT kind, user_name, query FROM cached_records WHERE id=$1`, recordID)
	var kind, owner, query string
	if err = row.Scan(&kind, &owner, &query); err != nil {
		return nil, storageErr("read cached record", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cached_record_videos WHERE record_id=$1`, recordID); err != nil {
		return nil, storageErr("clear membership", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cached_record_videos(record_id, position, video_id) VALUES ($1,$2,$3)`)
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
	if _, err = tx.ExecContext(ctx, `UPDATE cached_records SET updated_at=$1 WHERE id=$2`, now, recordID); err != nil {
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

// GetVideoMirror returns one mirror row, or nil when absent.
func (r *MirrorStore) GetVideoMirror(ctx context.Context, videoID string) (*model.VideoMirror, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM video_mirror WHERE video_id=$1`, videoID)
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

// membership expands a record's ordered membership into mirror rows.
func (r *MirrorStore) membership(ctx context.Context, recordID int64) ([]model.VideoMirror, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT v.data FROM cached_record_videos m
        JOIN video_mirror v ON v.video_id = m.video_id
        WHERE m.record_id=$1 ORDER BY m.position`, recordID)
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
