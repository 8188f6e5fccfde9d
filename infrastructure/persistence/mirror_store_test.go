package persistence_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-dashboard/domain/model"
	"creator-dashboard/infrastructure/persistence"
)

func TestGetChannelStats_DecodesStoredRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updatedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	payload, _ := json.Marshal(model.ChannelStats{
		ChannelSummary: model.ChannelSummary{ChannelID: "chan-1", Title: "Alice"},
		Analytics:      map[string]float64{"views": 42},
	})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data, updated_at FROM channel_stats WHERE user_name=$1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"data", "updated_at"}).AddRow(payload, updatedAt))

	store := persistence.NewMirrorStore(db)
	stats, err := store.GetChannelStats(context.Background(), "alice")

	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, "alice", stats.Owner)
	assert.Equal(t, "chan-1", stats.ChannelID)
	assert.Equal(t, float64(42), stats.Analytics["views"])
	require.NotNil(t, stats.UpdatedAt)
	assert.Equal(t, updatedAt, *stats.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetChannelStats_MissingRowIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data, updated_at FROM channel_stats WHERE user_name=$1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"data", "updated_at"}))

	store := persistence.NewMirrorStore(db)
	stats, err := store.GetChannelStats(context.Background(), "ghost")

	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestUpsertChannelStats_BumpsUpdatedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO channel_stats(user_name, data, updated_at)`)).
		WithArgs("alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := persistence.NewMirrorStore(db)
	stored, err := store.UpsertChannelStats(context.Background(), &model.ChannelStats{
		Owner:          "alice",
		ChannelSummary: model.ChannelSummary{ChannelID: "chan-1"},
	})

	require.NoError(t, err)
	require.NotNil(t, stored.UpdatedAt)
	assert.WithinDuration(t, time.Now().UTC(), *stored.UpdatedAt, 5*time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCachedRecord_ExpandsMembershipInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updatedAt := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, updated_at FROM cached_records WHERE kind=$1 AND user_name=$2 AND query=$3`)).
		WithArgs("top_videos", "alice", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(7), updatedAt))

	v1, _ := json.Marshal(model.VideoMirror{VideoID: "v1", Owner: "alice", Title: "one"})
	v2, _ := json.Marshal(model.VideoMirror{VideoID: "v2", Owner: "alice", Title: "two"})
	mock.ExpectQuery(`SELECT v.data FROM cached_record_videos m`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(v1).AddRow(v2))

	store := persistence.NewMirrorStore(db)
	record, err := store.FindCachedRecord(context.Background(), model.KindTopVideos, "alice", "")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, int64(7), record.ID)
	require.Len(t, record.Videos, 2)
	assert.Equal(t, "v1", record.Videos[0].VideoID)
	assert.Equal(t, "v2", record.Videos[1].VideoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCachedRecord_AbsentIsNilNotError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, updated_at FROM cached_records`)).
		WithArgs("search", "alice", "golang").
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}))

	store := persistence.NewMirrorStore(db)
	record, err := store.FindCachedRecord(context.Background(), model.KindSearch, "alice", "golang")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestUpsertVideoMirrors_SingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO video_mirror(video_id, user_name, data, updated_at)`))
	prep.ExpectExec().WithArgs("v1", "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs("v2", "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := persistence.NewMirrorStore(db)
	now := time.Now().UTC()
	err = store.UpsertVideoMirrors(context.Background(), []model.VideoMirror{
		{VideoID: "v1", Owner: "alice", UpdatedAt: now},
		{VideoID: "v2", Owner: "alice", UpdatedAt: now},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertVideoMirrors_FailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO video_mirror(video_id, user_name, data, updated_at)`))
	prep.ExpectExec().WithArgs("v1", "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := persistence.NewMirrorStore(db)
	err = store.UpsertVideoMirrors(context.Background(), []model.VideoMirror{
		{VideoID: "v1", Owner: "alice", UpdatedAt: time.Now().UTC()},
	})

	require.Error(t, err)
	var sErr *model.StorageError
	assert.ErrorAs(t, err, &sErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMembership_DeletesInsertsAndBumps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT kind, user_name, query FROM cached_records WHERE id=$1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "user_name", "query"}).AddRow("top_videos", "alice", ""))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cached_record_videos WHERE record_id=$1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO cached_record_videos(record_id, position, video_id)`))
	prep.ExpectExec().WithArgs(int64(7), 0, "v2").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(7), 1, "v1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE cached_records SET updated_at=$1 WHERE id=$2`)).
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v2, _ := json.Marshal(model.VideoMirror{VideoID: "v2"})
	v1, _ := json.Marshal(model.VideoMirror{VideoID: "v1"})
	mock.ExpectQuery(`SELECT v.data FROM cached_record_videos m`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(v2).AddRow(v1))

	store := persistence.NewMirrorStore(db)
	record, err := store.ReplaceMembership(context.Background(), 7, []string{"v2", "v1"})

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.KindTopVideos, record.Kind)
	require.NotNil(t, record.UpdatedAt)
	require.Len(t, record.Videos, 2)
	assert.Equal(t, "v2", record.Videos[0].VideoID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMembership_InsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT kind, user_name, query FROM cached_records WHERE id=$1`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "user_name", "query"}).AddRow("search", "alice", "go"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cached_record_videos WHERE record_id=$1`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO cached_record_videos(record_id, position, video_id)`))
	prep.ExpectExec().WithArgs(int64(7), 0, "v1").WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	store := persistence.NewMirrorStore(db)
	_, err = store.ReplaceMembership(context.Background(), 7, []string{"v1"})

	require.Error(t, err)
	var sErr *model.StorageError
	assert.ErrorAs(t, err, &sErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVideoMirror_AbsentIsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM video_mirror WHERE video_id=$1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	store := persistence.NewMirrorStore(db)
	video, err := store.GetVideoMirror(context.Background(), "ghost")

	require.NoError(t, err)
	assert.Nil(t, video)
}
