package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"creator-dashboard/domain/model"
)

func TestThumbnailKey_DeterministicPerPurpose(t *testing.T) {
	assert.Equal(t, "alice/top_videos/v1", model.PurposeTopVideos.ThumbnailKey("alice", "v1"))
	assert.Equal(t, "alice/search/v1", model.PurposeSearch.ThumbnailKey("alice", "v1"))
	assert.Equal(t, "alice/v1", model.PurposeLibrary.ThumbnailKey("alice", "v1"))

	// Same inputs always produce the same key so re-uploads overwrite.
	assert.Equal(t,
		model.PurposeSearch.ThumbnailKey("alice", "v1"),
		model.PurposeSearch.ThumbnailKey("alice", "v1"))
}

func TestCarriesStats(t *testing.T) {
	assert.True(t, model.PurposeTopVideos.CarriesStats())
	assert.False(t, model.PurposeSearch.CarriesStats())
	assert.False(t, model.PurposeLibrary.CarriesStats())
}

func TestCachedRecordEmpty_NilSafe(t *testing.T) {
	var record *model.CachedRecord
	assert.True(t, record.Empty())
	assert.True(t, (&model.CachedRecord{}).Empty())
	assert.False(t, (&model.CachedRecord{Videos: []model.VideoMirror{{VideoID: "v1"}}}).Empty())
}

func TestCachedRecordVideoIDs_PreservesOrder(t *testing.T) {
	record := &model.CachedRecord{Videos: []model.VideoMirror{
		{VideoID: "z"}, {VideoID: "a"}, {VideoID: "m"},
	}}
	assert.Equal(t, []string{"z", "a", "m"}, record.VideoIDs())
}
