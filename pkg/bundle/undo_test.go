package bundle_test

import (
	"testing"

	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/stretchr/testify/assert"
)

func TestTrackID(t *testing.T) {
	var u bundle.UndoPayload
	u.TrackID(bundle.BucketWords, 3)
	u.TrackID(bundle.BucketWords, 1)
	u.TrackID(bundle.BucketWords, 3)
	u.TrackID(bundle.BucketWords, 0)
	u.TrackID(bundle.BucketWords, -5)
	u.TrackID(bundle.BucketAudioFiles, 7)
	u.TrackID(bundle.Bucket("nope"), 7)

	assert.Equal(t, []int64{3, 1}, u.Words)
	assert.Equal(t, []int64{3, 1}, u.IDs(bundle.BucketWords))
	assert.Empty(t, u.AudioFiles)
	assert.Nil(t, u.IDs(bundle.BucketAudioFiles))
}

func TestTrackPath(t *testing.T) {
	var u bundle.UndoPayload
	assert.True(t, u.IsEmpty())

	u.TrackPath(bundle.BucketAudioFiles, "2026/10/a.mp3")
	u.TrackPath(bundle.BucketAudioFiles, "  ")
	u.TrackPath(bundle.BucketAudioFiles, "2026/10/a.mp3")
	u.TrackPath(bundle.BucketAudioFiles, "2026/10/b.mp3")
	u.TrackPath(bundle.BucketWords, "x.mp3")

	assert.Equal(t, []string{"2026/10/a.mp3", "2026/10/b.mp3"}, u.AudioFiles)
	assert.False(t, u.IsEmpty())
}

func TestTrackFeatured(t *testing.T) {
	var u bundle.UndoPayload
	u.TrackFeatured(4, 10)
	u.TrackFeatured(4, 11)
	u.TrackFeatured(5, 0)
	u.TrackFeatured(0, 12)

	assert.Equal(t, []bundle.FeaturedLink{{ItemID: 4, MediaID: 10}}, u.Featured)
	assert.False(t, u.IsEmpty())
}

func TestResultFinish(t *testing.T) {
	var r bundle.Result
	r.AddWarning("row 3 skipped")
	r.Finish()
	assert.True(t, r.OK)

	r.AddError("word \"cat\": boom")
	r.Finish()
	assert.False(t, r.OK)
}
