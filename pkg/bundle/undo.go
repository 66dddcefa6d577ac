package bundle

import (
	"slices"
	"strings"
)

// Bucket names a list of the undo payload.
type Bucket string

const (
	BucketCategories  Bucket = "categories"
	BucketWordsets    Bucket = "wordsets"
	BucketWordImages  Bucket = "word_images"
	BucketWords       Bucket = "words"
	BucketAudio       Bucket = "audio"
	BucketAttachments Bucket = "attachments"
	BucketAudioFiles  Bucket = "audio_files"
)

// UndoPayload records what an import created so it can be reversed.
// Lists are de-duplicated and keep insertion order.
type UndoPayload struct {
	Categories  []int64  `json:"categories,omitempty" yaml:"categories,omitempty"`
	Wordsets    []int64  `json:"wordsets,omitempty" yaml:"wordsets,omitempty"`
	WordImages  []int64  `json:"word_images,omitempty" yaml:"word_images,omitempty"`
	Words       []int64  `json:"words,omitempty" yaml:"words,omitempty"`
	Audio       []int64  `json:"audio,omitempty" yaml:"audio,omitempty"`
	Attachments []int64  `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	AudioFiles  []string `json:"audio_files,omitempty" yaml:"audio_files,omitempty"`
	// Featured keeps featured media of existing items that the import
	// replaced.
	Featured []FeaturedLink `json:"featured,omitempty" yaml:"featured,omitempty"`
}

// FeaturedLink is a featured media id of an item.
type FeaturedLink struct {
	ItemID  int64 `json:"item_id" yaml:"item_id"`
	MediaID int64 `json:"media_id" yaml:"media_id"`
}

// TrackFeatured remembers the featured media an existing item had
// before the import replaced it. Only the first record of an item is
// kept, it holds the state before the import.
func (u *UndoPayload) TrackFeatured(itemID, mediaID int64) {
	if itemID <= 0 || mediaID <= 0 {
		return
	}
	for _, l := range u.Featured {
		if l.ItemID == itemID {
			return
		}
	}
	u.Featured = append(u.Featured, FeaturedLink{ItemID: itemID, MediaID: mediaID})
}

// TrackID appends an id to an id bucket. Non-positive ids, repeated ids
// and unknown buckets are ignored.
func (u *UndoPayload) TrackID(b Bucket, id int64) {
	if id <= 0 {
		return
	}
	ids := u.ids(b)
	if ids == nil || slices.Contains(*ids, id) {
		return
	}
	*ids = append(*ids, id)
}

// TrackPath appends a stored file path to a path bucket. Blank paths
// and repeated paths are ignored.
func (u *UndoPayload) TrackPath(b Bucket, path string) {
	path = strings.TrimSpace(path)
	if path == "" || b != BucketAudioFiles {
		return
	}
	if slices.Contains(u.AudioFiles, path) {
		return
	}
	u.AudioFiles = append(u.AudioFiles, path)
}

// IDs returns the ids of a bucket.
func (u *UndoPayload) IDs(b Bucket) []int64 {
	if ids := u.ids(b); ids != nil {
		return *ids
	}
	return nil
}

// IsEmpty is true when nothing was recorded.
func (u *UndoPayload) IsEmpty() bool {
	return len(u.Categories)+len(u.Wordsets)+len(u.WordImages)+
		len(u.Words)+len(u.Audio)+len(u.Attachments)+
		len(u.AudioFiles)+len(u.Featured) == 0
}

func (u *UndoPayload) ids(b Bucket) *[]int64 {
	switch b {
	case BucketCategories:
		return &u.Categories
	case BucketWordsets:
		return &u.Wordsets
	case BucketWordImages:
		return &u.WordImages
	case BucketWords:
		return &u.Words
	case BucketAudio:
		return &u.Audio
	case BucketAttachments:
		return &u.Attachments
	}
	return nil
}
