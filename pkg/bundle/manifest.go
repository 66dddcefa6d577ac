// Package bundle defines the portable bundle format of GNbundle and the
// shapes shared by import, export and history: manifest records, import
// results with their undo payloads, history entries and the key-value
// abstraction history is persisted through.
package bundle

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlib"
)

// ManifestFile is the name of the native manifest at the archive root.
const ManifestFile = "manifest.json"

// Manifest is the native bundle payload.
type Manifest struct {
	Version       string        `json:"version,omitempty"`
	GeneratedAt   *time.Time    `json:"generated_at,omitempty"`
	Categories    []Category    `json:"categories"`
	WordImages    []WordImage   `json:"word_images"`
	Wordsets      []Wordset     `json:"wordsets,omitempty"`
	Words         []Word        `json:"words,omitempty"`
	MediaEstimate MediaEstimate `json:"media_estimate"`
}

// Category is a category record. Parent is the slug of the parent
// category, empty for roots.
type Category struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Parent      string       `json:"parent,omitempty"`
	Meta        content.Meta `json:"meta,omitempty"`
}

// WordImage is an illustrated vocabulary item.
type WordImage struct {
	// SourceID is the identifier the item had in the exporting store.
	SourceID      int64        `json:"source_id,omitempty"`
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Status        string       `json:"status,omitempty"`
	Meta          content.Meta `json:"meta,omitempty"`
	Categories    []string     `json:"categories,omitempty"`
	FeaturedImage *MediaFile   `json:"featured_image,omitempty"`
}

// Wordset is a named set of words.
type Wordset struct {
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Meta        content.Meta `json:"meta,omitempty"`
}

// Word is a lexical entry.
type Word struct {
	SourceID      int64        `json:"source_id,omitempty"`
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Content       string       `json:"content,omitempty"`
	Status        string       `json:"status,omitempty"`
	Meta          content.Meta `json:"meta,omitempty"`
	Categories    []string     `json:"categories,omitempty"`
	Wordsets      []string     `json:"wordsets,omitempty"`
	WordImage     string       `json:"word_image,omitempty"`
	Languages     []string     `json:"languages,omitempty"`
	PartsOfSpeech []string     `json:"parts_of_speech,omitempty"`
	FeaturedImage *MediaFile   `json:"featured_image,omitempty"`
	AudioEntries  []AudioEntry `json:"audio_entries,omitempty"`
}

// AudioEntry is a recording that belongs to a word.
type AudioEntry struct {
	Slug           string       `json:"slug"`
	Title          string       `json:"title"`
	Status         string       `json:"status,omitempty"`
	Meta           content.Meta `json:"meta,omitempty"`
	RecordingTypes []string     `json:"recording_types,omitempty"`
	AudioFile      *MediaFile   `json:"audio_file,omitempty"`
}

// MediaFile describes a media file inside the bundle. Path is relative
// to the archive root.
type MediaFile struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
	Mime string `json:"mime,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// MediaEstimate summarises media referenced by the manifest.
type MediaEstimate struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// HasFullContent is true when the manifest carries words or wordsets.
func (m *Manifest) HasFullContent() bool {
	return len(m.Words) > 0 || len(m.Wordsets) > 0
}

// MediaFiles returns all media descriptors of the manifest in
// document order.
func (m *Manifest) MediaFiles() []*MediaFile {
	var res []*MediaFile
	for i := range m.WordImages {
		if f := m.WordImages[i].FeaturedImage; f != nil {
			res = append(res, f)
		}
	}
	for i := range m.Words {
		w := &m.Words[i]
		if w.FeaturedImage != nil {
			res = append(res, w.FeaturedImage)
		}
		for j := range w.AudioEntries {
			if f := w.AudioEntries[j].AudioFile; f != nil {
				res = append(res, f)
			}
		}
	}
	return res
}

// requiredKeys catches absent collections that would otherwise decode
// into nil slices.
type requiredKeys struct {
	Categories json.RawMessage `json:"categories"`
	WordImages json.RawMessage `json:"word_images"`
}

// ParseManifest decodes and validates a native manifest. The
// categories and word_images collections must be present, they can
// be empty. The version, if given, must be a semantic version not older
// than the minimal supported one.
func ParseManifest(data []byte) (*Manifest, error) {
	enc := gnfmt.GNjson{}

	var keys requiredKeys
	if err := enc.Decode(data, &keys); err != nil {
		return nil, ManifestDecodeError(err)
	}
	var missing []string
	if isAbsent(keys.Categories) {
		missing = append(missing, "categories")
	}
	if isAbsent(keys.WordImages) {
		missing = append(missing, "word_images")
	}
	if len(missing) > 0 {
		return nil, ManifestKeysError(missing)
	}

	var res Manifest
	if err := enc.Decode(data, &res); err != nil {
		return nil, ManifestDecodeError(err)
	}

	if res.Version != "" {
		if !gnlib.IsVersion(res.Version) {
			return nil, ManifestVersionFormatError(res.Version)
		}
		if gnlib.CmpVersion(res.Version, config.MinManifestVersion) < 0 {
			return nil, ManifestVersionTooOldError(res.Version)
		}
	}
	return &res, nil
}

func isAbsent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
