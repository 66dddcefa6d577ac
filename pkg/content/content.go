// Package content describes the content store GNbundle reads from and
// writes to. The store keeps hierarchical taxonomy terms (categories,
// wordsets and auxiliary taxonomies), content items (word images, words,
// word audio) and binary media files in a managed storage area.
//
// The package is pure: it only defines entities and the Store contract.
// The implementation lives in internal/iostore.
package content

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookups that find nothing.
var ErrNotFound = errors.New("not found")

// Taxonomy names a family of terms.
type Taxonomy string

const (
	Category      Taxonomy = "category"
	Wordset       Taxonomy = "wordset"
	Language      Taxonomy = "language"
	PartOfSpeech  Taxonomy = "part_of_speech"
	RecordingType Taxonomy = "recording_type"
)

// ItemType names a kind of content item.
type ItemType string

const (
	WordImage ItemType = "word_image"
	Word      ItemType = "word"
	WordAudio ItemType = "word_audio"
)

// Status values of items.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// Meta is a multi-valued metadata map.
type Meta map[string][]string

// Term is a taxonomy term. Slugs are unique within a taxonomy.
type Term struct {
	ID          int64
	Taxonomy    Taxonomy
	Slug        string
	Name        string
	Description string
	// ParentID is zero for root terms.
	ParentID int64
	Meta     Meta
}

// Item is a content item. Slugs are unique within a type, and for child
// items (word audio) within the parent item.
type Item struct {
	ID      int64
	Type    ItemType
	Slug    string
	Title   string
	Content string
	Status  string
	// ParentID is the owning item for word audio, zero otherwise.
	ParentID int64
	// FeaturedMediaID points to the featured image or, for word audio,
	// to the audio file.
	FeaturedMediaID int64
	Meta            Meta
}

// Media is a file stored in the managed media area.
type Media struct {
	ID     int64
	ItemID int64
	// Path is relative to the managed media root, slash separated.
	Path     string
	Name     string
	MimeType string
	Size     int64
}

// WriteOptions modify item writes.
type WriteOptions struct {
	// SkipPublishGate allows storing a published word that has no audio
	// yet. Without it such a word is stored as a draft.
	SkipPublishGate bool
}

// ItemQuery filters ListItems.
type ItemQuery struct {
	Type ItemType
	// TermIDs keeps items that belong to at least one of the terms.
	TermIDs []int64
	// ParentID keeps children of the given item.
	ParentID int64
}

// Store is the content store contract consumed by the import and export
// engines.
type Store interface {
	// FindTerm looks a term up by taxonomy and slug. Returns ErrNotFound
	// if there is no such term.
	FindTerm(ctx context.Context, tax Taxonomy, slug string) (*Term, error)
	// TermByID returns a term by its identifier.
	TermByID(ctx context.Context, id int64) (*Term, error)
	// ListTerms returns all terms of a taxonomy ordered by id.
	ListTerms(ctx context.Context, tax Taxonomy) ([]Term, error)
	// CreateTerm stores a new term and sets its ID.
	CreateTerm(ctx context.Context, t *Term) error
	// UpdateTerm saves name, description and parent of a term.
	UpdateTerm(ctx context.Context, t *Term) error
	// SetTermMeta replaces all values of a metadata key.
	SetTermMeta(ctx context.Context, id int64, key string, vals []string) error
	// DeleteTerm removes a term and its memberships.
	DeleteTerm(ctx context.Context, id int64) error

	// FindItem looks an item up by type, slug and parent.
	// Returns ErrNotFound if there is no such item.
	FindItem(
		ctx context.Context,
		typ ItemType,
		slug string,
		parentID int64,
	) (*Item, error)
	// ItemByID returns an item by its identifier.
	ItemByID(ctx context.Context, id int64) (*Item, error)
	// ListItems returns items matching the query ordered by id.
	ListItems(ctx context.Context, q ItemQuery) ([]Item, error)
	// CreateItem stores a new item and sets its ID.
	CreateItem(ctx context.Context, it *Item, opts WriteOptions) error
	// UpdateItem saves the fields of an existing item.
	UpdateItem(ctx context.Context, it *Item, opts WriteOptions) error
	// SetItemMeta replaces all values of a metadata key.
	SetItemMeta(ctx context.Context, id int64, key string, vals []string) error
	// SetItemTerms replaces the membership of an item in a taxonomy.
	SetItemTerms(
		ctx context.Context,
		itemID int64,
		tax Taxonomy,
		termIDs []int64,
	) error
	// ItemTerms returns term ids of an item in a taxonomy.
	ItemTerms(ctx context.Context, itemID int64, tax Taxonomy) ([]int64, error)
	// DeleteItem removes an item, its metadata and memberships.
	DeleteItem(ctx context.Context, id int64) error

	// AttachMedia copies a file into the managed area, records it as
	// media of the item and, if featured is true, makes it the item's
	// featured media.
	AttachMedia(
		ctx context.Context,
		itemID int64,
		srcPath, name string,
		featured bool,
	) (*Media, error)
	// MediaByID returns a media record.
	MediaByID(ctx context.Context, id int64) (*Media, error)
	// DeleteMedia removes a media record, the file stays.
	DeleteMedia(ctx context.Context, id int64) error
	// MediaRoot is the absolute managed storage root.
	MediaRoot() string
}

// Clone returns a deep copy of the metadata.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	res := make(Meta, len(m))
	for k, v := range m {
		res[k] = append([]string(nil), v...)
	}
	return res
}

// First returns the first value of a key.
func (m Meta) First(key string) string {
	if vals := m[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
