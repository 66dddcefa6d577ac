// Package schema provides GORM models of the GNbundle content store.
package schema

import "time"

// Term is a taxonomy term: a category, a wordset or an auxiliary term
// such as a language or a recording type.
type Term struct {
	ID int64 `gorm:"primaryKey"`

	// Taxonomy and Slug are unique together.
	Taxonomy string `gorm:"size:32;not null;uniqueIndex:idx_terms_tax_slug"`
	Slug     string `gorm:"size:200;not null;uniqueIndex:idx_terms_tax_slug"`

	Name        string `gorm:"size:255"`
	Description string

	// ParentID is zero for root terms.
	ParentID int64 `gorm:"index;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name of Term.
func (Term) TableName() string { return "terms" }

// TermMeta keeps one value of a multi-valued term metadata key.
type TermMeta struct {
	ID       int64  `gorm:"primaryKey"`
	TermID   int64  `gorm:"index:idx_term_meta_key;not null"`
	Key      string `gorm:"column:meta_key;size:255;index:idx_term_meta_key;not null"`
	Value    string
	Position int
}

// TableName returns the table name of TermMeta.
func (TermMeta) TableName() string { return "term_meta" }

// Item is a content item: a word image, a word or a word audio.
type Item struct {
	ID int64 `gorm:"primaryKey"`

	// Type, Slug and ParentID are unique together.
	Type     string `gorm:"size:32;not null;uniqueIndex:idx_items_type_slug"`
	Slug     string `gorm:"size:200;not null;uniqueIndex:idx_items_type_slug"`
	ParentID int64  `gorm:"not null;default:0;uniqueIndex:idx_items_type_slug;index"`

	Title   string `gorm:"size:255"`
	Content string
	Status  string `gorm:"size:20"`

	FeaturedMediaID int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name of Item.
func (Item) TableName() string { return "items" }

// ItemMeta keeps one value of a multi-valued item metadata key.
type ItemMeta struct {
	ID       int64  `gorm:"primaryKey"`
	ItemID   int64  `gorm:"index:idx_item_meta_key;not null"`
	Key      string `gorm:"column:meta_key;size:255;index:idx_item_meta_key;not null"`
	Value    string
	Position int
}

// TableName returns the table name of ItemMeta.
func (ItemMeta) TableName() string { return "item_meta" }

// ItemTerm is membership of an item in a term.
type ItemTerm struct {
	ItemID   int64  `gorm:"primaryKey;autoIncrement:false"`
	TermID   int64  `gorm:"primaryKey;autoIncrement:false;index"`
	Taxonomy string `gorm:"size:32;not null;index"`
}

// TableName returns the table name of ItemTerm.
func (ItemTerm) TableName() string { return "item_terms" }

// Media is a file copied into the managed media root.
type Media struct {
	ID     int64 `gorm:"primaryKey"`
	ItemID int64 `gorm:"index;not null;default:0"`

	// Path is relative to the media root, slash separated.
	Path     string `gorm:"size:500;not null"`
	Name     string `gorm:"size:255"`
	MimeType string `gorm:"size:100"`
	Size     int64

	CreatedAt time.Time
}

// TableName returns the table name of Media.
func (Media) TableName() string { return "media" }

// KVEntry is a record of the key-value table used for history and
// previews.
type KVEntry struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:255"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName returns the table name of KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }
