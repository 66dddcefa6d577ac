// Package iostore implements content.Store and bundle.KV on top of
// GORM. Media files are copied into a managed directory, their records
// keep paths relative to that directory.
package iostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the GORM backed content store.
type Store struct {
	db        *gorm.DB
	mediaRoot string
	now       func() time.Time
}

// New creates a store over a migrated database. mediaRoot must be an
// absolute path, it is created on first media write.
func New(db *gorm.DB, mediaRoot string) *Store {
	return &Store{db: db, mediaRoot: mediaRoot, now: time.Now}
}

// MediaRoot returns the managed storage root.
func (s *Store) MediaRoot() string {
	return s.mediaRoot
}

func (s *Store) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return content.ErrNotFound
	}
	return err
}

// Get implements bundle.KV.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var e schema.KVEntry
	err := s.tx(ctx).Where("kv_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, bundle.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return e.Value, nil
}

// Set implements bundle.KV.
func (s *Store) Set(ctx context.Context, key string, val []byte) error {
	e := schema.KVEntry{Key: key, Value: val, UpdatedAt: s.now()}
	err := s.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete implements bundle.KV.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.tx(ctx).Where("kv_key = ?", key).Delete(&schema.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}
