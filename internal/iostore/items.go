package iostore

import (
	"context"
	"fmt"

	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/schema"
	"gorm.io/gorm"
)

// FindItem looks an item up by type, slug and parent.
func (s *Store) FindItem(
	ctx context.Context,
	typ content.ItemType,
	slug string,
	parentID int64,
) (*content.Item, error) {
	var it schema.Item
	err := s.tx(ctx).
		Where("type = ? AND slug = ? AND parent_id = ?",
			string(typ), slug, parentID).
		Take(&it).Error
	if err != nil {
		return nil, notFound(err)
	}
	return s.loadItem(ctx, it)
}

// ItemByID returns an item by id.
func (s *Store) ItemByID(ctx context.Context, id int64) (*content.Item, error) {
	var it schema.Item
	if err := s.tx(ctx).Take(&it, id).Error; err != nil {
		return nil, notFound(err)
	}
	return s.loadItem(ctx, it)
}

// ListItems returns items matching the query ordered by id.
func (s *Store) ListItems(
	ctx context.Context,
	q content.ItemQuery,
) ([]content.Item, error) {
	db := s.tx(ctx).Model(&schema.Item{})
	if q.Type != "" {
		db = db.Where("items.type = ?", string(q.Type))
	}
	if q.ParentID > 0 {
		db = db.Where("items.parent_id = ?", q.ParentID)
	}
	if len(q.TermIDs) > 0 {
		sub := s.tx(ctx).Model(&schema.ItemTerm{}).
			Select("item_id").Where("term_id IN ?", q.TermIDs)
		db = db.Where("items.id IN (?)", sub)
	}

	var rows []schema.Item
	if err := db.Order("items.id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	meta, err := s.itemMeta(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make([]content.Item, len(rows))
	for i := range rows {
		res[i] = toItem(rows[i], meta[rows[i].ID])
	}
	return res, nil
}

// CreateItem stores a new item with its metadata.
func (s *Store) CreateItem(
	ctx context.Context,
	it *content.Item,
	opts content.WriteOptions,
) error {
	if it.Slug == "" {
		return fmt.Errorf("%s has no slug", it.Type)
	}
	if err := s.publishGate(ctx, it, opts); err != nil {
		return err
	}
	row := schema.Item{
		Type:            string(it.Type),
		Slug:            it.Slug,
		ParentID:        it.ParentID,
		Title:           it.Title,
		Content:         it.Content,
		Status:          it.Status,
		FeaturedMediaID: it.FeaturedMediaID,
	}
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create %s %q: %w", it.Type, it.Slug, err)
		}
		it.ID = row.ID
		for k, v := range it.Meta {
			if err := setMeta(tx, &schema.ItemMeta{}, "item_id", row.ID, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateItem saves title, content, status, parent and featured media.
func (s *Store) UpdateItem(
	ctx context.Context,
	it *content.Item,
	opts content.WriteOptions,
) error {
	if err := s.publishGate(ctx, it, opts); err != nil {
		return err
	}
	res := s.tx(ctx).Model(&schema.Item{ID: it.ID}).Updates(map[string]any{
		"title":             it.Title,
		"content":           it.Content,
		"status":            it.Status,
		"parent_id":         it.ParentID,
		"featured_media_id": it.FeaturedMediaID,
		"updated_at":        s.now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}

// publishGate demotes a published word without audio to a draft,
// unless the caller skips the gate.
func (s *Store) publishGate(
	ctx context.Context,
	it *content.Item,
	opts content.WriteOptions,
) error {
	if opts.SkipPublishGate || it.Type != content.Word ||
		it.Status != content.StatusPublish {
		return nil
	}
	var n int64
	if it.ID > 0 {
		err := s.tx(ctx).Model(&schema.Item{}).
			Where("type = ? AND parent_id = ?", string(content.WordAudio), it.ID).
			Count(&n).Error
		if err != nil {
			return err
		}
	}
	if n == 0 {
		it.Status = content.StatusDraft
	}
	return nil
}

// SetItemMeta replaces the values of a metadata key.
func (s *Store) SetItemMeta(
	ctx context.Context,
	id int64,
	key string,
	vals []string,
) error {
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		return setMeta(tx, &schema.ItemMeta{}, "item_id", id, key, vals)
	})
}

// SetItemTerms replaces membership of an item in one taxonomy.
func (s *Store) SetItemTerms(
	ctx context.Context,
	itemID int64,
	tax content.Taxonomy,
	termIDs []int64,
) error {
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("item_id = ? AND taxonomy = ?", itemID, string(tax)).
			Delete(&schema.ItemTerm{}).Error
		if err != nil {
			return err
		}
		seen := make(map[int64]struct{})
		var rows []schema.ItemTerm
		for _, id := range termIDs {
			if _, ok := seen[id]; ok || id <= 0 {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, schema.ItemTerm{
				ItemID: itemID, TermID: id, Taxonomy: string(tax),
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// ItemTerms returns term ids of an item in one taxonomy.
func (s *Store) ItemTerms(
	ctx context.Context,
	itemID int64,
	tax content.Taxonomy,
) ([]int64, error) {
	var res []int64
	err := s.tx(ctx).Model(&schema.ItemTerm{}).
		Where("item_id = ? AND taxonomy = ?", itemID, string(tax)).
		Order("term_id").Pluck("term_id", &res).Error
	return res, err
}

// DeleteItem removes an item, its metadata and memberships.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&schema.Item{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return content.ErrNotFound
		}
		if err := tx.Where("item_id = ?", id).Delete(&schema.ItemMeta{}).Error; err != nil {
			return err
		}
		return tx.Where("item_id = ?", id).Delete(&schema.ItemTerm{}).Error
	})
}

func (s *Store) loadItem(ctx context.Context, it schema.Item) (*content.Item, error) {
	meta, err := s.itemMeta(ctx, []int64{it.ID})
	if err != nil {
		return nil, err
	}
	res := toItem(it, meta[it.ID])
	return &res, nil
}

func (s *Store) itemMeta(
	ctx context.Context,
	ids []int64,
) (map[int64]content.Meta, error) {
	res := make(map[int64]content.Meta)
	if len(ids) == 0 {
		return res, nil
	}
	var rows []schema.ItemMeta
	err := s.tx(ctx).Where("item_id IN ?", ids).
		Order("item_id, meta_key, position").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if res[r.ItemID] == nil {
			res[r.ItemID] = make(content.Meta)
		}
		res[r.ItemID][r.Key] = append(res[r.ItemID][r.Key], r.Value)
	}
	return res, nil
}

func toItem(it schema.Item, meta content.Meta) content.Item {
	if meta == nil {
		meta = make(content.Meta)
	}
	return content.Item{
		ID:              it.ID,
		Type:            content.ItemType(it.Type),
		Slug:            it.Slug,
		Title:           it.Title,
		Content:         it.Content,
		Status:          it.Status,
		ParentID:        it.ParentID,
		FeaturedMediaID: it.FeaturedMediaID,
		Meta:            meta,
	}
}
