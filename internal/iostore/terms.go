package iostore

import (
	"context"
	"fmt"

	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/schema"
	"gorm.io/gorm"
)

// FindTerm looks a term up by taxonomy and slug.
func (s *Store) FindTerm(
	ctx context.Context,
	tax content.Taxonomy,
	slug string,
) (*content.Term, error) {
	var t schema.Term
	err := s.tx(ctx).
		Where("taxonomy = ? AND slug = ?", string(tax), slug).
		Take(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return s.loadTerm(ctx, t)
}

// TermByID returns a term by id.
func (s *Store) TermByID(ctx context.Context, id int64) (*content.Term, error) {
	var t schema.Term
	if err := s.tx(ctx).Take(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return s.loadTerm(ctx, t)
}

// ListTerms returns terms of a taxonomy ordered by id.
func (s *Store) ListTerms(
	ctx context.Context,
	tax content.Taxonomy,
) ([]content.Term, error) {
	var rows []schema.Term
	err := s.tx(ctx).Where("taxonomy = ?", string(tax)).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	meta, err := s.termMeta(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make([]content.Term, len(rows))
	for i := range rows {
		res[i] = toTerm(rows[i], meta[rows[i].ID])
	}
	return res, nil
}

// CreateTerm stores a new term with its metadata.
func (s *Store) CreateTerm(ctx context.Context, t *content.Term) error {
	if t.Slug == "" {
		return fmt.Errorf("term of %s has no slug", t.Taxonomy)
	}
	row := schema.Term{
		Taxonomy:    string(t.Taxonomy),
		Slug:        t.Slug,
		Name:        t.Name,
		Description: t.Description,
		ParentID:    t.ParentID,
	}
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create %s %q: %w", t.Taxonomy, t.Slug, err)
		}
		t.ID = row.ID
		for k, v := range t.Meta {
			if err := setMeta(tx, &schema.TermMeta{}, "term_id", row.ID, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateTerm saves name, description and parent.
func (s *Store) UpdateTerm(ctx context.Context, t *content.Term) error {
	res := s.tx(ctx).Model(&schema.Term{ID: t.ID}).Updates(map[string]any{
		"name":        t.Name,
		"description": t.Description,
		"parent_id":   t.ParentID,
		"updated_at":  s.now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return nil
}

// SetTermMeta replaces the values of a metadata key.
func (s *Store) SetTermMeta(
	ctx context.Context,
	id int64,
	key string,
	vals []string,
) error {
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		return setMeta(tx, &schema.TermMeta{}, "term_id", id, key, vals)
	})
}

// DeleteTerm removes a term, its metadata and memberships. Children
// move to the parent of the removed term.
func (s *Store) DeleteTerm(ctx context.Context, id int64) error {
	var t schema.Term
	if err := s.tx(ctx).Take(&t, id).Error; err != nil {
		return notFound(err)
	}
	return s.tx(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&schema.Term{}).Where("parent_id = ?", id).
			Update("parent_id", t.ParentID).Error
		if err != nil {
			return err
		}
		if err = tx.Where("term_id = ?", id).Delete(&schema.TermMeta{}).Error; err != nil {
			return err
		}
		if err = tx.Where("term_id = ?", id).Delete(&schema.ItemTerm{}).Error; err != nil {
			return err
		}
		return tx.Delete(&schema.Term{}, id).Error
	})
}

func (s *Store) loadTerm(ctx context.Context, t schema.Term) (*content.Term, error) {
	meta, err := s.termMeta(ctx, []int64{t.ID})
	if err != nil {
		return nil, err
	}
	res := toTerm(t, meta[t.ID])
	return &res, nil
}

func (s *Store) termMeta(
	ctx context.Context,
	ids []int64,
) (map[int64]content.Meta, error) {
	res := make(map[int64]content.Meta)
	if len(ids) == 0 {
		return res, nil
	}
	var rows []schema.TermMeta
	err := s.tx(ctx).Where("term_id IN ?", ids).
		Order("term_id, meta_key, position").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if res[r.TermID] == nil {
			res[r.TermID] = make(content.Meta)
		}
		res[r.TermID][r.Key] = append(res[r.TermID][r.Key], r.Value)
	}
	return res, nil
}

func toTerm(t schema.Term, meta content.Meta) content.Term {
	if meta == nil {
		meta = make(content.Meta)
	}
	return content.Term{
		ID:          t.ID,
		Taxonomy:    content.Taxonomy(t.Taxonomy),
		Slug:        t.Slug,
		Name:        t.Name,
		Description: t.Description,
		ParentID:    t.ParentID,
		Meta:        meta,
	}
}

// setMeta replaces values of one key for the owner. The model must be
// a pointer to schema.TermMeta or schema.ItemMeta.
func setMeta(
	tx *gorm.DB,
	model any,
	ownerCol string,
	ownerID int64,
	key string,
	vals []string,
) error {
	err := tx.Where(ownerCol+" = ? AND meta_key = ?", ownerID, key).
		Delete(model).Error
	if err != nil {
		return fmt.Errorf("clear meta %s: %w", key, err)
	}
	if len(vals) == 0 {
		return nil
	}
	switch model.(type) {
	case *schema.TermMeta:
		rows := make([]schema.TermMeta, len(vals))
		for i, v := range vals {
			rows[i] = schema.TermMeta{TermID: ownerID, Key: key, Value: v, Position: i}
		}
		err = tx.Create(&rows).Error
	case *schema.ItemMeta:
		rows := make([]schema.ItemMeta, len(vals))
		for i, v := range vals {
			rows[i] = schema.ItemMeta{ItemID: ownerID, Key: key, Value: v, Position: i}
		}
		err = tx.Create(&rows).Error
	default:
		err = fmt.Errorf("unknown meta model %T", model)
	}
	if err != nil {
		return fmt.Errorf("write meta %s: %w", key, err)
	}
	return nil
}
