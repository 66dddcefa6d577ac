package ioreconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/textnorm"
)

// categories runs the three category passes: lookup-or-create without
// parents, parent wiring, metadata.
func (r *reconciler) categories(ctx context.Context) {
	cats := r.payload.Manifest.Categories
	terms := make([]*content.Term, len(cats))

	for i := range cats {
		c := &cats[i]
		t, err := r.upsertCategory(ctx, c)
		if err != nil {
			r.fail("category", c.Slug, err)
			continue
		}
		terms[i] = t
		r.catIDs[c.Slug] = t.ID
	}

	for i := range cats {
		c := &cats[i]
		t := terms[i]
		if t == nil || c.Parent == "" {
			continue
		}
		pid, err := r.categoryID(ctx, c.Parent)
		if err != nil {
			r.warn("category %q: parent %q not found", c.Slug, c.Parent)
			continue
		}
		if pid == t.ID || r.isDescendant(ctx, pid, t.ID) {
			r.warn("category %q: parent %q would create a cycle", c.Slug, c.Parent)
			continue
		}
		if t.ParentID == pid {
			continue
		}
		t.ParentID = pid
		if err := r.store.UpdateTerm(ctx, t); err != nil {
			r.fail("category", c.Slug, err)
		}
	}

	for i := range cats {
		c := &cats[i]
		if terms[i] != nil {
			err := r.applyMeta(ctx, terms[i].ID, c.Meta, r.store.SetTermMeta)
			if err != nil {
				r.fail("category", c.Slug, err)
			}
		}
		r.step()
	}
}

func (r *reconciler) upsertCategory(
	ctx context.Context,
	c *bundle.Category,
) (*content.Term, error) {
	if c.Slug == "" {
		c.Slug = textnorm.Slug(c.Name)
	}
	if c.Slug == "" {
		return nil, errors.New("category has neither slug nor name")
	}
	t, err := r.store.FindTerm(ctx, content.Category, c.Slug)
	switch {
	case err == nil:
		if c.Name != "" {
			t.Name = c.Name
		}
		if c.Description != "" {
			t.Description = c.Description
		}
		if err = r.store.UpdateTerm(ctx, t); err != nil {
			return nil, err
		}
		r.res.Counts.Categories.Updated++
		return t, nil
	case errors.Is(err, content.ErrNotFound):
		t = &content.Term{
			Taxonomy:    content.Category,
			Slug:        c.Slug,
			Name:        orDefault(c.Name, c.Slug),
			Description: c.Description,
		}
		if err = r.store.CreateTerm(ctx, t); err != nil {
			return nil, err
		}
		r.res.Counts.Categories.Created++
		r.res.Undo.TrackID(bundle.BucketCategories, t.ID)
		return t, nil
	default:
		return nil, err
	}
}

// isDescendant tells if id is below ancestor in the category tree.
func (r *reconciler) isDescendant(ctx context.Context, id, ancestor int64) bool {
	seen := make(map[int64]bool)
	for id != 0 && !seen[id] {
		seen[id] = true
		t, err := r.store.TermByID(ctx, id)
		if err != nil {
			return false
		}
		if t.ParentID == ancestor {
			return true
		}
		id = t.ParentID
	}
	return false
}

// categoryID maps a category slug to its id, looking at the store for
// categories that are not in the payload.
func (r *reconciler) categoryID(ctx context.Context, slug string) (int64, error) {
	if id, ok := r.catIDs[slug]; ok {
		return id, nil
	}
	t, err := r.store.FindTerm(ctx, content.Category, slug)
	if err != nil {
		return 0, err
	}
	r.catIDs[slug] = t.ID
	return t.ID, nil
}

// categoryIDs maps slugs and warns about unknown ones.
func (r *reconciler) categoryIDs(ctx context.Context, owner string, slugs []string) []int64 {
	var res []int64
	for _, s := range slugs {
		id, err := r.categoryID(ctx, s)
		if err != nil {
			r.warn("%s: category %q not found", owner, s)
			continue
		}
		res = append(res, id)
	}
	return res
}

// wordsets resolves wordsets for the create mode. In assign mode the
// payload wordsets are ignored.
func (r *reconciler) wordsets(ctx context.Context) {
	for i := range r.payload.Manifest.Wordsets {
		ws := &r.payload.Manifest.Wordsets[i]
		if r.opts.WordsetMode == bundle.WordsetModeAssign {
			r.step()
			continue
		}
		if err := r.upsertWordset(ctx, ws); err != nil {
			r.fail("wordset", ws.Slug, err)
		}
		r.step()
	}
}

func (r *reconciler) upsertWordset(ctx context.Context, ws *bundle.Wordset) error {
	if ws.Slug == "" {
		ws.Slug = textnorm.Slug(ws.Name)
	}
	if ws.Slug == "" {
		return errors.New("wordset has neither slug nor name")
	}
	name, renamed := r.opts.Renames[ws.Slug]
	if !renamed {
		name = ws.Name
	}

	t, err := r.store.FindTerm(ctx, content.Wordset, ws.Slug)
	switch {
	case err == nil:
		if renamed && name != "" {
			t.Name = name
		}
		if ws.Description != "" {
			t.Description = ws.Description
		}
		if err = r.store.UpdateTerm(ctx, t); err != nil {
			return err
		}
		r.res.Counts.Wordsets.Updated++
	case errors.Is(err, content.ErrNotFound):
		t = &content.Term{
			Taxonomy:    content.Wordset,
			Slug:        ws.Slug,
			Name:        orDefault(name, ws.Slug),
			Description: ws.Description,
		}
		if err = r.store.CreateTerm(ctx, t); err != nil {
			return err
		}
		r.res.Counts.Wordsets.Created++
		r.res.Undo.TrackID(bundle.BucketWordsets, t.ID)
	default:
		return err
	}
	r.wsIDs[ws.Slug] = t.ID
	return r.applyMeta(ctx, t.ID, ws.Meta, r.store.SetTermMeta)
}

// wordWordsets returns wordset ids of a word.
func (r *reconciler) wordWordsets(ctx context.Context, w *bundle.Word) []int64 {
	if r.assignWordset != 0 {
		return []int64{r.assignWordset}
	}
	slugs := w.Wordsets
	if len(slugs) == 0 && len(r.payload.Manifest.Wordsets) == 1 {
		slugs = []string{r.payload.Manifest.Wordsets[0].Slug}
	}
	var res []int64
	for _, s := range slugs {
		if id, ok := r.wsIDs[s]; ok {
			res = append(res, id)
			continue
		}
		t, err := r.store.FindTerm(ctx, content.Wordset, s)
		if err != nil {
			r.warn("word %q: wordset %q not found", w.Slug, s)
			continue
		}
		r.wsIDs[s] = t.ID
		res = append(res, t.ID)
	}
	return res
}

// auxTermIDs maps slugs of languages, parts of speech and recording
// types to ids, creating missing terms. These vocabularies are shared
// between imports and are not recorded for undo.
func (r *reconciler) auxTermIDs(
	ctx context.Context,
	tax content.Taxonomy,
	slugs []string,
) ([]int64, error) {
	cache := r.auxTerms[tax]
	if cache == nil {
		cache = make(map[string]int64)
		r.auxTerms[tax] = cache
	}
	var res []int64
	for _, name := range slugs {
		slug := textnorm.Slug(name)
		if slug == "" {
			continue
		}
		if id, ok := cache[slug]; ok {
			res = append(res, id)
			continue
		}
		t, err := r.store.FindTerm(ctx, tax, slug)
		if errors.Is(err, content.ErrNotFound) {
			t = &content.Term{Taxonomy: tax, Slug: slug, Name: name}
			err = r.store.CreateTerm(ctx, t)
		}
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", tax, slug, err)
		}
		cache[slug] = t.ID
		res = append(res, t.ID)
	}
	return res, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
