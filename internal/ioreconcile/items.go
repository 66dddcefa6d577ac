package ioreconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/textnorm"
)

// Imported words may be published before their audio is attached.
var importWrite = content.WriteOptions{SkipPublishGate: true}

// itemFields are the writable fields of an upsert.
type itemFields struct {
	typ      content.ItemType
	slug     string
	title    string
	content  string
	status   string
	parentID int64
	// key is the source key, empty for items matched by slug only.
	key string
}

// MatchItem finds the store item a payload item maps to. Without a key
// the item with the same slug matches. With a key only an item carrying
// the same source key matches, slugs taken by other items are skipped
// by appending -2, -3, ... The returned slug is free or belongs to the
// matched item.
func MatchItem(
	ctx context.Context,
	store content.Store,
	typ content.ItemType,
	slug string,
	parentID int64,
	key string,
) (*content.Item, string, error) {
	base := slug
	for i := 2; ; i++ {
		it, err := store.FindItem(ctx, typ, slug, parentID)
		if errors.Is(err, content.ErrNotFound) {
			return nil, slug, nil
		}
		if err != nil {
			return nil, "", err
		}
		if key == "" || slices.Contains(it.Meta[bundle.MetaSourceKey], key) {
			return it, slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// upsertItem finds the matching item and updates it, or creates it.
// created tells which of the two happened.
func (r *reconciler) upsertItem(
	ctx context.Context,
	f itemFields,
) (it *content.Item, created bool, err error) {
	if f.slug == "" {
		f.slug = textnorm.Slug(f.title)
	}
	if f.slug == "" {
		return nil, false, errors.New("item has neither slug nor title")
	}
	it, f.slug, err = MatchItem(ctx, r.store, f.typ, f.slug, f.parentID, f.key)
	switch {
	case err != nil:
		return nil, false, err
	case it != nil:
		if f.title != "" {
			it.Title = f.title
		}
		if f.content != "" {
			it.Content = f.content
		}
		if f.status != "" {
			it.Status = f.status
		}
		return it, false, r.store.UpdateItem(ctx, it, importWrite)
	default:
		it = &content.Item{
			Type:     f.typ,
			Slug:     f.slug,
			Title:    orDefault(f.title, f.slug),
			Content:  f.content,
			Status:   orDefault(f.status, content.StatusPublish),
			ParentID: f.parentID,
		}
		if f.key != "" {
			it.Meta = content.Meta{bundle.MetaSourceKey: {f.key}}
		}
		return it, true, r.store.CreateItem(ctx, it, importWrite)
	}
}

func (r *reconciler) wordImages(ctx context.Context) {
	for i := range r.payload.Manifest.WordImages {
		wi := &r.payload.Manifest.WordImages[i]
		if err := r.wordImage(ctx, wi); err != nil {
			r.fail("word image", wi.Slug, err)
		}
		r.step()
	}
}

func (r *reconciler) wordImage(ctx context.Context, wi *bundle.WordImage) error {
	it, created, err := r.upsertItem(ctx, itemFields{
		typ:    content.WordImage,
		slug:   wi.Slug,
		title:  wi.Title,
		status: wi.Status,
		key:    wi.Meta.First(bundle.MetaSourceKey),
	})
	if err != nil {
		return err
	}
	if created {
		r.res.Counts.WordImages.Created++
		r.res.Undo.TrackID(bundle.BucketWordImages, it.ID)
	} else {
		r.res.Counts.WordImages.Updated++
	}
	// words reference word images by payload slug
	r.wiIDs[wi.Slug] = it.ID
	if wi.SourceID > 0 {
		r.srcIDs[wi.SourceID] = it.ID
	}

	owner := fmt.Sprintf("word image %q", it.Slug)
	cats := r.categoryIDs(ctx, owner, wi.Categories)
	if err = r.store.SetItemTerms(ctx, it.ID, content.Category, cats); err != nil {
		return err
	}
	if err = r.applyMeta(ctx, it.ID, wi.Meta, r.store.SetItemMeta); err != nil {
		return err
	}
	r.queueRemaps(it.ID, wi.Meta)
	_, err = r.importMedia(ctx, it, wi.FeaturedImage, false)
	return err
}

func (r *reconciler) words(ctx context.Context) {
	for i := range r.payload.Manifest.Words {
		w := &r.payload.Manifest.Words[i]
		it, err := r.word(ctx, w)
		if err != nil {
			r.fail("word", w.Slug, err)
		}
		r.step()
		for j := range w.AudioEntries {
			ae := &w.AudioEntries[j]
			if it != nil {
				if err = r.audio(ctx, it, ae); err != nil {
					r.fail("audio", it.Slug+"/"+ae.Slug, err)
				}
			}
			r.step()
		}
	}
}

func (r *reconciler) word(ctx context.Context, w *bundle.Word) (*content.Item, error) {
	it, created, err := r.upsertItem(ctx, itemFields{
		typ:     content.Word,
		slug:    w.Slug,
		title:   w.Title,
		content: w.Content,
		status:  w.Status,
		key:     w.Meta.First(bundle.MetaSourceKey),
	})
	if err != nil {
		return nil, err
	}
	if created {
		r.res.Counts.Words.Created++
		r.res.Undo.TrackID(bundle.BucketWords, it.ID)
	} else {
		r.res.Counts.Words.Updated++
	}
	r.wordSlugs[it.ID] = it.Slug
	if w.SourceID > 0 {
		r.srcIDs[w.SourceID] = it.ID
	}

	owner := fmt.Sprintf("word %q", it.Slug)
	cats := r.categoryIDs(ctx, owner, w.Categories)
	if err = r.store.SetItemTerms(ctx, it.ID, content.Category, cats); err != nil {
		return it, err
	}
	r.wordCats[it.ID] = cats
	ws := r.wordWordsets(ctx, w)
	if err = r.store.SetItemTerms(ctx, it.ID, content.Wordset, ws); err != nil {
		return it, err
	}
	if err = r.setAuxTerms(ctx, it.ID, content.Language, w.Languages); err != nil {
		return it, err
	}
	if err = r.setAuxTerms(ctx, it.ID, content.PartOfSpeech, w.PartsOfSpeech); err != nil {
		return it, err
	}

	if err = r.applyMeta(ctx, it.ID, w.Meta, r.store.SetItemMeta); err != nil {
		return it, err
	}
	r.queueRemaps(it.ID, w.Meta)
	if texts := w.Meta[bundle.MetaWrongAnswerTexts]; len(texts) > 0 &&
		r.policy.Accept(bundle.MetaWrongAnswerTexts) {
		r.wrongTexts[it.ID] = texts
	}

	if err = r.linkWordImage(ctx, it, w); err != nil {
		return it, err
	}
	_, err = r.importMedia(ctx, it, w.FeaturedImage, false)
	return it, err
}

// linkWordImage connects a word to a word image. An explicit reference
// wins over a word image with the same slug as the word.
func (r *reconciler) linkWordImage(
	ctx context.Context,
	it *content.Item,
	w *bundle.Word,
) error {
	var id int64
	if w.WordImage != "" {
		id = r.wordImageID(ctx, w.WordImage)
		if id == 0 {
			r.warn("word %q: word image %q not found", it.Slug, w.WordImage)
		}
	}
	if id == 0 {
		id = r.wordImageID(ctx, it.Slug)
	}
	if id == 0 {
		return nil
	}
	return r.store.SetItemMeta(ctx, it.ID, bundle.MetaWordImageID,
		[]string{strconv.FormatInt(id, 10)})
}

func (r *reconciler) wordImageID(ctx context.Context, slug string) int64 {
	if id, ok := r.wiIDs[slug]; ok {
		return id
	}
	it, err := r.store.FindItem(ctx, content.WordImage, slug, 0)
	if err != nil {
		return 0
	}
	r.wiIDs[slug] = it.ID
	return it.ID
}

func (r *reconciler) audio(
	ctx context.Context,
	word *content.Item,
	ae *bundle.AudioEntry,
) error {
	it, created, err := r.upsertItem(ctx, itemFields{
		typ:      content.WordAudio,
		slug:     ae.Slug,
		title:    orDefault(ae.Title, word.Title),
		status:   ae.Status,
		parentID: word.ID,
	})
	if err != nil {
		return err
	}
	if created {
		r.res.Counts.Audio.Created++
		r.res.Undo.TrackID(bundle.BucketAudio, it.ID)
	} else {
		r.res.Counts.Audio.Updated++
	}
	err = r.setAuxTerms(ctx, it.ID, content.RecordingType, ae.RecordingTypes)
	if err != nil {
		return err
	}
	if err = r.applyMeta(ctx, it.ID, ae.Meta, r.store.SetItemMeta); err != nil {
		return err
	}
	_, err = r.importMedia(ctx, it, ae.AudioFile, true)
	return err
}

func (r *reconciler) setAuxTerms(
	ctx context.Context,
	itemID int64,
	tax content.Taxonomy,
	slugs []string,
) error {
	if len(slugs) == 0 {
		return nil
	}
	ids, err := r.auxTermIDs(ctx, tax, slugs)
	if err != nil {
		return err
	}
	return r.store.SetItemTerms(ctx, itemID, tax, ids)
}
