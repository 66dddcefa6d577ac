// Package ioexport writes a scope of the content store into a bundle
// archive: a manifest.json plus the media files it references.
package ioexport

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnfmt"
)

type exporter struct {
	store content.Store
	cfg   *config.Config
}

// New creates an Exporter reading from store.
func New(store content.Store, cfg *config.Config) bundle.Exporter {
	return &exporter{store: store, cfg: cfg}
}

// job keeps the state of one export.
type job struct {
	store    content.Store
	opts     bundle.ExportOptions
	media    *tracker
	stats    *bundle.ExportStats
	scope    map[int64]bool
	terms    map[content.Taxonomy]map[int64]string
	manifest *bundle.Manifest
}

// Export writes the bundle to dest. Limits are checked before the
// archive is created, so a failed export leaves no file behind.
func (e *exporter) Export(
	ctx context.Context,
	dest string,
	opts bundle.ExportOptions,
) (*bundle.ExportStats, error) {
	start := time.Now()
	now := start.UTC()
	j := &job{
		store: e.store,
		opts:  opts,
		media: newTracker(e.store.MediaRoot(), e.cfg.Limits),
		stats: &bundle.ExportStats{},
		terms: make(map[content.Taxonomy]map[int64]string),
		manifest: &bundle.Manifest{
			Version:     config.ManifestVersion,
			GeneratedAt: &now,
			Categories:  []bundle.Category{},
			WordImages:  []bundle.WordImage{},
		},
	}

	var ws *content.Term
	if opts.Full {
		if opts.Wordset == "" {
			return nil, WordsetRequiredError()
		}
		var err error
		ws, err = e.store.FindTerm(ctx, content.Wordset, opts.Wordset)
		if err != nil {
			return nil, UnknownWordsetError(opts.Wordset, err)
		}
	}

	if err := j.categories(ctx); err != nil {
		return nil, err
	}
	if err := j.wordImages(ctx); err != nil {
		return nil, err
	}
	if ws != nil {
		if err := j.words(ctx, ws); err != nil {
			return nil, err
		}
	}

	j.stats.MediaFiles = len(j.media.files)
	j.stats.MediaBytes = j.media.bytes
	j.stats.Skipped = j.media.skipped
	j.manifest.MediaEstimate = bundle.MediaEstimate{
		Files: j.stats.MediaFiles,
		Bytes: j.stats.MediaBytes,
	}

	enc := gnfmt.GNjson{Pretty: true}
	data, err := enc.Encode(j.manifest)
	if err != nil {
		return nil, ExportWriteError(err)
	}
	if err = ioarchive.Write(dest, bundle.ManifestFile, data, j.media.files); err != nil {
		return nil, err
	}

	slog.Info("Bundle exported",
		"categories", j.stats.Categories,
		"word_images", j.stats.WordImages,
		"words", j.stats.Words,
		"media", j.stats.MediaFiles,
		"size", humanize.IBytes(uint64(j.stats.MediaBytes)),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return j.stats, nil
}

// categories puts the scope into the manifest, parents before
// children. Without roots every category is in scope.
func (j *job) categories(ctx context.Context) error {
	all, err := j.store.ListTerms(ctx, content.Category)
	if err != nil {
		return ExportReadError(err)
	}
	byID := make(map[int64]*content.Term, len(all))
	children := make(map[int64][]int64)
	for i := range all {
		t := &all[i]
		byID[t.ID] = t
		children[t.ParentID] = append(children[t.ParentID], t.ID)
	}

	var roots []int64
	if len(j.opts.Roots) == 0 {
		for _, t := range all {
			if _, ok := byID[t.ParentID]; !ok {
				roots = append(roots, t.ID)
			}
		}
	} else {
		for _, slug := range j.opts.Roots {
			idx := slices.IndexFunc(all, func(t content.Term) bool {
				return t.Slug == slug
			})
			if idx < 0 {
				return UnknownRootError(slug)
			}
			roots = append(roots, all[idx].ID)
		}
	}

	j.scope = make(map[int64]bool)
	var mark func(id int64)
	mark = func(id int64) {
		if j.scope[id] {
			return
		}
		j.scope[id] = true
		for _, ch := range children[id] {
			mark(ch)
		}
	}
	for _, id := range roots {
		mark(id)
	}

	var emit func(id int64)
	emit = func(id int64) {
		t := byID[id]
		c := bundle.Category{
			Slug:        t.Slug,
			Name:        t.Name,
			Description: t.Description,
			Meta:        t.Meta,
		}
		if p, ok := byID[t.ParentID]; ok && j.scope[p.ID] {
			c.Parent = p.Slug
		}
		j.manifest.Categories = append(j.manifest.Categories, c)
		for _, ch := range children[id] {
			emit(ch)
		}
	}
	for _, t := range all {
		if j.scope[t.ID] && !j.scope[t.ParentID] {
			emit(t.ID)
		}
	}
	j.terms[content.Category] = make(map[int64]string, len(j.scope))
	for id := range j.scope {
		j.terms[content.Category][id] = byID[id].Slug
	}
	j.stats.Categories = len(j.manifest.Categories)
	return nil
}

func (j *job) scopeIDs() []int64 {
	res := make([]int64, 0, len(j.scope))
	for id := range j.scope {
		res = append(res, id)
	}
	slices.Sort(res)
	return res
}

func (j *job) wordImages(ctx context.Context) error {
	q := content.ItemQuery{Type: content.WordImage}
	if len(j.opts.Roots) > 0 {
		q.TermIDs = j.scopeIDs()
	}
	items, err := j.store.ListItems(ctx, q)
	if err != nil {
		return ExportReadError(err)
	}
	for i := range items {
		it := &items[i]
		cats, err := j.slugs(ctx, it.ID, content.Category)
		if err != nil {
			return err
		}
		img, err := j.media.add(ctx, j.store, it)
		if err != nil {
			return err
		}
		j.manifest.WordImages = append(j.manifest.WordImages, bundle.WordImage{
			SourceID:      it.ID,
			Slug:          it.Slug,
			Title:         it.Title,
			Status:        it.Status,
			Meta:          exportMeta(it.Meta),
			Categories:    cats,
			FeaturedImage: img,
		})
	}
	j.stats.WordImages = len(j.manifest.WordImages)
	return nil
}

func (j *job) words(ctx context.Context, ws *content.Term) error {
	j.manifest.Wordsets = []bundle.Wordset{{
		Slug:        ws.Slug,
		Name:        ws.Name,
		Description: ws.Description,
		Meta:        ws.Meta,
	}}
	items, err := j.store.ListItems(ctx, content.ItemQuery{
		Type:    content.Word,
		TermIDs: []int64{ws.ID},
	})
	if err != nil {
		return ExportReadError(err)
	}
	if len(j.opts.Roots) > 0 {
		inScope, err := j.store.ListItems(ctx, content.ItemQuery{
			Type:    content.Word,
			TermIDs: j.scopeIDs(),
		})
		if err != nil {
			return ExportReadError(err)
		}
		keep := make(map[int64]bool, len(inScope))
		for _, it := range inScope {
			keep[it.ID] = true
		}
		items = slices.DeleteFunc(items, func(it content.Item) bool {
			return !keep[it.ID]
		})
	}

	j.manifest.Words = make([]bundle.Word, 0, len(items))
	for i := range items {
		w, err := j.word(ctx, &items[i], ws.Slug)
		if err != nil {
			return err
		}
		j.manifest.Words = append(j.manifest.Words, w)
		j.stats.Audio += len(w.AudioEntries)
	}
	j.stats.Words = len(j.manifest.Words)
	return nil
}

func (j *job) word(ctx context.Context, it *content.Item, ws string) (bundle.Word, error) {
	res := bundle.Word{
		SourceID: it.ID,
		Slug:     it.Slug,
		Title:    it.Title,
		Content:  it.Content,
		Status:   it.Status,
		Meta:     exportMeta(it.Meta),
		Wordsets: []string{ws},
	}
	var err error
	if res.Categories, err = j.slugs(ctx, it.ID, content.Category); err != nil {
		return res, err
	}
	if res.Languages, err = j.slugs(ctx, it.ID, content.Language); err != nil {
		return res, err
	}
	if res.PartsOfSpeech, err = j.slugs(ctx, it.ID, content.PartOfSpeech); err != nil {
		return res, err
	}
	if id, err := strconv.ParseInt(it.Meta.First(bundle.MetaWordImageID), 10, 64); err == nil {
		if wi, err := j.store.ItemByID(ctx, id); err == nil && wi.Type == content.WordImage {
			res.WordImage = wi.Slug
		}
	}
	if res.FeaturedImage, err = j.media.add(ctx, j.store, it); err != nil {
		return res, err
	}

	audio, err := j.store.ListItems(ctx, content.ItemQuery{
		Type:     content.WordAudio,
		ParentID: it.ID,
	})
	if err != nil {
		return res, ExportReadError(err)
	}
	for i := range audio {
		a := &audio[i]
		ae := bundle.AudioEntry{
			Slug:   a.Slug,
			Title:  a.Title,
			Status: a.Status,
			Meta:   exportMeta(a.Meta),
		}
		if ae.RecordingTypes, err = j.slugs(ctx, a.ID, content.RecordingType); err != nil {
			return res, err
		}
		if ae.AudioFile, err = j.media.add(ctx, j.store, a); err != nil {
			return res, err
		}
		res.AudioEntries = append(res.AudioEntries, ae)
	}
	return res, nil
}

// slugs returns slugs of the item's terms. Categories are limited to
// the export scope.
func (j *job) slugs(ctx context.Context, itemID int64, tax content.Taxonomy) ([]string, error) {
	names, ok := j.terms[tax]
	if !ok {
		terms, err := j.store.ListTerms(ctx, tax)
		if err != nil {
			return nil, ExportReadError(err)
		}
		names = make(map[int64]string, len(terms))
		for _, t := range terms {
			names[t.ID] = t.Slug
		}
		j.terms[tax] = names
	}
	ids, err := j.store.ItemTerms(ctx, itemID, tax)
	if err != nil {
		return nil, ExportReadError(err)
	}
	var res []string
	for _, id := range ids {
		if s, ok := names[id]; ok {
			res = append(res, s)
		}
	}
	return res, nil
}

// exportMeta drops keys that hold ids only meaningful in this store
// and are rebuilt on import.
func exportMeta(m content.Meta) content.Meta {
	res := m.Clone()
	delete(res, bundle.MetaWordImageID)
	delete(res, bundle.MetaWrongAnswerIDs)
	if len(res) == 0 {
		return nil
	}
	return res
}
