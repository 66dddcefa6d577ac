// Package ioreconcile applies a bundle payload to the content store.
//
// The payload is processed in dependency order: categories, their
// parents and metadata, word images, wordsets, words with their audio,
// then cross references between items and wrong answers. Existing
// entities (matched by slug) are updated, missing ones are created and
// recorded in the undo payload. A failure of one entity is recorded in
// the result and processing continues with the next one.
package ioreconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnfmt"
)

// Options configure Reconcile.
type Options struct {
	// WordsetMode is bundle.WordsetModeCreate (default) or
	// bundle.WordsetModeAssign.
	WordsetMode string
	// Wordset is the existing wordset of the assign mode.
	Wordset string
	// Renames override payload wordset names by slug.
	Renames map[string]string
	// AllowedMetaKeys are glob patterns of accepted reserved keys.
	AllowedMetaKeys []string
	// Progress receives the number of processed units.
	Progress func(total, done int)
}

type reconciler struct {
	store   content.Store
	payload *bundle.Payload
	opts    Options
	policy  *MetaPolicy
	res     *bundle.Result

	catIDs map[string]int64
	wsIDs  map[string]int64
	// wiIDs maps payload slugs of word images to store ids.
	wiIDs map[string]int64
	// srcIDs maps source ids of words and word images to store ids.
	srcIDs map[int64]int64
	// assignWordset is set in assign mode.
	assignWordset int64

	wordSlugs  map[int64]string
	wordCats   map[int64][]int64
	wrongTexts map[int64][]string
	remaps     []remap
	auxTerms   map[content.Taxonomy]map[string]int64

	total, done int
}

// Reconcile writes the payload into the store. The returned error is
// fatal and means nothing was written. Entity level problems are
// reported in the result.
func Reconcile(
	ctx context.Context,
	store content.Store,
	p *bundle.Payload,
	opts Options,
) (*bundle.Result, error) {
	if opts.WordsetMode == "" {
		opts.WordsetMode = bundle.WordsetModeCreate
	}
	r := &reconciler{
		store:      store,
		payload:    p,
		opts:       opts,
		policy:     NewMetaPolicy(opts.AllowedMetaKeys),
		res:        &bundle.Result{Summary: p.Summary},
		catIDs:     make(map[string]int64),
		wsIDs:      make(map[string]int64),
		wiIDs:      make(map[string]int64),
		srcIDs:     make(map[int64]int64),
		wordSlugs:  make(map[int64]string),
		wordCats:   make(map[int64][]int64),
		wrongTexts: make(map[int64][]string),
		auxTerms:   make(map[content.Taxonomy]map[string]int64),
	}
	m := p.Manifest

	if m.HasFullContent() && opts.WordsetMode == bundle.WordsetModeAssign {
		ws, err := store.FindTerm(ctx, content.Wordset, opts.Wordset)
		if err != nil {
			return nil, AssignWordsetError(opts.Wordset, err)
		}
		r.assignWordset = ws.ID
	}

	for _, w := range p.Warnings {
		r.res.AddWarning(w)
	}

	r.total = len(m.Categories) + len(m.WordImages)
	if m.HasFullContent() {
		r.total += len(m.Wordsets) + len(m.Words)
		for i := range m.Words {
			r.total += len(m.Words[i].AudioEntries)
		}
	}

	start := time.Now()
	r.categories(ctx)
	r.wordImages(ctx)
	if m.HasFullContent() {
		r.wordsets(ctx)
		r.words(ctx)
	}
	r.remapIDs(ctx)
	r.wrongAnswers(ctx)

	r.res.Finish()
	r.res.Message = r.message()
	slog.Info("Reconciliation finished",
		"ok", r.res.OK,
		"errors", len(r.res.Errors),
		"warnings", len(r.res.Warnings),
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return r.res, nil
}

func (r *reconciler) step() {
	r.done++
	if r.opts.Progress != nil {
		r.opts.Progress(r.total, r.done)
	}
}

func (r *reconciler) fail(kind, slug string, err error) {
	msg := fmt.Sprintf("%s %q: %v", kind, slug, err)
	slog.Error("Entity failed", "kind", kind, "slug", slug, "error", err)
	r.res.AddError(msg)
}

func (r *reconciler) warn(format string, args ...any) {
	r.res.AddWarning(fmt.Sprintf(format, args...))
}

func (r *reconciler) message() string {
	c := r.res.Counts
	created := c.Categories.Created + c.Wordsets.Created +
		c.WordImages.Created + c.Words.Created + c.Audio.Created
	updated := c.Categories.Updated + c.Wordsets.Updated +
		c.WordImages.Updated + c.Words.Updated + c.Audio.Updated
	status := "Import finished"
	if !r.res.OK {
		status = "Import finished with errors"
	}
	return fmt.Sprintf("%s: %s created, %s updated, %s media files, %d errors, %d warnings",
		status,
		humanize.Comma(int64(created)),
		humanize.Comma(int64(updated)),
		humanize.Comma(int64(c.Media.Created)),
		len(r.res.Errors),
		len(r.res.Warnings),
	)
}
