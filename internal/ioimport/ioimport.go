// Package ioimport runs the import pipeline: extract an archive into a
// private work directory, load its payload, reconcile it with the
// content store and record the outcome in history.
package ioimport

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/internal/ioload"
	"github.com/gnames/gnbundle/internal/ioreconcile"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnsys"
)

type importer struct {
	store content.Store
	hist  bundle.History
	cfg   *config.Config
}

// New creates an Importer. hist may be nil, then imports are not
// recorded.
func New(store content.Store, hist bundle.History, cfg *config.Config) bundle.Importer {
	return &importer{store: store, hist: hist, cfg: cfg}
}

// Import extracts, loads and reconciles an archive.
func (i *importer) Import(
	ctx context.Context,
	archive string,
	opts bundle.ImportOptions,
) (*bundle.Result, error) {
	if opts.WordsetMode == bundle.WordsetModeAssign && opts.Wordset == "" {
		return nil, ioreconcile.AssignWordsetError("",
			errors.New("assign mode needs a wordset"))
	}
	p, cleanup, err := i.load(archive)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res, err := ioreconcile.Reconcile(ctx, i.store, p, ioreconcile.Options{
		WordsetMode:     opts.WordsetMode,
		Wordset:         opts.Wordset,
		Renames:         opts.Renames,
		AllowedMetaKeys: i.cfg.Import.AllowedMetaKeys,
		Progress:        opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	if i.hist != nil {
		actor := opts.Actor
		if actor == "" {
			actor = i.cfg.Actor
		}
		res.HistoryID, err = i.hist.Add(ctx, bundle.HistoryEntry{
			Actor:   actor,
			Action:  bundle.ActionImport,
			OK:      res.OK,
			Message: res.Message,
			Source:  filepath.Base(archive),
			Counts:  res.Counts,
			Undo:    res.Undo,
		})
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Preview loads an archive and tells what an import would create and
// update, without writing to the store.
func (i *importer) Preview(ctx context.Context, archive string) (*bundle.Preview, error) {
	p, cleanup, err := i.load(archive)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res := &bundle.Preview{
		Time:     time.Now(),
		Source:   filepath.Base(archive),
		Origin:   p.Origin,
		Warnings: p.Warnings,
		Summary:  p.Summary,
	}
	m := p.Manifest
	c := &res.Counts
	for _, cat := range m.Categories {
		i.countTerm(ctx, &c.Categories, content.Category, cat.Slug)
	}
	for _, ws := range m.Wordsets {
		i.countTerm(ctx, &c.Wordsets, content.Wordset, ws.Slug)
	}
	for _, wi := range m.WordImages {
		i.countItem(ctx, &c.WordImages, content.WordImage, wi.Slug,
			wi.Meta.First(bundle.MetaSourceKey))
	}
	for _, w := range m.Words {
		i.countItem(ctx, &c.Words, content.Word, w.Slug,
			w.Meta.First(bundle.MetaSourceKey))
		c.Audio.Created += len(w.AudioEntries)
	}
	c.Media.Created = len(m.MediaFiles())
	return res, nil
}

func (i *importer) countTerm(
	ctx context.Context,
	cnt *bundle.Count,
	tax content.Taxonomy,
	slug string,
) {
	if _, err := i.store.FindTerm(ctx, tax, slug); err == nil {
		cnt.Updated++
		return
	}
	cnt.Created++
}

func (i *importer) countItem(
	ctx context.Context,
	cnt *bundle.Count,
	typ content.ItemType,
	slug, key string,
) {
	it, _, err := ioreconcile.MatchItem(ctx, i.store, typ, slug, 0, key)
	if err == nil && it != nil {
		cnt.Updated++
		return
	}
	cnt.Created++
}

// load extracts the archive into a new directory under the cache
// directory. cleanup removes that directory.
func (i *importer) load(archive string) (*bundle.Payload, func(), error) {
	cache := config.CacheDir(i.cfg.HomeDir)
	if err := gnsys.MakeDir(cache); err != nil {
		return nil, nil, WorkDirError(cache, err)
	}
	dir, err := os.MkdirTemp(cache, "import-*")
	if err != nil {
		return nil, nil, WorkDirError(cache, err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("Cannot remove work directory", "dir", dir, "error", err)
		}
	}

	lim := ioarchive.Limits{
		MaxEntries: i.cfg.Limits.MaxArchiveEntries,
		MaxBytes:   i.cfg.Limits.MaxUncompressedBytes,
	}
	if err = ioarchive.ExtractFile(archive, dir, lim); err != nil {
		cleanup()
		return nil, nil, err
	}
	p, err := ioload.Load(dir, ioload.Options{
		LegacyEncodings: i.cfg.Import.LegacyEncodings,
		MaxWarnings:     i.cfg.Import.MaxWarnings,
		BundleName:      filepath.Base(archive),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	slog.Info("Payload loaded",
		"source", filepath.Base(archive),
		"origin", p.Origin,
		"categories", len(p.Manifest.Categories),
		"words", len(p.Manifest.Words),
	)
	return p, cleanup, nil
}
