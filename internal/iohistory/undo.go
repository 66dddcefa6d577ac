package iohistory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
)

// Undo removes what the import entry id created. Entities that no
// longer exist are skipped quietly, entities whose type changed and
// files outside the media root are skipped with a warning.
func (h *history) Undo(ctx context.Context, id, actor string) (*bundle.Result, error) {
	list, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := slices.IndexFunc(list, func(e bundle.HistoryEntry) bool {
		return e.ID == id
	})
	if idx < 0 {
		return nil, EntryNotFoundError(id)
	}
	e := list[idx]
	if e.Action != bundle.ActionImport {
		return nil, EntryNotFoundError(id)
	}
	if e.UndoneAt != nil {
		return nil, AlreadyUndoneError(id, *e.UndoneAt)
	}

	u := &undoer{store: h.store, res: &bundle.Result{}}
	u.items(ctx, e.Undo.Audio, content.WordAudio, &u.res.Counts.Audio)
	u.items(ctx, e.Undo.Words, content.Word, &u.res.Counts.Words)
	u.items(ctx, e.Undo.WordImages, content.WordImage, &u.res.Counts.WordImages)
	u.attachments(ctx, e.Undo.Attachments)
	u.featured(ctx, e.Undo.Featured)
	u.files(e.Undo.AudioFiles)
	u.terms(ctx, e.Undo.Wordsets, content.Wordset, &u.res.Counts.Wordsets)
	u.terms(ctx, e.Undo.Categories, content.Category, &u.res.Counts.Categories)
	u.res.Finish()

	c := u.res.Counts
	removed := c.Audio.Updated + c.Words.Updated + c.WordImages.Updated +
		c.Wordsets.Updated + c.Categories.Updated
	u.res.Message = fmt.Sprintf(
		"Undo of %s finished: %d entities and %d media files removed",
		id, removed, c.Media.Updated,
	)

	now := h.now()
	list[idx].UndoneAt = &now
	if err = h.save(ctx, list); err != nil {
		return nil, err
	}
	u.res.HistoryID, err = h.Add(ctx, bundle.HistoryEntry{
		Actor:   actor,
		Action:  bundle.ActionUndo,
		OK:      u.res.OK,
		Message: u.res.Message,
		Source:  id,
		Counts:  u.res.Counts,
	})
	if err != nil {
		return nil, err
	}
	return u.res, nil
}

// undoer counts removed entities in the Updated field of the counters.
type undoer struct {
	store content.Store
	res   *bundle.Result
}

func (u *undoer) items(
	ctx context.Context,
	ids []int64,
	typ content.ItemType,
	cnt *bundle.Count,
) {
	for _, id := range ids {
		it, err := u.store.ItemByID(ctx, id)
		if errors.Is(err, content.ErrNotFound) {
			slog.Debug("Item is already gone", "id", id, "type", typ)
			continue
		}
		if err != nil {
			u.res.AddError(fmt.Sprintf("%s %d: %v", typ, id, err))
			continue
		}
		if it.Type != typ {
			u.res.AddWarning(fmt.Sprintf("%s %d is now %s, skipped", typ, id, it.Type))
			continue
		}
		if err = u.store.DeleteItem(ctx, id); err != nil {
			u.res.AddError(fmt.Sprintf("%s %d: %v", typ, id, err))
			continue
		}
		cnt.Updated++
	}
}

func (u *undoer) terms(
	ctx context.Context,
	ids []int64,
	tax content.Taxonomy,
	cnt *bundle.Count,
) {
	for _, id := range ids {
		t, err := u.store.TermByID(ctx, id)
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		if err != nil {
			u.res.AddError(fmt.Sprintf("%s %d: %v", tax, id, err))
			continue
		}
		if t.Taxonomy != tax {
			u.res.AddWarning(fmt.Sprintf("%s %d is now %s, skipped", tax, id, t.Taxonomy))
			continue
		}
		if err = u.store.DeleteTerm(ctx, id); err != nil {
			u.res.AddError(fmt.Sprintf("%s %d: %v", tax, id, err))
			continue
		}
		cnt.Updated++
	}
}

func (u *undoer) attachments(ctx context.Context, ids []int64) {
	for _, id := range ids {
		m, err := u.store.MediaByID(ctx, id)
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		if err != nil {
			u.res.AddError(fmt.Sprintf("attachment %d: %v", id, err))
			continue
		}
		if err = u.store.DeleteMedia(ctx, id); err != nil {
			u.res.AddError(fmt.Sprintf("attachment %d: %v", id, err))
			continue
		}
		u.res.Counts.Media.Updated++
		u.removeFile(m.Path)
	}
}

// featured points surviving items back to the media they featured
// before the import. Items that feature something else by now are left
// alone.
func (u *undoer) featured(ctx context.Context, links []bundle.FeaturedLink) {
	for _, l := range links {
		it, err := u.store.ItemByID(ctx, l.ItemID)
		if errors.Is(err, content.ErrNotFound) {
			continue
		}
		if err != nil {
			u.res.AddError(fmt.Sprintf("item %d: %v", l.ItemID, err))
			continue
		}
		if it.FeaturedMediaID != 0 {
			slog.Debug("Featured media changed, not restored",
				"item", l.ItemID, "media", it.FeaturedMediaID)
			continue
		}
		if _, err = u.store.MediaByID(ctx, l.MediaID); err != nil {
			slog.Debug("Previous featured media is gone",
				"item", l.ItemID, "media", l.MediaID)
			continue
		}
		it.FeaturedMediaID = l.MediaID
		err = u.store.UpdateItem(ctx, it, content.WriteOptions{SkipPublishGate: true})
		if err != nil {
			u.res.AddError(fmt.Sprintf("item %d: %v", l.ItemID, err))
		}
	}
}

func (u *undoer) files(paths []string) {
	for _, p := range paths {
		u.removeFile(p)
	}
}

// removeFile deletes a file of the media root. Missing files are fine.
func (u *undoer) removeFile(rel string) {
	clean, err := ioarchive.CleanEntryPath(rel)
	if err != nil {
		u.res.AddWarning(fmt.Sprintf("file %q is outside the media storage, skipped", rel))
		return
	}
	path := filepath.Join(u.store.MediaRoot(), filepath.FromSlash(clean))
	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("Cannot remove media file", "path", clean, "error", err)
		u.res.AddError(fmt.Sprintf("file %q could not be removed", clean))
	}
}
