package ioreconcile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
)

// importMedia copies a payload media file into the managed storage and
// makes it the featured media of the item. When the item already
// features a file with the same name and size nothing is copied.
func (r *reconciler) importMedia(
	ctx context.Context,
	it *content.Item,
	mf *bundle.MediaFile,
	audio bool,
) (*content.Media, error) {
	if mf == nil || mf.Path == "" {
		return nil, nil
	}
	rel, err := ioarchive.CleanEntryPath(mf.Path)
	if err != nil {
		return nil, errors.New("media path " + mf.Path + " is not allowed")
	}
	src := filepath.Join(r.payload.Root, filepath.FromSlash(rel))
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		// the loader already warned about missing files
		slog.Warn("Media file is missing", "path", rel)
		return nil, nil
	}
	name := mf.Name
	if name == "" {
		name = path.Base(rel)
	}

	if it.FeaturedMediaID > 0 {
		m, err := r.store.MediaByID(ctx, it.FeaturedMediaID)
		if err == nil && m.Name == name && m.Size == info.Size() {
			r.res.Counts.Media.Updated++
			return m, nil
		}
	}

	prev := it.FeaturedMediaID
	m, err := r.store.AttachMedia(ctx, it.ID, src, name, true)
	if err != nil {
		slog.Error("Cannot attach media", "path", rel, "error", err)
		return nil, errors.New("cannot store media file " + rel)
	}
	it.FeaturedMediaID = m.ID
	r.res.Undo.TrackFeatured(it.ID, prev)
	r.res.Counts.Media.Created++
	r.res.Undo.TrackID(bundle.BucketAttachments, m.ID)
	if audio {
		r.res.Undo.TrackPath(bundle.BucketAudioFiles, m.Path)
	}
	return m, nil
}
