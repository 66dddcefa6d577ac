package ioexport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
)

// tracker collects media files of an export and enforces the hard
// limits.
type tracker struct {
	root    string
	limits  config.LimitsConfig
	files   []ioarchive.File
	bytes   int64
	seen    map[int64]*bundle.MediaFile
	skipped []string
}

func newTracker(root string, limits config.LimitsConfig) *tracker {
	return &tracker{
		root:   root,
		limits: limits,
		seen:   make(map[int64]*bundle.MediaFile),
	}
}

// supported tells if a media type can travel in a bundle.
func supported(mime string) bool {
	for _, p := range []string{"image/", "audio/", "video/"} {
		if strings.HasPrefix(mime, p) {
			return true
		}
	}
	return false
}

// add registers the featured media of an item. Unsupported or missing
// files are skipped and reported in the stats.
func (t *tracker) add(
	ctx context.Context,
	store content.Store,
	it *content.Item,
) (*bundle.MediaFile, error) {
	if it.FeaturedMediaID == 0 {
		return nil, nil
	}
	if mf, ok := t.seen[it.FeaturedMediaID]; ok {
		return mf, nil
	}
	m, err := store.MediaByID(ctx, it.FeaturedMediaID)
	if errors.Is(err, content.ErrNotFound) {
		t.skip(it, "media record is missing")
		return nil, nil
	}
	if err != nil {
		return nil, ExportReadError(err)
	}
	if !supported(m.MimeType) {
		t.skip(it, fmt.Sprintf("unsupported media type %s", m.MimeType))
		return nil, nil
	}
	rel, err := ioarchive.CleanEntryPath(m.Path)
	if err != nil {
		t.skip(it, "media path is outside the media storage")
		return nil, nil
	}
	src := filepath.Join(t.root, filepath.FromSlash(rel))
	info, err := os.Stat(src)
	if err != nil || !info.Mode().IsRegular() {
		t.skip(it, "media file is missing")
		return nil, nil
	}

	if len(t.files)+1 > t.limits.ExportMaxFiles {
		return nil, TooManyFilesError(t.limits.ExportMaxFiles)
	}
	if t.bytes+info.Size() > t.limits.ExportMaxBytes {
		return nil, TooManyBytesError(t.limits.ExportMaxBytes)
	}

	mf := &bundle.MediaFile{
		Path: fmt.Sprintf("media/%d-%s", it.ID, path.Base(rel)),
		Name: m.Name,
		Mime: m.MimeType,
		Size: info.Size(),
	}
	t.files = append(t.files, ioarchive.File{ArchivePath: mf.Path, SourcePath: src})
	t.bytes += info.Size()
	t.seen[m.ID] = mf
	return mf, nil
}

func (t *tracker) skip(it *content.Item, reason string) {
	t.skipped = append(t.skipped, fmt.Sprintf("%s %q: %s", it.Type, it.Slug, reason))
}
