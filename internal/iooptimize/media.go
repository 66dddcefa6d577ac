package iooptimize

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/gnames/gnbundle/pkg/schema"
)

// sweepMedia removes files under the media root that are not
// referenced by any media record. Files the store did not create are
// removed as well, the media root belongs to the store.
func (o *optimizer) sweepMedia(ctx context.Context) (int, int64, error) {
	var paths []string
	err := o.operator.DB().WithContext(ctx).
		Model(&schema.Media{}).Pluck("path", &paths).Error
	if err != nil {
		return 0, 0, MediaSweepError(err)
	}
	known := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		known[p] = struct{}{}
	}

	files, err := o.listFiles()
	if err != nil {
		return 0, 0, MediaSweepError(err)
	}
	if len(files) == 0 {
		return 0, 0, nil
	}

	var bar *pb.ProgressBar
	if !o.quiet {
		bar = pb.Full.Start(len(files))
		bar.Set("prefix", "media files: ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	var count int
	var freed int64
	for _, f := range files {
		if bar != nil {
			bar.Increment()
		}
		if err = ctx.Err(); err != nil {
			return count, freed, err
		}
		if _, ok := known[f.rel]; ok {
			continue
		}
		if err = os.Remove(f.abs); err != nil {
			slog.Warn("Cannot remove media file", "path", f.rel, "error", err)
			continue
		}
		count++
		freed += f.size
	}
	slog.Info("Removed orphan media files", "count", count, "bytes", freed)
	return count, freed, nil
}

type mediaFile struct {
	abs, rel string
	size     int64
}

func (o *optimizer) listFiles() ([]mediaFile, error) {
	var res []mediaFile
	err := filepath.WalkDir(o.mediaRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(o.mediaRoot, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		res = append(res, mediaFile{abs: p, rel: filepath.ToSlash(rel), size: info.Size()})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return res, err
}
