package iostore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/schema"
	"github.com/gnames/gnbundle/pkg/textnorm"
	"github.com/gnames/gnsys"
)

// AttachMedia copies srcPath into the media root under a year/month
// directory, records it and optionally makes it the featured media of
// the item.
func (s *Store) AttachMedia(
	ctx context.Context,
	itemID int64,
	srcPath, name string,
	featured bool,
) (*content.Media, error) {
	if name == "" {
		name = filepath.Base(srcPath)
	}
	mtype, err := mimetype.DetectFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", name, err)
	}

	rel, err := s.copyIntoRoot(srcPath, name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(filepath.Join(s.mediaRoot, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	row := schema.Media{
		ItemID:   itemID,
		Path:     rel,
		Name:     name,
		MimeType: mtype.String(),
		Size:     info.Size(),
	}
	if err = s.tx(ctx).Create(&row).Error; err != nil {
		_ = os.Remove(filepath.Join(s.mediaRoot, filepath.FromSlash(rel)))
		return nil, fmt.Errorf("record media %s: %w", name, err)
	}
	if featured && itemID > 0 {
		err = s.tx(ctx).Model(&schema.Item{ID: itemID}).
			Update("featured_media_id", row.ID).Error
		if err != nil {
			return nil, err
		}
	}
	res := toMedia(row)
	return &res, nil
}

// copyIntoRoot copies a file and returns its slash separated path
// relative to the media root. Existing files are never overwritten,
// a numeric suffix is added instead.
func (s *Store) copyIntoRoot(srcPath, name string) (string, error) {
	now := s.now()
	dir := path.Join(fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()))
	absDir := filepath.Join(s.mediaRoot, filepath.FromSlash(dir))
	if err := gnsys.MakeDir(absDir); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	stem := textnorm.Slug(textnorm.Stem(name))
	if stem == "" {
		stem = "file"
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	var dst *os.File
	var rel string
	for i := 0; ; i++ {
		base := stem + ext
		if i > 0 {
			base = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		rel = path.Join(dir, base)
		dst, err = os.OpenFile(
			filepath.Join(absDir, base),
			os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644,
		)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("copy %s: %w", name, err)
	}
	if err = dst.Close(); err != nil {
		return "", err
	}
	return rel, nil
}

// MediaByID returns a media record.
func (s *Store) MediaByID(ctx context.Context, id int64) (*content.Media, error) {
	var m schema.Media
	if err := s.tx(ctx).Take(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	res := toMedia(m)
	return &res, nil
}

// DeleteMedia removes a media record and clears it from items that
// feature it. The file is left in place.
func (s *Store) DeleteMedia(ctx context.Context, id int64) error {
	res := s.tx(ctx).Delete(&schema.Media{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return content.ErrNotFound
	}
	return s.tx(ctx).Model(&schema.Item{}).
		Where("featured_media_id = ?", id).
		Update("featured_media_id", 0).Error
}

func toMedia(m schema.Media) content.Media {
	return content.Media{
		ID:       m.ID,
		ItemID:   m.ItemID,
		Path:     m.Path,
		Name:     m.Name,
		MimeType: m.MimeType,
		Size:     m.Size,
	}
}
