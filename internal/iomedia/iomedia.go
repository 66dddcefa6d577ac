// Package iomedia indexes image and audio files of an extracted bundle
// and resolves loosely written spreadsheet references to them.
//
// A reference is matched by exact file name first. When the name is not
// found, files with the same stem are considered, so "cat.jpg" finds
// "cat.webp" after the images were converted.
package iomedia

import (
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gnames/gnbundle/pkg/textnorm"
)

// Kind separates the two media roots.
type Kind int

const (
	Image Kind = iota
	Audio
)

func (k Kind) String() string {
	if k == Audio {
		return "audio"
	}
	return "image"
}

var (
	// ImageExts lists image extensions by preference.
	ImageExts = []string{"webp", "avif", "png", "jpg", "jpeg", "gif", "svg", "bmp"}
	// AudioExts lists audio extensions by preference.
	AudioExts = []string{"mp3", "m4a", "aac", "ogg", "opus", "flac", "wav", "webm"}
)

const (
	canonicalImage = "webp"
	canonicalAudio = "mp3"
)

// Candidate is a file sharing a stem with others.
type Candidate struct {
	Rel string
	Ext string
}

type index struct {
	exact map[string]string
	stems map[string][]Candidate
}

// Catalog is an index of media files under an extraction root.
type Catalog struct {
	root   string
	images index
	audio  index
	abs    map[string]string
	// ImageDir and AudioDir are the directories that were indexed,
	// relative to root. An empty AudioDir means the root itself.
	ImageDir string
	AudioDir string
}

// Excluder tells which root level files are not media, such as the
// manifest or tabular files.
type Excluder func(rel string) bool

// Build walks the conventional images/ and audio/ (or audios/)
// directories of root. Without an audio directory, the whole root
// except the images directory and excluded files is indexed for audio.
func Build(root string, exclude Excluder) (*Catalog, error) {
	res := &Catalog{
		root:   root,
		images: newIndex(),
		audio:  newIndex(),
		abs:    make(map[string]string),
	}

	res.ImageDir = findDir(root, "images")
	res.AudioDir = findDir(root, "audio", "audios")

	if res.ImageDir != "" {
		err := res.walk(res.ImageDir, Image, func(string) bool { return false })
		if err != nil {
			return nil, err
		}
	}

	skip := func(rel string) bool {
		if res.ImageDir != "" &&
			(rel == res.ImageDir || strings.HasPrefix(rel, res.ImageDir+"/")) {
			return true
		}
		return !strings.Contains(rel, "/") && exclude != nil && exclude(rel)
	}
	if err := res.walk(res.AudioDir, Audio, skip); err != nil {
		return nil, err
	}

	res.images.sort(ImageExts)
	res.audio.sort(AudioExts)
	return res, nil
}

func newIndex() index {
	return index{
		exact: make(map[string]string),
		stems: make(map[string][]Candidate),
	}
}

// findDir returns the first existing root level directory, matched
// case-insensitively.
func findDir(root string, names ...string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	for _, n := range names {
		for _, e := range entries {
			if e.IsDir() && strings.EqualFold(e.Name(), n) {
				return e.Name()
			}
		}
	}
	return ""
}

func (c *Catalog) walk(dir string, kind Kind, skip func(string) bool) error {
	start := filepath.Join(c.root, filepath.FromSlash(dir))
	return filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if skip(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !sniff(p, kind) {
			slog.Debug("Skipping non-media file", "file", rel, "kind", kind)
			return nil
		}
		c.add(kind, rel, p)
		return nil
	})
}

// sniff accepts images as images, and audio or video containers as
// audio.
func sniff(p string, kind Kind) bool {
	m, err := mimetype.DetectFile(p)
	if err != nil {
		return false
	}
	for ; m != nil; m = m.Parent() {
		t := m.String()
		switch kind {
		case Image:
			if strings.HasPrefix(t, "image/") {
				return true
			}
		case Audio:
			if strings.HasPrefix(t, "audio/") || strings.HasPrefix(t, "video/") {
				return true
			}
		}
	}
	return false
}

func (c *Catalog) add(kind Kind, rel, abs string) {
	idx := c.index(kind)
	base := strings.ToLower(path.Base(rel))
	if _, ok := idx.exact[base]; !ok {
		idx.exact[base] = rel
	}
	stem := textnorm.Stem(base)
	ext := strings.TrimPrefix(path.Ext(base), ".")
	idx.stems[stem] = append(idx.stems[stem], Candidate{Rel: rel, Ext: ext})
	c.abs[rel] = abs
}

func (c *Catalog) index(kind Kind) *index {
	if kind == Audio {
		return &c.audio
	}
	return &c.images
}

func (idx index) sort(pref []string) {
	rank := func(ext string) int {
		if i := slices.Index(pref, ext); i >= 0 {
			return i
		}
		return len(pref)
	}
	for _, cs := range idx.stems {
		slices.SortFunc(cs, func(a, b Candidate) int {
			if d := rank(a.Ext) - rank(b.Ext); d != 0 {
				return d
			}
			return strings.Compare(a.Rel, b.Rel)
		})
	}
}

// Resolve finds the relative path of a referenced file.
func (c *Catalog) Resolve(kind Kind, ref string) (string, bool) {
	base := RefBase(ref)
	if base == "" {
		return "", false
	}
	idx := c.index(kind)
	if rel, ok := idx.exact[base]; ok {
		return rel, true
	}

	cands := idx.stems[textnorm.Stem(base)]
	if len(cands) == 0 {
		return "", false
	}
	ext := strings.TrimPrefix(path.Ext(base), ".")
	canonical := canonicalImage
	if kind == Audio {
		canonical = canonicalAudio
	}
	for _, want := range []string{ext, canonical} {
		if want == "" {
			continue
		}
		for _, cand := range cands {
			if cand.Ext == want {
				return cand.Rel, true
			}
		}
	}
	return cands[0].Rel, true
}

// Abs returns the absolute path of a cataloged file.
func (c *Catalog) Abs(rel string) string {
	return c.abs[rel]
}

// Len returns the number of indexed files of a kind.
func (c *Catalog) Len(kind Kind) int {
	var n int
	for _, cs := range c.index(kind).stems {
		n += len(cs)
	}
	return n
}

// RefBase reduces a reference to a lowercase file name: URL query and
// fragment, directories and surrounding spaces are removed, percent
// escapes are decoded.
func RefBase(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.ReplaceAll(ref, `\`, "/")
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		ref = ref[i+1:]
	}
	if strings.Contains(ref, "%") {
		if s, err := url.PathUnescape(ref); err == nil {
			ref = s
		}
	}
	return strings.ToLower(strings.TrimSpace(ref))
}
