package iotabular

import (
	"os"
	"path"
	"strings"

	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/textnorm"
)

// DefaultWordset names the wordset when the archive name gives none.
const DefaultWordset = "tabular-import"

// WordsetFor derives wordset slug and name from an archive file name.
func WordsetFor(bundleName string) (string, string) {
	name := textnorm.Space(strings.NewReplacer("_", " ", "-", " ").
		Replace(textnorm.Stem(bundleName)))
	slug := textnorm.Slug(name)
	if slug == "" {
		return DefaultWordset, DefaultWordset
	}
	return slug, name
}

func (p *parser) manifest() *bundle.Manifest {
	res := &bundle.Manifest{
		Categories: make([]bundle.Category, 0, len(p.catOrder)),
		WordImages: []bundle.WordImage{},
	}
	for _, slug := range p.catOrder {
		c := p.categories[slug]
		res.Categories = append(res.Categories, bundle.Category{
			Slug: c.slug,
			Name: c.name,
			Meta: content.Meta{bundle.MetaQuizMode: {c.mode}},
		})
	}

	wsSlug, wsName := WordsetFor(p.opts.BundleName)
	res.Wordsets = []bundle.Wordset{{Slug: wsSlug, Name: wsName}}

	media := make(map[string]struct{})
	for _, key := range p.wordOrder {
		w := p.words[key]
		wd := bundle.Word{
			Slug:       w.slug,
			Title:      w.answer,
			Status:     content.StatusPublish,
			Categories: []string{w.category},
			Wordsets:   []string{wsSlug},
			Meta:       content.Meta{bundle.MetaSourceKey: {w.key}},
		}
		if len(w.wrong) > 0 {
			wd.Meta[bundle.MetaWrongAnswerTexts] = w.wrong
		}

		switch w.mode {
		case ModeImagePrompt, ModeTextToImage:
			res.WordImages = append(res.WordImages, bundle.WordImage{
				Slug:          w.slug,
				Title:         w.answer,
				Status:        content.StatusPublish,
				Categories:    []string{w.category},
				Meta:          content.Meta{bundle.MetaSourceKey: {w.key}},
				FeaturedImage: p.mediaFile(w.image, media, &res.MediaEstimate),
			})
			wd.WordImage = w.slug
		case ModeAudioPrompt:
			wd.AudioEntries = []bundle.AudioEntry{{
				Slug:      w.slug,
				Title:     w.answer,
				Status:    content.StatusPublish,
				AudioFile: p.mediaFile(w.audio, media, &res.MediaEstimate),
			}}
		case ModeTextToText:
			wd.Content = w.prompt
			wd.Meta[bundle.MetaPromptText] = []string{w.prompt}
		}
		res.Words = append(res.Words, wd)
	}
	return res
}

// mediaFile describes a cataloged file, counting each file once in
// the estimate.
func (p *parser) mediaFile(
	rel string,
	seen map[string]struct{},
	est *bundle.MediaEstimate,
) *bundle.MediaFile {
	res := &bundle.MediaFile{Path: rel, Name: path.Base(rel)}
	if fi, err := os.Stat(p.catalog.Abs(rel)); err == nil {
		res.Size = fi.Size()
	}
	if _, ok := seen[rel]; !ok {
		seen[rel] = struct{}{}
		est.Files++
		est.Bytes += res.Size
	}
	return res
}
