// Package iotabular builds a bundle manifest from spreadsheet files
// found at the root of an extracted archive. Each file is decoded,
// split with a detected delimiter and mapped to one of four quiz modes
// by its column headers. Rows that share a category, mode, answer and
// prompt are merged into one word, collecting their wrong answers.
package iotabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gnames/gnbundle/internal/iomedia"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/textnorm"
	"github.com/gnames/gnuuid"
)

// Options configure Parse.
type Options struct {
	// LegacyEncodings are tried for files that are not UTF-8.
	LegacyEncodings []string
	// MaxWarnings caps kept warnings, zero means no cap.
	MaxWarnings int
	// BundleName is the archive file name, it names the wordset.
	BundleName string
}

// Result is the outcome of Parse.
type Result struct {
	Manifest *bundle.Manifest
	Summary  bundle.TabularSummary
	Warnings []string
}

// IsTabular tells if a root level file name is a tabular file.
func IsTabular(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return true
	}
	return false
}

// category is an entry of the category map.
type category struct {
	slug string
	name string
	mode string
}

// word is an entry of the word map.
type word struct {
	key      string
	slug     string
	category string
	mode     string
	answer   string
	prompt   string
	image    string
	audio    string
	wrong    []string
	wrongKey map[string]struct{}
}

type parser struct {
	root    string
	catalog *iomedia.Catalog
	opts    Options

	categories map[string]*category
	catOrder   []string
	words      map[string]*word
	wordOrder  []string
	slugs      map[string]struct{}

	summary  bundle.TabularSummary
	warnings []string
}

// Parse reads all tabular files at root. A file or row that cannot be
// used produces a warning and is skipped. The manifest is nil when no
// row could be used.
func Parse(root string, cat *iomedia.Catalog, opts Options) (*Result, error) {
	files, err := ListFiles(root)
	if err != nil {
		return nil, err
	}
	p := &parser{
		root:       root,
		catalog:    cat,
		opts:       opts,
		categories: make(map[string]*category),
		words:      make(map[string]*word),
		slugs:      make(map[string]struct{}),
	}
	p.summary.FilesFound = len(files)

	for _, f := range files {
		if p.parseFile(f) {
			p.summary.FilesUsed++
		} else {
			p.summary.FilesSkipped++
		}
	}

	res := &Result{Summary: p.summary, Warnings: p.warnings}
	if len(p.wordOrder) > 0 {
		res.Manifest = p.manifest()
	}
	slog.Info("Tabular files parsed",
		"files", p.summary.FilesFound,
		"rows_used", p.summary.RowsUsed,
		"rows_skipped", p.summary.RowsSkipped,
	)
	return res, nil
}

// ListFiles returns root level tabular files sorted by name.
func ListFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsTabular(e.Name()) {
			res = append(res, e.Name())
		}
	}
	slices.Sort(res)
	return res, nil
}

func (p *parser) warn(format string, args ...any) {
	if p.opts.MaxWarnings > 0 && len(p.warnings) >= p.opts.MaxWarnings {
		p.summary.WarningsSuppressed++
		return
	}
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *parser) parseFile(name string) bool {
	raw, err := os.ReadFile(filepath.Join(p.root, name))
	if err != nil {
		p.warn("%s: cannot read file", name)
		return false
	}
	text, enc := DecodeText(raw, p.opts.LegacyEncodings)
	slog.Debug("Decoded tabular file", "file", name, "encoding", enc)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = DetectDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		p.warn("%s: no header row", name)
		return false
	}
	cols := MatchColumns(header)
	mode := cols.Mode()
	switch {
	case mode == "":
		p.warn("%s: no image, audio or prompt column, file skipped", name)
		return false
	case cols.Group < 0:
		p.warn("%s: no quiz group column, file skipped", name)
		return false
	case cols.Answer < 0:
		p.warn("%s: no answer column, file skipped", name)
		return false
	}

	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			p.summary.RowsSkipped++
			p.warn("%s row %d: %v", name, line, err)
			continue
		}
		if isEmptyRow(row) {
			continue
		}
		p.summary.RowsNonEmpty++
		if reason := p.addRow(row, cols, mode); reason != "" {
			p.summary.RowsSkipped++
			p.warn("%s row %d: %s", name, line, reason)
			continue
		}
		p.summary.RowsUsed++
	}
	return true
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return textnorm.Space(row[i])
}

// addRow merges a row into the maps. It returns the reason when the
// row is skipped.
func (p *parser) addRow(row []string, cols Columns, mode string) string {
	group := cell(row, cols.Group)
	answer := cell(row, cols.Answer)
	if group == "" {
		return "missing quiz group"
	}
	if answer == "" {
		return "missing answer"
	}
	catSlug := textnorm.Slug(group)
	if catSlug == "" {
		return fmt.Sprintf("quiz group %q gives an empty slug", group)
	}

	w := word{category: catSlug, mode: mode, answer: answer}
	var identity string
	switch mode {
	case ModeImagePrompt, ModeTextToImage:
		ref := cell(row, cols.Image)
		if ref == "" {
			return "missing image"
		}
		rel, ok := p.catalog.Resolve(iomedia.Image, ref)
		if !ok {
			return fmt.Sprintf("image %q not found", ref)
		}
		w.image = rel
		identity = "image:" + rel
	case ModeAudioPrompt:
		ref := cell(row, cols.Audio)
		if ref == "" {
			return "missing audio"
		}
		rel, ok := p.catalog.Resolve(iomedia.Audio, ref)
		if !ok {
			return fmt.Sprintf("audio %q not found", ref)
		}
		w.audio = rel
		identity = "audio:" + rel
	case ModeTextToText:
		w.prompt = cell(row, cols.Prompt)
		if w.prompt == "" {
			return "missing prompt text"
		}
		identity = "text:" + gnuuid.New(textnorm.Fold(w.prompt)).String()
	}

	if c, ok := p.categories[catSlug]; ok {
		if c.mode != mode {
			return fmt.Sprintf("quiz group %q already uses mode %s, row has %s",
				c.name, c.mode, mode)
		}
	} else {
		p.categories[catSlug] = &category{slug: catSlug, name: group, mode: mode}
		p.catOrder = append(p.catOrder, catSlug)
	}

	key := strings.Join(
		[]string{catSlug, mode, textnorm.Fold(answer), identity}, "|",
	)
	entry, ok := p.words[key]
	if !ok {
		w.key = key
		w.slug = p.newSlug(answer)
		w.wrongKey = make(map[string]struct{})
		entry = &w
		p.words[key] = entry
		p.wordOrder = append(p.wordOrder, key)
	}
	for _, i := range cols.Wrong {
		entry.addWrong(cell(row, i))
	}
	return ""
}

// addWrong keeps the first spelling of case and diacritic insensitive
// duplicates. The answer itself is never a wrong answer.
func (w *word) addWrong(s string) {
	if s == "" {
		return
	}
	k := textnorm.Fold(s)
	if k == textnorm.Fold(w.answer) {
		return
	}
	if _, ok := w.wrongKey[k]; ok {
		return
	}
	w.wrongKey[k] = struct{}{}
	w.wrong = append(w.wrong, s)
}

// newSlug makes a slug unique among slugs minted by this parse by
// appending -2, -3, ... Collisions with the store are resolved on
// reconciliation through the source key.
func (p *parser) newSlug(text string) string {
	base := textnorm.Slug(text)
	if base == "" {
		base = "word"
	}
	slug := base
	for i := 2; ; i++ {
		if _, ok := p.slugs[slug]; !ok {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	p.slugs[slug] = struct{}{}
	return slug
}
