package ioexport_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/internal/ioexport"
	"github.com/gnames/gnbundle/internal/ioimport"
	"github.com/gnames/gnbundle/internal/iostore"
	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/gnames/gnbundle/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed fills the store with two category trees and a full wordset.
func seed(t *testing.T, st *iostore.Store) {
	ctx := context.Background()
	opts := content.WriteOptions{SkipPublishGate: true}
	term := func(tax content.Taxonomy, slug string, parent int64) *content.Term {
		tm := &content.Term{Taxonomy: tax, Slug: slug, Name: slug, ParentID: parent}
		require.NoError(t, st.CreateTerm(ctx, tm))
		return tm
	}
	animals := term(content.Category, "animals", 0)
	pets := term(content.Category, "pets", animals.ID)
	food := term(content.Category, "food", 0)
	ws := term(content.Wordset, "basic", 0)

	add := func(it *content.Item, cat *content.Term, body []byte, name string) {
		require.NoError(t, st.CreateItem(ctx, it, opts))
		if cat != nil {
			require.NoError(t, st.SetItemTerms(ctx, it.ID, content.Category, []int64{cat.ID}))
		}
		if body != nil {
			src := iotesting.WriteFile(t, t.TempDir(), name, body)
			_, err := st.AttachMedia(ctx, it.ID, src, name, true)
			require.NoError(t, err)
		}
	}
	add(&content.Item{Type: content.WordImage, Slug: "cat", Title: "Cat",
		Status: content.StatusPublish}, pets, iotesting.PNG, "cat.png")
	add(&content.Item{Type: content.WordImage, Slug: "bread", Title: "Bread",
		Status: content.StatusPublish}, food, iotesting.PNG, "bread.png")

	cat := &content.Item{Type: content.Word, Slug: "cat", Title: "cat",
		Status: content.StatusPublish}
	add(cat, pets, nil, "")
	require.NoError(t, st.SetItemTerms(ctx, cat.ID, content.Wordset, []int64{ws.ID}))
	add(&content.Item{Type: content.WordAudio, Slug: "cat-1", Title: "cat",
		ParentID: cat.ID, Status: content.StatusPublish}, nil, iotesting.MP3, "cat.mp3")

	bread := &content.Item{Type: content.Word, Slug: "bread", Title: "bread"}
	add(bread, food, nil, "")
	require.NoError(t, st.SetItemTerms(ctx, bread.ID, content.Wordset, []int64{ws.ID}))
}

func readManifest(t *testing.T, path string) *bundle.Manifest {
	zr, err := ioarchive.Open(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != bundle.ManifestFile {
			continue
		}
		r, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		r.Close()
		m, err := bundle.ParseManifest(data)
		require.NoError(t, err)
		return m
	}
	t.Fatal("no manifest in archive")
	return nil
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr), "not a gn.Error: %v", err)
	return gnErr.Code
}

func TestExportRoots(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.TestConfig(t)
	st := iotesting.NewStore(t, cfg)
	seed(t, st)

	dest := filepath.Join(t.TempDir(), "animals.zip")
	stats, err := ioexport.New(st, cfg).Export(ctx, dest, bundle.ExportOptions{
		Roots:   []string{"animals"},
		Full:    true,
		Wordset: "basic",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 1, stats.WordImages)
	assert.Equal(t, 1, stats.Words)
	assert.Equal(t, 1, stats.Audio)
	assert.Equal(t, 2, stats.MediaFiles)

	m := readManifest(t, dest)
	require.Len(t, m.Categories, 2)
	assert.Equal(t, "animals", m.Categories[0].Slug)
	assert.Empty(t, m.Categories[0].Parent)
	assert.Equal(t, "animals", m.Categories[1].Parent)
	require.Len(t, m.WordImages, 1)
	wi := m.WordImages[0]
	assert.Equal(t, []string{"pets"}, wi.Categories)
	require.NotNil(t, wi.FeaturedImage)
	assert.Regexp(t, `^media/\d+-cat\.png$`, wi.FeaturedImage.Path)
	require.Len(t, m.Words, 1)
	assert.Equal(t, []string{"basic"}, m.Words[0].Wordsets)
	require.Len(t, m.Words[0].AudioEntries, 1)
	assert.NotNil(t, m.Words[0].AudioEntries[0].AudioFile)
}

func TestExportScopeErrors(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.TestConfig(t)
	st := iotesting.NewStore(t, cfg)
	seed(t, st)
	exp := ioexport.New(st, cfg)
	dest := filepath.Join(t.TempDir(), "out.zip")

	_, err := exp.Export(ctx, dest, bundle.ExportOptions{Full: true})
	require.Error(t, err)
	assert.Equal(t, errcode.ExportScopeError, errCode(t, err))

	_, err = exp.Export(ctx, dest, bundle.ExportOptions{Full: true, Wordset: "nope"})
	require.Error(t, err)
	assert.Equal(t, errcode.ExportScopeError, errCode(t, err))

	_, err = exp.Export(ctx, dest, bundle.ExportOptions{Roots: []string{"nope"}})
	require.Error(t, err)

	_, err = os.Stat(dest)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExportLimits(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.TestConfig(t, config.OptLimitsExportMaxFiles(1))
	st := iotesting.NewStore(t, cfg)
	seed(t, st)
	dest := filepath.Join(t.TempDir(), "out.zip")

	_, err := ioexport.New(st, cfg).Export(ctx, dest, bundle.ExportOptions{})
	require.Error(t, err)
	assert.Equal(t, errcode.ExportLimitError, errCode(t, err))
	_, err = os.Stat(dest)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExportImportIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.TestConfig(t)
	st := iotesting.NewStore(t, cfg)
	seed(t, st)

	dest := filepath.Join(t.TempDir(), "all.zip")
	_, err := ioexport.New(st, cfg).Export(ctx, dest, bundle.ExportOptions{
		Full:    true,
		Wordset: "basic",
	})
	require.NoError(t, err)

	imp := ioimport.New(st, nil, cfg)
	res, err := imp.Import(ctx, dest, bundle.ImportOptions{})
	require.NoError(t, err)
	assert.True(t, res.OK, res.Errors)
	assert.True(t, res.Undo.IsEmpty())
	assert.Equal(t, bundle.Count{Updated: 3}, res.Counts.Categories)
	assert.Equal(t, bundle.Count{Updated: 2}, res.Counts.WordImages)
	assert.Equal(t, bundle.Count{Updated: 2}, res.Counts.Words)
	assert.Equal(t, bundle.Count{Updated: 1}, res.Counts.Audio)

	items, err := st.ListItems(ctx, content.ItemQuery{Type: content.Word})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
