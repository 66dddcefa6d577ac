package ioimport_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gnames/gnbundle/internal/iohistory"
	"github.com/gnames/gnbundle/internal/ioimport"
	"github.com/gnames/gnbundle/internal/iostore"
	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizCSV = "quiz,image,correct answer,wrong answer 1\n" +
	"Animals,cat.png,Cat,Dog\n" +
	"Animals,dog.png,Dog,Cat\n" +
	"Animals,emu.png,Emu,Cat\n"

func quizZip(t *testing.T) string {
	return quizZipWithCat(t, iotesting.PNG)
}

func quizZipWithCat(t *testing.T, cat []byte) string {
	return iotesting.WriteZip(t, filepath.Join(t.TempDir(), "animals.zip"),
		[]iotesting.Entry{
			{Name: "quiz.csv", Body: []byte(quizCSV)},
			{Name: "images/cat.png", Body: cat},
			{Name: "images/dog.png", Body: iotesting.JPEG},
		})
}

func setup(t *testing.T) (*iostore.Store, bundle.History, bundle.Importer, *config.Config) {
	cfg := iotesting.TestConfig(t)
	st := iotesting.NewStore(t, cfg)
	h := iohistory.New(st, st, cfg)
	return st, h, ioimport.New(st, h, cfg), cfg
}

func count(t *testing.T, st *iostore.Store, typ content.ItemType) int {
	t.Helper()
	items, err := st.ListItems(context.Background(), content.ItemQuery{Type: typ})
	require.NoError(t, err)
	return len(items)
}

func TestImportTabular(t *testing.T) {
	ctx := context.Background()
	st, h, imp, cfg := setup(t)

	res, err := imp.Import(ctx, quizZip(t), bundle.ImportOptions{Actor: "ann"})
	require.NoError(t, err)
	assert.True(t, res.OK, res.Errors)
	assert.Equal(t, 1, res.Counts.Categories.Created)
	assert.Equal(t, 2, res.Counts.Words.Created)
	assert.Equal(t, 2, res.Counts.WordImages.Created)
	assert.Equal(t, 2, res.Counts.Media.Created)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.RowsUsed)
	assert.Equal(t, 1, res.Summary.RowsSkipped)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "emu.png")

	cat, err := st.FindTerm(ctx, content.Category, "animals")
	require.NoError(t, err)
	assert.Equal(t, "image-prompt", cat.Meta.First(bundle.MetaQuizMode))

	list, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.HistoryID, list[0].ID)
	assert.Equal(t, "ann", list[0].Actor)
	assert.Equal(t, "animals.zip", list[0].Source)

	// work directories are removed
	entries, err := os.ReadDir(config.CacheDir(cfg.HomeDir))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportTwiceUndoSecond(t *testing.T) {
	ctx := context.Background()
	st, h, imp, _ := setup(t)
	archive := quizZip(t)

	first, err := imp.Import(ctx, archive, bundle.ImportOptions{})
	require.NoError(t, err)
	second, err := imp.Import(ctx, archive, bundle.ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, second.Counts.Words.Created)
	assert.Equal(t, first.Counts.Words.Created, second.Counts.Words.Updated)
	assert.True(t, second.Undo.IsEmpty())

	_, err = h.Undo(ctx, second.HistoryID, "ann")
	require.NoError(t, err)
	assert.Equal(t, first.Counts.Words.Created, count(t, st, content.Word))
	assert.Equal(t, first.Counts.WordImages.Created, count(t, st, content.WordImage))

	_, err = h.Undo(ctx, first.HistoryID, "ann")
	require.NoError(t, err)
	assert.Zero(t, count(t, st, content.Word))
	assert.Zero(t, count(t, st, content.WordImage))
	cats, err := st.ListTerms(ctx, content.Category)
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestImportUnsafeArchive(t *testing.T) {
	ctx := context.Background()
	st, h, imp, _ := setup(t)
	archive := iotesting.WriteZip(t, filepath.Join(t.TempDir(), "bad.zip"),
		[]iotesting.Entry{
			{Name: "quiz.csv", Body: []byte(quizCSV)},
			{Name: "../evil.png", Body: iotesting.PNG},
		})

	_, err := imp.Import(ctx, archive, bundle.ImportOptions{})
	require.Error(t, err)
	assert.Zero(t, count(t, st, content.Word))
	list, err := h.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportAssignNeedsWordset(t *testing.T) {
	_, _, imp, _ := setup(t)
	_, err := imp.Import(context.Background(), quizZip(t), bundle.ImportOptions{
		WordsetMode: bundle.WordsetModeAssign,
	})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	st, _, imp, _ := setup(t)
	archive := quizZip(t)

	p, err := imp.Preview(ctx, archive)
	require.NoError(t, err)
	assert.Equal(t, bundle.OriginTabular, p.Origin)
	assert.Equal(t, 2, p.Counts.Words.Created)
	assert.Equal(t, 1, p.Counts.Categories.Created)
	assert.Zero(t, count(t, st, content.Word))

	_, err = imp.Import(ctx, archive, bundle.ImportOptions{})
	require.NoError(t, err)
	p, err = imp.Preview(ctx, archive)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Counts.Words.Updated)
}

func TestImportSlugTakenByOtherBundle(t *testing.T) {
	ctx := context.Background()
	st, h, imp, _ := setup(t)

	_, err := imp.Import(ctx, quizZip(t), bundle.ImportOptions{})
	require.NoError(t, err)
	animals, err := st.FindTerm(ctx, content.Category, "animals")
	require.NoError(t, err)
	cat, err := st.FindItem(ctx, content.Word, "cat", 0)
	require.NoError(t, err)
	catImage, err := st.FindItem(ctx, content.WordImage, "cat", 0)
	require.NoError(t, err)

	pets := iotesting.WriteZip(t, filepath.Join(t.TempDir(), "pets.zip"),
		[]iotesting.Entry{
			{Name: "pets.csv", Body: []byte("quiz,image,answer\nPets,tabby.png,Cat\n")},
			{Name: "images/tabby.png", Body: iotesting.WebP},
		})
	res, err := imp.Import(ctx, pets, bundle.ImportOptions{})
	require.NoError(t, err)
	assert.True(t, res.OK, res.Errors)
	assert.Equal(t, 1, res.Counts.Words.Created)
	assert.Zero(t, res.Counts.Words.Updated)
	assert.Equal(t, 1, res.Counts.WordImages.Created)
	assert.Equal(t, 3, count(t, st, content.Word))

	tabby, err := st.FindItem(ctx, content.Word, "cat-2", 0)
	require.NoError(t, err)
	assert.Equal(t, "Cat", tabby.Title)
	tabbyImage, err := st.FindItem(ctx, content.WordImage, "cat-2", 0)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(tabbyImage.ID, 10),
		tabby.Meta.First(bundle.MetaWordImageID))

	// the first bundle's items are untouched
	cats, err := st.ItemTerms(ctx, cat.ID, content.Category)
	require.NoError(t, err)
	assert.Equal(t, []int64{animals.ID}, cats)
	got, err := st.ItemByID(ctx, catImage.ID)
	require.NoError(t, err)
	assert.Equal(t, catImage.FeaturedMediaID, got.FeaturedMediaID)

	// the same bundle again maps onto its own items
	again, err := imp.Import(ctx, pets, bundle.ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, again.Counts.Words.Created)
	assert.Equal(t, 1, again.Counts.Words.Updated)
	assert.Equal(t, 3, count(t, st, content.Word))

	_, err = h.Undo(ctx, res.HistoryID, "ann")
	require.NoError(t, err)
	assert.Equal(t, 2, count(t, st, content.Word))
	_, err = st.ItemByID(ctx, cat.ID)
	assert.NoError(t, err)
	cats, err = st.ItemTerms(ctx, cat.ID, content.Category)
	require.NoError(t, err)
	assert.Equal(t, []int64{animals.ID}, cats)
}

func TestUndoRestoresFeaturedMedia(t *testing.T) {
	ctx := context.Background()
	st, h, imp, _ := setup(t)

	_, err := imp.Import(ctx, quizZip(t), bundle.ImportOptions{})
	require.NoError(t, err)
	before, err := st.FindItem(ctx, content.WordImage, "cat", 0)
	require.NoError(t, err)
	require.NotZero(t, before.FeaturedMediaID)

	bigger := append(append([]byte{}, iotesting.PNG...), 0, 0, 0)
	res, err := imp.Import(ctx, quizZipWithCat(t, bigger), bundle.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counts.WordImages.Updated)
	assert.Equal(t, 1, res.Counts.Media.Created)
	require.Equal(t,
		[]bundle.FeaturedLink{{ItemID: before.ID, MediaID: before.FeaturedMediaID}},
		res.Undo.Featured)

	replaced, err := st.ItemByID(ctx, before.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.FeaturedMediaID, replaced.FeaturedMediaID)

	_, err = h.Undo(ctx, res.HistoryID, "ann")
	require.NoError(t, err)
	after, err := st.ItemByID(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, before.FeaturedMediaID, after.FeaturedMediaID)
	_, err = st.MediaByID(ctx, replaced.FeaturedMediaID)
	assert.ErrorIs(t, err, content.ErrNotFound)
}
