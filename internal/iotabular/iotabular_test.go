package iotabular_test

import (
	"testing"

	"github.com/gnames/gnbundle/internal/iomedia"
	"github.com/gnames/gnbundle/internal/iotabular"
	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func parse(t *testing.T, root string, opts iotabular.Options) *iotabular.Result {
	t.Helper()
	cat, err := iomedia.Build(root, func(rel string) bool {
		return iotabular.IsTabular(rel)
	})
	require.NoError(t, err)
	res, err := iotabular.Parse(root, cat, opts)
	require.NoError(t, err)
	return res
}

// TestParseImagePrompt: three rows, one image is missing.
func TestParseImagePrompt(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "words.csv", []byte(
		"quiz,image,correct answer,wrong answer 1\n"+
			"Animals,cat.png,Cat,Dog\n"+
			"Animals,dog.png,Dog,Cat\n"+
			"Animals,owl.png,Owl,Cat\n",
	))
	iotesting.WriteFile(t, root, "images/cat.png", iotesting.PNG)
	iotesting.WriteFile(t, root, "images/dog.png", iotesting.PNG)

	res := parse(t, root, iotabular.Options{BundleName: "animals.zip"})
	require.NotNil(t, res.Manifest)
	m := res.Manifest

	require.Len(t, m.Categories, 1)
	assert.Equal(t, "animals", m.Categories[0].Slug)
	assert.Equal(t, iotabular.ModeImagePrompt,
		m.Categories[0].Meta.First(bundle.MetaQuizMode))

	require.Len(t, m.Words, 2)
	require.Len(t, m.WordImages, 2)
	assert.Equal(t, "cat", m.Words[0].Slug)
	assert.Equal(t, "cat", m.Words[0].WordImage)
	assert.Equal(t, []string{"Dog"}, m.Words[0].Meta[bundle.MetaWrongAnswerTexts])
	assert.Equal(t, "images/cat.png", m.WordImages[0].FeaturedImage.Path)
	assert.Equal(t, []string{"animals"}, m.Words[0].Wordsets)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "owl.png")
	assert.Contains(t, res.Warnings[0], "words.csv row 4")

	assert.Equal(t, 1, res.Summary.FilesFound)
	assert.Equal(t, 1, res.Summary.FilesUsed)
	assert.Equal(t, 3, res.Summary.RowsNonEmpty)
	assert.Equal(t, 2, res.Summary.RowsUsed)
	assert.Equal(t, 1, res.Summary.RowsSkipped)
	assert.Equal(t, 2, m.MediaEstimate.Files)
}

func TestParseUTF16(t *testing.T) {
	root := t.TempDir()
	text := "Quiz;Image File;Answer\r\nЖивотные;kot.png;Кот\r\n"
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).
		NewEncoder().String(text)
	require.NoError(t, err)
	iotesting.WriteFile(t, root, "words.csv", []byte(raw))
	iotesting.WriteFile(t, root, "images/kot.webp", iotesting.WebP)

	res := parse(t, root, iotabular.Options{})
	require.NotNil(t, res.Manifest)
	require.Len(t, res.Manifest.Words, 1)
	w := res.Manifest.Words[0]
	assert.Equal(t, "Кот", w.Title)
	assert.Equal(t, "кот", w.Slug)
	assert.Equal(t, "Животные", res.Manifest.Categories[0].Name)
	assert.Equal(t, iotabular.ModeTextToImage,
		res.Manifest.Categories[0].Meta.First(bundle.MetaQuizMode))
	assert.Equal(t, "images/kot.webp", res.Manifest.WordImages[0].FeaturedImage.Path)
	assert.Empty(t, res.Warnings)
}

// TestParseMergeFiles: the same category, answer and image in two
// files make one word with unioned wrong answers.
func TestParseMergeFiles(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "a.csv", []byte(
		"quiz,image,answer,wrong answer 1,wrong answer 2\n"+
			"Cafe,coffee.png,Café,Tea,Crème\n",
	))
	iotesting.WriteFile(t, root, "b.tsv", []byte(
		"quiz\timage\tanswer\twrong answer\n"+
			"Cafe\tcoffee.png\tcafe\tcreme\n"+
			"Cafe\tcoffee.png\tCAFE\tJuice\n",
	))
	iotesting.WriteFile(t, root, "images/coffee.png", iotesting.PNG)

	res := parse(t, root, iotabular.Options{})
	require.NotNil(t, res.Manifest)
	require.Len(t, res.Manifest.Words, 1)
	w := res.Manifest.Words[0]
	assert.Equal(t, "Café", w.Title, "first spelling is kept")
	assert.Equal(t, []string{"Tea", "Crème", "Juice"},
		w.Meta[bundle.MetaWrongAnswerTexts])
	assert.Equal(t, 2, res.Summary.FilesUsed)
	assert.Equal(t, 3, res.Summary.RowsUsed)
}

// TestParsePromptIdentity: the same answer with different prompts stays
// separate and gets unique slugs.
func TestParsePromptIdentity(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "text.csv", []byte(
		"quiz,prompt,answer,wrong answer\n"+
			"Greetings,Hola,Hello,Bye\n"+
			"Greetings,Bonjour,Hello,Night\n"+
			"Greetings,hola ,hello,Morning\n",
	))
	res := parse(t, root, iotabular.Options{})
	require.NotNil(t, res.Manifest)
	words := res.Manifest.Words
	require.Len(t, words, 2)
	assert.Equal(t, "hello", words[0].Slug)
	assert.Equal(t, "hello-2", words[1].Slug)
	assert.Equal(t, "Hola", words[0].Content)
	assert.Equal(t, []string{"Hola"}, words[0].Meta[bundle.MetaPromptText])
	assert.Equal(t, []string{"Bye", "Morning"},
		words[0].Meta[bundle.MetaWrongAnswerTexts])
	assert.Empty(t, res.Manifest.WordImages)
}

func TestParseAudio(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "audio.csv", []byte(
		"quiz|audio|answer\nSounds|kot.wav|kot\nSounds||pies\n",
	))
	iotesting.WriteFile(t, root, "audio/kot.mp3", iotesting.MP3)

	res := parse(t, root, iotabular.Options{})
	require.NotNil(t, res.Manifest)
	require.Len(t, res.Manifest.Words, 1)
	w := res.Manifest.Words[0]
	require.Len(t, w.AudioEntries, 1)
	assert.Equal(t, "audio/kot.mp3", w.AudioEntries[0].AudioFile.Path)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "missing audio")
}

func TestParseModeConflict(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "1.csv", []byte(
		"quiz,prompt,answer\nMixed,Hola,Hello\n",
	))
	iotesting.WriteFile(t, root, "2.csv", []byte(
		"quiz,image,answer\nMixed,cat.png,Cat\n",
	))
	iotesting.WriteFile(t, root, "3.csv", []byte("name,notes\nx,y\n"))
	iotesting.WriteFile(t, root, "images/cat.png", iotesting.PNG)

	res := parse(t, root, iotabular.Options{})
	require.NotNil(t, res.Manifest)
	assert.Len(t, res.Manifest.Words, 1)
	assert.Equal(t, 3, res.Summary.FilesFound)
	assert.Equal(t, 2, res.Summary.FilesUsed)
	assert.Equal(t, 1, res.Summary.FilesSkipped)
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "already uses mode text-to-text")
	assert.Contains(t, res.Warnings[1], "3.csv")
}

func TestParseWarningCap(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "w.csv", []byte(
		"quiz,prompt,answer\n"+
			",a,b\n,c,d\n,e,f\n,g,h\nQ,i,j\n",
	))
	res := parse(t, root, iotabular.Options{MaxWarnings: 2})
	assert.Len(t, res.Warnings, 2)
	assert.Equal(t, 2, res.Summary.WarningsSuppressed)
	assert.Equal(t, 4, res.Summary.RowsSkipped)
	assert.Equal(t, 1, res.Summary.RowsUsed)
}

func TestParseNothingUsable(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "readme.txt", []byte("hello there\n"))
	res := parse(t, root, iotabular.Options{})
	assert.Nil(t, res.Manifest)
	assert.Equal(t, 1, res.Summary.FilesSkipped)
}
