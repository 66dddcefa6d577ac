package ioload_test

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/ioload"
	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	return gnErr.Code
}

func TestLoadNative(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "manifest.json", []byte(`{
  "categories": [{"slug": "cats", "name": "Cats"}],
  "word_images": [
    {"slug": "cat", "title": "Cat",
     "featured_image": {"path": "./media//1-cat.png"}},
    {"slug": "lion", "title": "Lion",
     "featured_image": {"path": "media/2-lion.png"}}
  ]
}`))
	iotesting.WriteFile(t, root, "media/1-cat.png", iotesting.PNG)
	// tabular files are ignored when the manifest is present
	iotesting.WriteFile(t, root, "words.csv", []byte("quiz,prompt,answer\nA,b,c\n"))

	p, err := ioload.Load(root, ioload.Options{})
	require.NoError(t, err)
	assert.Equal(t, bundle.OriginNative, p.Origin)
	assert.Equal(t, root, p.Root)
	assert.Nil(t, p.Summary)
	assert.Equal(t, "media/1-cat.png", p.Manifest.WordImages[0].FeaturedImage.Path)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "media/2-lion.png")
}

func TestLoadNativeErrors(t *testing.T) {
	tests := []struct {
		msg, json string
		code      gn.ErrorCode
	}{
		{"missing keys", `{"categories": []}`, errcode.PayloadMalformedError},
		{"old version",
			`{"version": "v0.1.0", "categories": [], "word_images": []}`,
			errcode.PayloadVersionError},
		{"unsafe media",
			`{"categories": [], "word_images": [
			  {"slug": "x", "featured_image": {"path": "../../etc/passwd"}}]}`,
			errcode.PayloadMalformedError},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			root := t.TempDir()
			iotesting.WriteFile(t, root, "manifest.json", []byte(v.json))
			_, err := ioload.Load(root, ioload.Options{})
			require.Error(t, err)
			assert.Equal(t, v.code, errCode(t, err))
		})
	}
}

func TestLoadTabular(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "words.csv", []byte(
		"quiz,prompt,answer\nGreetings,Hola,Hello\n",
	))
	p, err := ioload.Load(root, ioload.Options{BundleName: "spanish.zip"})
	require.NoError(t, err)
	assert.Equal(t, bundle.OriginTabular, p.Origin)
	require.NotNil(t, p.Summary)
	assert.Equal(t, 1, p.Summary.RowsUsed)
	assert.Equal(t, "spanish", p.Manifest.Wordsets[0].Slug)
}

func TestLoadNoPayload(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "images/cat.png", iotesting.PNG)
	iotesting.WriteFile(t, root, "notes.txt", []byte("just notes\n"))

	_, err := ioload.Load(root, ioload.Options{})
	require.Error(t, err)
	assert.Equal(t, errcode.PayloadNotFoundError, errCode(t, err))
}
