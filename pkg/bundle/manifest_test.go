package bundle_test

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/pkg/bundle"
	"github.com/gnames/gnbundle/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	tests := []struct {
		msg, json string
		code      gn.ErrorCode
		ok        bool
	}{
		{"minimal", `{"categories":[],"word_images":[]}`, 0, true},
		{"versioned", `{"version":"v1.2.0","categories":[],"word_images":[]}`,
			0, true},
		{"no categories", `{"word_images":[]}`,
			errcode.PayloadMalformedError, false},
		{"null word images", `{"categories":[],"word_images":null}`,
			errcode.PayloadMalformedError, false},
		{"not json", `categories`, errcode.PayloadMalformedError, false},
		{"old", `{"version":"v0.9.0","categories":[],"word_images":[]}`,
			errcode.PayloadVersionError, false},
		{"bad version", `{"version":"latest","categories":[],"word_images":[]}`,
			errcode.PayloadVersionError, false},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			m, err := bundle.ParseManifest([]byte(v.json))
			if v.ok {
				require.NoError(t, err)
				assert.NotNil(t, m)
				return
			}
			require.Error(t, err)
			var gnErr *gn.Error
			require.True(t, errors.As(err, &gnErr))
			assert.Equal(t, v.code, gnErr.Code)
		})
	}
}

func TestParseManifestContent(t *testing.T) {
	data := `{
  "version": "v1.0.0",
  "categories": [
    {"slug": "animals", "name": "Animals"},
    {"slug": "cats", "name": "Cats", "parent": "animals",
     "meta": {"_lb_quiz_mode": ["image-prompt"]}}
  ],
  "word_images": [
    {"source_id": 10, "slug": "cat", "title": "Cat",
     "categories": ["cats"],
     "featured_image": {"path": "media/10-cat.webp", "name": "cat.webp"}}
  ],
  "words": [
    {"source_id": 11, "slug": "kot", "title": "kot", "word_image": "cat",
     "audio_entries": [
       {"slug": "kot-1", "title": "kot",
        "audio_file": {"path": "media/12-kot.mp3"}}
     ]}
  ]
}`
	m, err := bundle.ParseManifest([]byte(data))
	require.NoError(t, err)
	assert.Len(t, m.Categories, 2)
	assert.Equal(t, "animals", m.Categories[1].Parent)
	assert.Equal(t, "image-prompt",
		m.Categories[1].Meta.First("_lb_quiz_mode"))
	assert.True(t, m.HasFullContent())

	files := m.MediaFiles()
	require.Len(t, files, 2)
	assert.Equal(t, "media/10-cat.webp", files[0].Path)
	assert.Equal(t, "media/12-kot.mp3", files[1].Path)
}
