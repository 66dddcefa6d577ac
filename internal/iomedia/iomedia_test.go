package iomedia_test

import (
	"strings"
	"testing"

	"github.com/gnames/gnbundle/internal/iomedia"
	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefBase(t *testing.T) {
	tests := []struct{ msg, in, out string }{
		{"plain", "Cat.PNG", "cat.png"},
		{"dirs", "images/animals/cat.png", "cat.png"},
		{"backslash", `C:\pics\cat.png`, "cat.png"},
		{"url", "https://x.org/up/cat.png?w=300#top", "cat.png"},
		{"escaped", "big%20cat.png", "big cat.png"},
		{"spaces", "  cat.png ", "cat.png"},
	}
	for _, v := range tests {
		assert.Equal(t, v.out, iomedia.RefBase(v.in), v.msg)
	}
}

func TestCatalogResolve(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "images/cat.png", iotesting.PNG)
	iotesting.WriteFile(t, root, "images/cat.webp", iotesting.WebP)
	iotesting.WriteFile(t, root, "images/sub/Dog.JPG", iotesting.JPEG)
	iotesting.WriteFile(t, root, "images/owl.jpeg", iotesting.JPEG)
	iotesting.WriteFile(t, root, "images/owl.png", iotesting.PNG)
	iotesting.WriteFile(t, root, "images/notes.png", []byte("not an image"))
	iotesting.WriteFile(t, root, "audios/kot.mp3", iotesting.MP3)

	cat, err := iomedia.Build(root, nil)
	require.NoError(t, err)
	assert.Equal(t, "images", cat.ImageDir)
	assert.Equal(t, "audios", cat.AudioDir)
	assert.Equal(t, 5, cat.Len(iomedia.Image))
	assert.Equal(t, 1, cat.Len(iomedia.Audio))

	tests := []struct {
		msg  string
		kind iomedia.Kind
		ref  string
		rel  string
		ok   bool
	}{
		{"exact", iomedia.Image, "cat.png", "images/cat.png", true},
		{"exact case", iomedia.Image, "CAT.WEBP", "images/cat.webp", true},
		{"nested", iomedia.Image, "dog.jpg", "images/sub/Dog.JPG", true},
		{"stem canonical", iomedia.Image, "cat.gif", "images/cat.webp", true},
		{"stem no ext", iomedia.Image, "cat", "images/cat.webp", true},
		{"stem preference", iomedia.Image, "owl.bmp", "images/owl.png", true},
		{"sniff failed", iomedia.Image, "notes.png", "", false},
		{"missing", iomedia.Image, "lion.png", "", false},
		{"audio stem", iomedia.Audio, "kot.wav", "audios/kot.mp3", true},
		{"audio not image", iomedia.Image, "kot.mp3", "", false},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			rel, ok := cat.Resolve(v.kind, v.ref)
			assert.Equal(t, v.ok, ok)
			assert.Equal(t, v.rel, rel)
			if ok {
				assert.NotEmpty(t, cat.Abs(rel))
			}
		})
	}
}

func TestCatalogAudioFallback(t *testing.T) {
	root := t.TempDir()
	iotesting.WriteFile(t, root, "words.csv", []byte("quiz,audio,answer\n"))
	iotesting.WriteFile(t, root, "kot.mp3", iotesting.MP3)
	iotesting.WriteFile(t, root, "sounds/pies.mp3", iotesting.MP3)
	iotesting.WriteFile(t, root, "images/kot.png", iotesting.PNG)

	exclude := func(rel string) bool {
		return strings.HasSuffix(rel, ".csv")
	}
	cat, err := iomedia.Build(root, exclude)
	require.NoError(t, err)
	assert.Equal(t, "", cat.AudioDir)

	rel, ok := cat.Resolve(iomedia.Audio, "kot.mp3")
	assert.True(t, ok)
	assert.Equal(t, "kot.mp3", rel)

	rel, ok = cat.Resolve(iomedia.Audio, "pies.ogg")
	assert.True(t, ok)
	assert.Equal(t, "sounds/pies.mp3", rel)

	// images are not audio even in fallback mode
	assert.Equal(t, 2, cat.Len(iomedia.Audio))
}
