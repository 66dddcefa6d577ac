package iotabular_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gnames/gnbundle/internal/iotabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

func TestDecodeTextBOM(t *testing.T) {
	src := "Image File,Answer\r\nkot.png,Кот\r\n"
	want := "Image File,Answer\nkot.png,Кот\n"

	u16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).
		NewEncoder().String(src)
	require.NoError(t, err)
	u16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).
		NewEncoder().String(src)
	require.NoError(t, err)
	u32le, err := utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).
		NewEncoder().String(src)
	require.NoError(t, err)
	u32be, err := utf32.UTF32(utf32.BigEndian, utf32.UseBOM).
		NewEncoder().String(src)
	require.NoError(t, err)

	tests := []struct {
		msg, raw, enc string
	}{
		{"utf8 bom", "\xEF\xBB\xBF" + src, "UTF-8"},
		{"utf16le", u16le, "UTF-16LE"},
		{"utf16be", u16be, "UTF-16BE"},
		{"utf32le", u32le, "UTF-32LE"},
		{"utf32be", u32be, "UTF-32BE"},
		{"plain utf8", src, "UTF-8"},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, enc := iotabular.DecodeText([]byte(v.raw), nil)
			assert.Equal(t, want, res)
			assert.Equal(t, v.enc, enc)
		})
	}
}

func TestDecodeTextLegacy(t *testing.T) {
	src := "quiz;answer\ncafé;crème brûlée à la française\n"
	raw, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	res, enc := iotabular.DecodeText([]byte(raw), []string{"windows-1252"})
	assert.Equal(t, src, res)
	assert.NotEqual(t, "UTF-8", enc)
}

func TestDecodeTextNeverFails(t *testing.T) {
	raw := []byte("quiz,answer\nx,\x81\xe9\xff\n")
	res, enc := iotabular.DecodeText(raw, []string{"no-such-encoding"})
	assert.True(t, utf8.ValidString(res))
	assert.True(t, strings.HasPrefix(res, "quiz,answer\nx,"))
	assert.NotEmpty(t, enc)
}
