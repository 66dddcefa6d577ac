package iotabular

import (
	"bytes"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gnames/gnlib"
	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var boms = []struct {
	prefix []byte
	name   string
	enc    encoding.Encoding
}{
	// UTF-32LE must be tested before UTF-16LE, they share a prefix.
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "UTF-32LE",
		utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "UTF-32BE",
		utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)},
	{[]byte{0xFF, 0xFE}, "UTF-16LE",
		unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)},
	{[]byte{0xFE, 0xFF}, "UTF-16BE",
		unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts raw file content to UTF-8 text and reports the
// source encoding. A byte order mark decides the encoding when present.
// Otherwise invalid UTF-8 is decoded with the detected charset, then
// with the legacy encodings, and finally with Latin-1, which always
// succeeds.
func DecodeText(raw []byte, legacy []string) (string, string) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return finish(string(raw[len(utf8BOM):])), "UTF-8"
	}
	for _, b := range boms {
		if !bytes.HasPrefix(raw, b.prefix) {
			continue
		}
		res, err := b.enc.NewDecoder().Bytes(raw)
		if err == nil {
			return finish(string(res)), b.name
		}
		slog.Debug("BOM decoding failed", "encoding", b.name, "error", err)
	}

	if utf8.Valid(raw) {
		return finish(string(raw)), "UTF-8"
	}

	for _, name := range candidates(raw, legacy) {
		enc, err := htmlindex.Get(name)
		if err != nil {
			continue
		}
		res, err := enc.NewDecoder().Bytes(raw)
		if err != nil || !clean(res) {
			continue
		}
		return finish(string(res)), name
	}

	res, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return finish(string(res)), "ISO-8859-1"
}

// candidates lists encodings to try: the detected charset first, then
// the configured legacy ones.
func candidates(raw []byte, legacy []string) []string {
	var res []string
	det, err := chardet.NewTextDetector().DetectBest(raw)
	if err == nil && det != nil && det.Charset != "" &&
		!strings.HasPrefix(strings.ToUpper(det.Charset), "UTF") {
		res = append(res, det.Charset)
	}
	return append(res, legacy...)
}

// clean rejects decodings that produced replacement or C1 control
// characters, a sign of the wrong code page.
func clean(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if r == utf8.RuneError || (r >= 0x80 && r <= 0x9F) {
			return false
		}
	}
	return true
}

func finish(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return gnlib.FixUtf8(s)
}
