package ioarchive_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/internal/iotesting"
	"github.com/gnames/gnbundle/pkg/errcode"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lim = ioarchive.Limits{MaxEntries: 100, MaxBytes: 1 << 20}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr), "expected gn.Error, got %v", err)
	return gnErr.Code
}

func TestCleanEntryPath(t *testing.T) {
	tests := []struct {
		msg, in, out string
		ok           bool
	}{
		{"plain", "images/cat.png", "images/cat.png", true},
		{"dot segments", "./images/./cat.png", "images/cat.png", true},
		{"double slash", "images//cat.png", "images/cat.png", true},
		{"backslash", `images\cat.png`, "images/cat.png", true},
		{"dir", "images/", "images", true},
		{"dots in name", "..cat.png", "..cat.png", true},
		{"empty", "", "", false},
		{"only dots", "./.", "", false},
		{"nul", "cat\x00.png", "", false},
		{"absolute", "/etc/passwd", "", false},
		{"absolute backslash", `\windows\system.ini`, "", false},
		{"drive", "C:/boot.ini", "", false},
		{"drive relative", "c:boot.ini", "", false},
		{"parent", "../evil.txt", "", false},
		{"inner parent", "images/../../evil.txt", "", false},
		{"backslash parent", `images\..\..\evil.txt`, "", false},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := ioarchive.CleanEntryPath(v.in)
			if !v.ok {
				require.Error(t, err)
				assert.Equal(t, errcode.ArchiveUnsafeEntryError, errCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, v.out, res)
		})
	}
}

func TestExtract(t *testing.T) {
	tmp := t.TempDir()
	zipPath := iotesting.WriteZip(t, filepath.Join(tmp, "ok.zip"), []iotesting.Entry{
		{Name: "images", Dir: true},
		{Name: "images/cat.png", Body: iotesting.PNG},
		{Name: `audio\kot.mp3`, Body: iotesting.MP3},
		{Name: "./words.csv", Body: []byte("quiz,image\n")},
	})
	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.Mkdir(dest, 0755))

	err := ioarchive.ExtractFile(zipPath, dest, lim)
	require.NoError(t, err)

	for _, rel := range []string{"images/cat.png", "audio/kot.mp3", "words.csv"} {
		_, err = os.Stat(filepath.Join(dest, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
	body, err := os.ReadFile(filepath.Join(dest, "images", "cat.png"))
	require.NoError(t, err)
	assert.Equal(t, iotesting.PNG, body)
}

// TestExtractZipSlip checks that an unsafe entry anywhere in the archive
// rejects the archive before any file is written.
func TestExtractZipSlip(t *testing.T) {
	bad := []string{
		"../evil.txt",
		"images/../../evil.txt",
		"/tmp/evil.txt",
		"C:/evil.txt",
		"evil\x00.txt",
	}
	for _, name := range bad {
		t.Run(name, func(t *testing.T) {
			tmp := t.TempDir()
			zipPath := iotesting.WriteZip(t, filepath.Join(tmp, "bad.zip"),
				[]iotesting.Entry{
					{Name: "first.txt", Body: []byte("first")},
					{Name: name, Body: []byte("evil")},
				})
			dest := filepath.Join(tmp, "out")
			require.NoError(t, os.Mkdir(dest, 0755))

			err := ioarchive.ExtractFile(zipPath, dest, lim)
			require.Error(t, err)
			assert.Equal(t, errcode.ArchiveUnsafeEntryError, errCode(t, err))

			files, err := os.ReadDir(dest)
			require.NoError(t, err)
			assert.Empty(t, files, "nothing is written")
			_, err = os.Stat(filepath.Join(tmp, "evil.txt"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestExtractSymlinkInRoot(t *testing.T) {
	tmp := t.TempDir()
	outside := filepath.Join(tmp, "outside")
	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.Mkdir(outside, 0755))
	require.NoError(t, os.Mkdir(dest, 0755))
	require.NoError(t, os.Symlink(outside, filepath.Join(dest, "link")))

	zipPath := iotesting.WriteZip(t, filepath.Join(tmp, "bad.zip"),
		[]iotesting.Entry{{Name: "link/evil.txt", Body: []byte("evil")}})

	err := ioarchive.ExtractFile(zipPath, dest, lim)
	require.Error(t, err)
	assert.Equal(t, errcode.ArchiveUnsafeEntryError, errCode(t, err))
	_, err = os.Stat(filepath.Join(outside, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractBudgets(t *testing.T) {
	tmp := t.TempDir()
	entries := []iotesting.Entry{
		{Name: "a.txt", Body: make([]byte, 600)},
		{Name: "b.txt", Body: make([]byte, 600)},
		{Name: "c.txt", Body: make([]byte, 600)},
	}
	zipPath := iotesting.WriteZip(t, filepath.Join(tmp, "big.zip"), entries)

	tests := []struct {
		msg string
		lim ioarchive.Limits
	}{
		{"entries", ioarchive.Limits{MaxEntries: 2, MaxBytes: 1 << 20}},
		{"bytes", ioarchive.Limits{MaxEntries: 10, MaxBytes: 1000}},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			dest := t.TempDir()
			err := ioarchive.ExtractFile(zipPath, dest, v.lim)
			require.Error(t, err)
			assert.Equal(t, errcode.ArchiveBudgetError, errCode(t, err))
			files, err := os.ReadDir(dest)
			require.NoError(t, err)
			assert.Empty(t, files)
		})
	}
}

func TestOpenError(t *testing.T) {
	path := iotesting.WriteFile(t, t.TempDir(), "not.zip", []byte("hello"))
	_, err := ioarchive.Open(path)
	require.Error(t, err)
	assert.Equal(t, errcode.ArchiveOpenError, errCode(t, err))
}

func TestWrite(t *testing.T) {
	tmp := t.TempDir()
	img := iotesting.WriteFile(t, tmp, "src/cat.png", iotesting.PNG)
	dest := filepath.Join(tmp, "bundle.zip")

	err := ioarchive.Write(dest, "manifest.json", []byte(`{"categories":[]}`),
		[]ioarchive.File{{ArchivePath: "media/5-cat.png", SourcePath: img}})
	require.NoError(t, err)

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.Equal(t, "manifest.json", zr.File[0].Name)
	assert.Equal(t, "media/5-cat.png", zr.File[1].Name)

	leftovers, err := filepath.Glob(filepath.Join(tmp, ".gnbundle-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriteMissingSource(t *testing.T) {
	tmp := t.TempDir()
	dest := filepath.Join(tmp, "bundle.zip")
	err := ioarchive.Write(dest, "manifest.json", []byte(`{}`),
		[]ioarchive.File{{ArchivePath: "media/x.png", SourcePath: "/nope/x.png"}})
	require.Error(t, err)
	assert.Equal(t, errcode.ArchiveWriteError, errCode(t, err))
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
}
