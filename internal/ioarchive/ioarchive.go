// Package ioarchive reads and writes bundle zip archives. Extraction
// validates the whole archive first: entry count, declared sizes and
// every entry path are checked before anything is written, and each
// written file must stay under the extraction root.
package ioarchive

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Limits are the extraction budgets.
type Limits struct {
	// MaxEntries is the maximum number of archive entries.
	MaxEntries int
	// MaxBytes is the maximum cumulative declared uncompressed size.
	MaxBytes int64
}

// Open opens a zip archive from a file.
func Open(path string) (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, OpenError(filepath.Base(path), err)
	}
	return zr, nil
}

// ExtractFile opens the archive at path and extracts it into dest.
func ExtractFile(path, dest string, lim Limits) error {
	zr, err := Open(path)
	if err != nil {
		return err
	}
	defer zr.Close()
	return Extract(&zr.Reader, dest, lim)
}

type entry struct {
	file *zip.File
	rel  string
	dir  bool
}

// Extract writes all entries of zr under dest. Any failure aborts the
// extraction, the caller removes dest.
func Extract(zr *zip.Reader, dest string, lim Limits) error {
	if lim.MaxEntries > 0 && len(zr.File) > lim.MaxEntries {
		return TooManyEntriesError(len(zr.File), lim.MaxEntries)
	}

	root, err := filepath.Abs(dest)
	if err != nil {
		return ExtractError("", err)
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return ExtractError("", err)
	}

	var total uint64
	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		size := f.UncompressedSize64
		if size > math.MaxInt64 {
			return NegativeSizeError(f.Name)
		}
		total += size
		if lim.MaxBytes > 0 && total > uint64(lim.MaxBytes) {
			return TooLargeError(lim.MaxBytes)
		}
		if f.Mode()&os.ModeSymlink != 0 {
			return UnsafeEntryError(f.Name, "symbolic link")
		}
		rel, err := CleanEntryPath(f.Name)
		if err != nil {
			return err
		}
		if _, err = resolve(root, rel); err != nil {
			return err
		}
		entries = append(entries, entry{
			file: f,
			rel:  rel,
			dir:  f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/"),
		})
	}

	for _, e := range entries {
		if err = extractEntry(root, e); err != nil {
			return err
		}
	}
	return nil
}

// CleanEntryPath normalises an archive entry name into a slash
// separated relative path. Backslashes are separators, "." and empty
// segments are dropped. Empty names, NUL bytes, absolute and drive
// letter paths and ".." segments are rejected.
func CleanEntryPath(name string) (string, error) {
	if name == "" {
		return "", UnsafeEntryError(name, "empty path")
	}
	if strings.ContainsRune(name, 0) {
		return "", UnsafeEntryError(name, "NUL byte")
	}
	p := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(p, "/") {
		return "", UnsafeEntryError(name, "absolute path")
	}
	if len(p) >= 2 && p[1] == ':' && isASCIILetter(p[0]) {
		return "", UnsafeEntryError(name, "drive letter")
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		switch s {
		case "", ".":
			continue
		case "..":
			return "", UnsafeEntryError(name, "parent directory segment")
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return "", UnsafeEntryError(name, "empty path")
	}
	return strings.Join(segs, "/"), nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// resolve joins rel to root and verifies the result is under root.
// Existing parts of the path are resolved through symlinks.
func resolve(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !within(root, target) {
		return "", UnsafeEntryError(rel, "outside of extraction root")
	}

	// Evaluate the deepest existing ancestor, a symlink planted in the
	// root must not lead outside.
	dir := target
	for {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", ExtractError(rel, err)
	}
	if !within(root, resolved) {
		return "", UnsafeEntryError(rel, "outside of extraction root")
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." ||
		(rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func extractEntry(root string, e entry) error {
	target, err := resolve(root, e.rel)
	if err != nil {
		return err
	}
	if e.dir {
		if err = os.MkdirAll(target, 0755); err != nil {
			return ExtractError(e.rel, err)
		}
		return nil
	}

	if err = os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return ExtractError(e.rel, err)
	}
	// parent directories are created now, check once more
	if _, err = resolve(root, e.rel); err != nil {
		return err
	}

	rc, err := e.file.Open()
	if err != nil {
		return ExtractError(e.rel, err)
	}
	defer rc.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return ExtractError(e.rel, err)
	}

	size := int64(e.file.UncompressedSize64)
	n, err := io.Copy(dst, io.LimitReader(rc, size+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ExtractError(e.rel, err)
	}
	if n > size {
		return SizeMismatchError(e.rel, size)
	}
	return nil
}
