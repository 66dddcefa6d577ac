package ioarchive

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// File is a file to put into an archive.
type File struct {
	// ArchivePath is the slash separated path inside the archive.
	ArchivePath string
	// SourcePath is the file on disk.
	SourcePath string
}

// Write creates a zip archive at dest with the manifest at the root
// and the given files. The archive is written to a temporary file next
// to dest and renamed on success, so dest is either complete or
// untouched.
func Write(dest, manifestName string, manifest []byte, files []File) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".gnbundle-*.zip")
	if err != nil {
		return WriteError(dest, err)
	}
	tmpName := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	now := time.Now()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     manifestName,
		Method:   zip.Deflate,
		Modified: now,
	})
	if err != nil {
		return WriteError(dest, err)
	}
	if _, err = w.Write(manifest); err != nil {
		return WriteError(dest, err)
	}

	for _, f := range files {
		if err = addFile(zw, f, now); err != nil {
			return WriteError(dest, err)
		}
	}

	if err = zw.Close(); err != nil {
		return WriteError(dest, err)
	}
	if err = tmp.Close(); err != nil {
		return WriteError(dest, err)
	}
	if err = os.Rename(tmpName, dest); err != nil {
		return WriteError(dest, err)
	}
	ok = true
	return nil
}

// addFile stores media without compression, they are compressed
// formats already.
func addFile(zw *zip.Writer, f File, mod time.Time) error {
	src, err := os.Open(f.SourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.ArchivePath,
		Method:   zip.Store,
		Modified: mod,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
