package iotesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Minimal file bodies recognised by type sniffing.
var (
	PNG  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	JPEG = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	WebP = []byte("RIFF\x1a\x00\x00\x00WEBPVP8 \x0e\x00\x00\x00\x30\x01\x00\x9d\x01\x2a\x01\x00\x01\x00")
	MP3  = []byte("ID3\x03\x00\x00\x00\x00\x00\x0a\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\xff\xfb\x90\x00")
)

// Entry is a file of a test archive.
type Entry struct {
	Name string
	Body []byte
	// Dir makes a directory entry, Body is ignored.
	Dir bool
}

// WriteFile writes a file under root creating parent directories.
func WriteFile(t *testing.T, root, rel string, body []byte) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// WriteZip creates a zip archive with entries in the given order.
// Entry names are written as is, so unsafe names can be tested.
func WriteZip(t *testing.T, path string, entries []Entry) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		name := e.Name
		if e.Dir {
			name += "/"
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			t.Fatalf("Failed to add %s: %v", e.Name, err)
		}
		if e.Dir {
			continue
		}
		if _, err = w.Write(e.Body); err != nil {
			t.Fatalf("Failed to write %s: %v", e.Name, err)
		}
	}
	if err = zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return path
}
