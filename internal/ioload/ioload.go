// Package ioload turns an extracted bundle into a payload: the native
// manifest when the archive carries one, otherwise a manifest built
// from tabular files and media.
package ioload

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gnbundle/internal/ioarchive"
	"github.com/gnames/gnbundle/internal/iomedia"
	"github.com/gnames/gnbundle/internal/iotabular"
	"github.com/gnames/gnbundle/pkg/bundle"
)

// Options configure Load.
type Options struct {
	LegacyEncodings []string
	MaxWarnings     int
	// BundleName is the archive file name.
	BundleName string
}

// Load reads the payload from an extraction root.
func Load(root string, opts Options) (*bundle.Payload, error) {
	path := filepath.Join(root, bundle.ManifestFile)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return loadNative(root, data)
	case !errors.Is(err, os.ErrNotExist):
		return nil, ReadManifestError(err)
	}
	return loadTabular(root, opts)
}

func loadNative(root string, data []byte) (*bundle.Payload, error) {
	m, err := bundle.ParseManifest(data)
	if err != nil {
		return nil, err
	}

	res := &bundle.Payload{Manifest: m, Origin: bundle.OriginNative, Root: root}
	for _, f := range m.MediaFiles() {
		rel, err := ioarchive.CleanEntryPath(f.Path)
		if err != nil {
			return nil, UnsafeMediaPathError(f.Path)
		}
		f.Path = rel
		if _, err = os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			res.Warnings = append(res.Warnings,
				"media file "+rel+" is missing from the archive")
		}
	}
	slog.Info("Loaded native manifest",
		"version", m.Version,
		"categories", len(m.Categories),
		"word_images", len(m.WordImages),
		"words", len(m.Words),
	)
	return res, nil
}

func loadTabular(root string, opts Options) (*bundle.Payload, error) {
	cat, err := iomedia.Build(root, func(rel string) bool {
		return rel == bundle.ManifestFile || iotabular.IsTabular(rel)
	})
	if err != nil {
		return nil, CatalogError(err)
	}

	tab, err := iotabular.Parse(root, cat, iotabular.Options{
		LegacyEncodings: opts.LegacyEncodings,
		MaxWarnings:     opts.MaxWarnings,
		BundleName:      opts.BundleName,
	})
	if err != nil {
		return nil, CatalogError(err)
	}
	if tab.Manifest == nil {
		return nil, NoPayloadError(tab.Summary.FilesFound, tab.Warnings)
	}

	summary := tab.Summary
	return &bundle.Payload{
		Manifest: tab.Manifest,
		Origin:   bundle.OriginTabular,
		Root:     root,
		Warnings: tab.Warnings,
		Summary:  &summary,
	}, nil
}
