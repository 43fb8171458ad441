package themes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// BundleFileName is the file LoadBundleDir looks for in each theme directory.
const BundleFileName = "bundle.json"

// LoadBundle reads and parses a bundle from disk. A relative manifest path is
// resolved against the bundle file directory.
func LoadBundle(path string) (*Bundle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open bundle: %w", err)
	}
	defer file.Close()

	bundle, err := ParseBundle(file)
	if err != nil {
		return nil, err
	}
	if bundle.ManifestPath != "" && !filepath.IsAbs(bundle.ManifestPath) {
		bundle.ManifestPath = filepath.Join(filepath.Dir(path), bundle.ManifestPath)
	}
	return bundle, nil
}

// ParseBundle decodes and validates bundle JSON from a reader.
func ParseBundle(r io.Reader) (*Bundle, error) {
	var bundle Bundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("themes: parse bundle: %w", err)
	}
	if err := ValidateBundle(&bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// LoadBundleDir loads every "<dir>/<theme>/bundle.json" in lexical order.
// Directories without a bundle file are skipped.
func LoadBundleDir(dir string) ([]*Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("themes: read bundle dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var bundles []*Bundle
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), BundleFileName)
		bundle, err := LoadBundle(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("themes: %s: %w", entry.Name(), err)
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}
