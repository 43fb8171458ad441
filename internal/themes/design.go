package themes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// ManifestLoader loads a design manifest from a theme directory.
type ManifestLoader interface {
	Load(manifestPath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(manifestPath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(manifestPath))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("themes: manifest path required")
	}
	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// DesignTokens resolves the design tokens of a bundle from its manifest.
type DesignTokens struct {
	registry       *gotheme.MemoryRegistry
	loader         ManifestLoader
	defaultVariant string
	cssPrefix      string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

// NewDesignTokens constructs a token resolver. A nil loader reads manifests
// from the filesystem.
func NewDesignTokens(loader ManifestLoader, defaultVariant, cssPrefix string) *DesignTokens {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	return &DesignTokens{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultVariant: strings.TrimSpace(defaultVariant),
		cssPrefix:      cssPrefix,
		manifests:      map[string]*gotheme.Manifest{},
	}
}

// Branding returns the branding entries contributed by the bundle manifest:
// "tokens" and "cssVariables". Bundles without a manifest contribute nothing.
func (d *DesignTokens) Branding(bundle *Bundle) (map[string]any, error) {
	if d == nil || bundle == nil || strings.TrimSpace(bundle.ManifestPath) == "" {
		return nil, nil
	}
	if err := d.ensureManifest(bundle); err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       d.registry,
		DefaultTheme:   bundle.Name,
		DefaultVariant: d.defaultVariant,
	}
	selection, err := selector.Select(bundle.Name, d.defaultVariant)
	if err != nil {
		return nil, fmt.Errorf("themes: select design %s: %w", bundle.Name, err)
	}

	tokens := map[string]any{}
	for key, value := range selection.Tokens() {
		tokens[key] = value
	}
	vars := map[string]any{}
	for key, value := range selection.CSSVariables(d.cssPrefix) {
		vars[key] = value
	}
	return map[string]any{"tokens": tokens, "cssVariables": vars}, nil
}

func (d *DesignTokens) ensureManifest(bundle *Bundle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := canonicalKey(bundle.Name)
	if _, ok := d.manifests[key]; ok {
		return nil
	}

	manifest, err := d.loader.Load(bundle.ManifestPath)
	if err != nil {
		return fmt.Errorf("themes: load design manifest from %s: %w", bundle.ManifestPath, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, bundle.Name) {
		normalized.Name = strings.TrimSpace(bundle.Name)
	}
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = strings.TrimSpace(bundle.Version)
	}
	if err := d.registry.Register(&normalized); err != nil {
		return fmt.Errorf("themes: register design manifest: %w", err)
	}
	d.manifests[key] = &normalized
	return nil
}
