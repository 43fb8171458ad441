package themes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-livesite/internal/sites"
)

const bundleJSON = `{
	"name": "harbor",
	"version": "1.2.0",
	"description": "Harbor theme",
	"pageOrder": ["", "about"],
	"manifest": "design",
	"pages": {
		"": [{"id": "harbor-hero", "familyType": "hero", "variantName": "split", "data": {"content": {"title": "Harbor"}}}],
		"about": [{"id": "harbor-about", "familyType": "hero", "variantName": "centered"}]
	},
	"fallback": [{"id": "harbor-page", "familyType": "hero", "variantName": "centered"}]
}`

func TestParseBundle(t *testing.T) {
	bundle, err := ParseBundle(strings.NewReader(bundleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if bundle.Name != "harbor" || len(bundle.Pages) != 2 || len(bundle.Fallback) != 1 {
		t.Fatalf("unexpected bundle %+v", bundle)
	}
	if got := bundle.CanonicalPages(); len(got) != 2 || got[0] != "" {
		t.Fatalf("unexpected canonical pages %v", got)
	}
}

func TestParseBundleRejectsDuplicateIDs(t *testing.T) {
	doc := `{"name":"x","version":"1","pages":{"":[{"id":"a"},{"id":"a"}]}}`
	if _, err := ParseBundle(strings.NewReader(doc)); !errors.Is(err, ErrBundleInvalid) {
		t.Fatalf("expected ErrBundleInvalid, got %v", err)
	}
	if _, err := ParseBundle(strings.NewReader(`{"version":"1"}`)); !errors.Is(err, ErrThemeNameRequired) {
		t.Fatalf("expected ErrThemeNameRequired, got %v", err)
	}
}

func TestLoadBundleDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "harbor"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "harbor", BundleFileName), []byte(bundleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	bundles, err := LoadBundleDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != "harbor" {
		t.Fatalf("unexpected bundles %+v", bundles)
	}
	if want := filepath.Join(dir, "harbor", "design"); bundles[0].ManifestPath != want {
		t.Fatalf("manifest path = %q, want %q", bundles[0].ManifestPath, want)
	}
}

func TestCanonicalPagesWithoutOrder(t *testing.T) {
	bundle := &Bundle{Pages: map[string][]sites.ComponentRecord{"zeta": nil, "": nil, "about": nil}}
	if got, want := bundle.CanonicalPages(), []string{"", "about", "zeta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("canonical pages = %v, want %v", got, want)
	}
}

func TestBootstrapUpdatesExistingBundles(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBundleRepository()
	builtin := BuiltinBundles()
	if err := Bootstrap(ctx, repo, builtin); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	updated := cloneBundle(builtin[0])
	updated.Version = "1.1.0"
	if err := Bootstrap(ctx, repo, []*Bundle{updated}); err != nil {
		t.Fatalf("bootstrap again: %v", err)
	}

	got, err := repo.GetByName(ctx, "COASTAL")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version != "1.1.0" {
		t.Fatalf("expected updated version, got %s", got.Version)
	}
	list, _ := repo.List(ctx)
	if len(list) != 2 || list[0].Name != "coastal" || list[1].Name != "urban" {
		t.Fatalf("unexpected list %+v", list)
	}

	var nf *NotFoundError
	if _, err := repo.GetByName(ctx, "missing"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDesignTokensSkipBundlesWithoutManifest(t *testing.T) {
	tokens := NewDesignTokens(nil, "", "--site-")
	branding, err := tokens.Branding(&Bundle{Name: "plain", Version: "1"})
	if err != nil || branding != nil {
		t.Fatalf("expected no branding, got %v %v", branding, err)
	}
}
