package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-livesite"
	"github.com/goliatone/go-livesite/internal/sites"
)

func TestRunCatalogListsHomepageFirst(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-tenant", "cli-catalog", "catalog"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	var pages []sites.PageDescriptor
	if err := json.Unmarshal(out.Bytes(), &pages); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(pages) == 0 || pages[0].Path != "/" {
		t.Fatalf("expected homepage first, got %+v", pages)
	}
}

func TestRunApplyThemeUsesCommandHandler(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-tenant", "cli-theme", "-theme", "coastal", "apply-theme"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	var snapshot sites.TenantSnapshot
	if err := json.Unmarshal(out.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if snapshot.SiteLayout.CurrentTheme != "coastal" {
		t.Fatalf("expected coastal theme, got %q", snapshot.SiteLayout.CurrentTheme)
	}
}

func TestRunResolveReturnsDefaults(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-tenant", "cli-resolve", "-family", "hero", "-instance", "hero-x", "resolve"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), `"variant": "split"`) {
		t.Fatalf("expected default variant in output, got %s", out.String())
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run([]string{"-tenant", "x", "publish"}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestRunLoadsConfigFile(t *testing.T) {
	original := moduleBuilder
	defer func() { moduleBuilder = original }()

	var loaded string
	moduleBuilder = func(path string) (*livesite.Module, error) {
		loaded = path
		return buildModule(path)
	}

	path := filepath.Join(t.TempDir(), "livesite.yaml")
	doc := "catalog:\n  static_pages:\n    - slug: contact\n      display_name: Contact\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	if err := run([]string{"-config", path, "-tenant", "cli-config", "catalog"}, &out); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if loaded != path {
		t.Fatalf("expected config path %q, got %q", path, loaded)
	}
	if !strings.Contains(out.String(), `"slug": "contact"`) {
		t.Fatalf("expected configured static page, got %s", out.String())
	}
}
