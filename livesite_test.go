package livesite_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-livesite"
	"github.com/goliatone/go-livesite/internal/commands"
	"github.com/goliatone/go-livesite/internal/session"
)

func TestModuleSessionLifecycle(t *testing.T) {
	module, err := livesite.New(livesite.DefaultConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	s, err := module.OpenSession(ctx, "facade-tenant")
	if err != nil {
		t.Fatalf("OpenSession returned error: %v", err)
	}

	home := ""
	if _, _, err := s.EnsureInstance(session.EnsureRequest{
		Page:       home,
		Family:     "hero",
		InstanceID: "hero-1",
		Seed:       map[string]any{"content": map[string]any{"title": "Welcome"}},
	}); err != nil {
		t.Fatalf("EnsureInstance returned error: %v", err)
	}

	resolved := s.Resolve(session.ResolveRequest{Page: &home, Family: "hero", InstanceID: "hero-1"})
	if resolved.Variant != "split" {
		t.Fatalf("expected default variant split, got %q", resolved.Variant)
	}
	if got := resolved.Content()["title"]; got != "Welcome" {
		t.Fatalf("expected registry title, got %v", got)
	}

	catalog := s.Catalog()
	if len(catalog) == 0 || catalog[0].Slug != "" {
		t.Fatalf("expected homepage first, got %+v", catalog)
	}

	bundles, err := module.Themes(ctx)
	if err != nil {
		t.Fatalf("Themes returned error: %v", err)
	}
	if len(bundles) < 2 {
		t.Fatalf("expected builtin bundles, got %d", len(bundles))
	}

	if _, err := s.ApplyTheme(ctx, "missing"); !errors.Is(err, livesite.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestModuleRegisterCommands(t *testing.T) {
	module, err := livesite.New(livesite.DefaultConfig())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer module.Close()

	unregister := module.RegisterCommands()
	defer unregister()

	ctx := context.Background()
	if err := dispatcher.Dispatch(ctx, commands.ApplyThemeCommand{TenantKey: "facade-commands", Theme: "urban"}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	s, err := module.OpenSession(ctx, "facade-commands")
	if err != nil {
		t.Fatalf("OpenSession returned error: %v", err)
	}
	snapshot, ok := s.Snapshot()
	if !ok || snapshot.SiteLayout.CurrentTheme != "urban" {
		t.Fatalf("expected urban applied through the dispatcher, got %+v", snapshot)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := livesite.LoadConfig(strings.NewReader("features:\n  metrics: true\n"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.Features.Metrics {
		t.Fatalf("expected metrics enabled")
	}

	_, err = livesite.LoadConfig(strings.NewReader("backend:\n  provider: redis\n"))
	if !errors.Is(err, livesite.ErrRedisURLRequired) {
		t.Fatalf("expected ErrRedisURLRequired, got %v", err)
	}
}
