package di

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/goliatone/go-livesite/internal/backends/bunstore"
	"github.com/goliatone/go-livesite/internal/backends/memory"
	"github.com/goliatone/go-livesite/internal/backends/redisstore"
	"github.com/goliatone/go-livesite/internal/logging/gologger"
	"github.com/goliatone/go-livesite/internal/runtimeconfig"
	"github.com/goliatone/go-livesite/internal/sites"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Backend.Provider = "etcd"
	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrBackendProviderUnknown) {
		t.Fatalf("expected ErrBackendProviderUnknown, got %v", err)
	}
}

func TestContainerDefaultsToMemoryBackend(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	store, ok := container.Backend().(*memory.Store)
	if !ok {
		t.Fatalf("expected memory backend, got %T", container.Backend())
	}
	if container.Gatherer() != nil {
		t.Fatalf("expected metrics disabled by default")
	}

	ctx := context.Background()
	first, err := container.Session(ctx, " acme ")
	if err != nil {
		t.Fatalf("Session returned error: %v", err)
	}
	second, err := container.Session(ctx, "acme")
	if err != nil {
		t.Fatalf("Session returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same session for the same tenant")
	}

	if _, err := first.ApplyTheme(ctx, "coastal"); err != nil {
		t.Fatalf("ApplyTheme returned error: %v", err)
	}
	doc, ok := store.Document("acme")
	if !ok || doc.SiteLayout.CurrentTheme != "coastal" {
		t.Fatalf("expected persisted coastal document, got %+v", doc)
	}

	if _, err := container.Session(ctx, "  "); err == nil {
		t.Fatalf("expected error for empty tenant key")
	}
}

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.LoggerProvider().(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}
	if logger := provider.GetLogger("livesite.test"); logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestContainerRecordsMetrics(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Metrics = true

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if _, err := container.Session(context.Background(), "metrics-tenant"); err != nil {
		t.Fatalf("Session returned error: %v", err)
	}

	families, err := container.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather returned error: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() == "livesite_snapshot_fetch_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected snapshot fetch counter among %d families", len(families))
	}
}

func TestContainerBunBackendWithCache(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Backend.Provider = runtimeconfig.BackendBun
	cfg.Backend.DSN = "file:di_container_test?mode=memory&cache=shared"
	cfg.Backend.AutoMigrate = true
	cfg.Cache.Enabled = true
	cfg.Cache.DefaultTTL = time.Minute

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	if _, ok := container.Backend().(*bunstore.Store); !ok {
		t.Fatalf("expected bun backend, got %T", container.Backend())
	}

	ctx := context.Background()
	s, err := container.Session(ctx, "di-bun")
	if err != nil {
		t.Fatalf("Session returned error: %v", err)
	}
	if _, err := s.ApplyTheme(ctx, "urban"); err != nil {
		t.Fatalf("ApplyTheme returned error: %v", err)
	}

	snapshot, err := container.Backend().FetchTenant(ctx, "di-bun")
	if err != nil {
		t.Fatalf("FetchTenant returned error: %v", err)
	}
	if snapshot.SiteLayout.CurrentTheme != "urban" {
		t.Fatalf("expected urban theme persisted, got %q", snapshot.SiteLayout.CurrentTheme)
	}
}

func TestContainerRedisBackend(t *testing.T) {
	server := miniredis.RunT(t)

	cfg := runtimeconfig.DefaultConfig()
	cfg.Backend.Provider = runtimeconfig.BackendRedis
	cfg.Backend.Redis.URL = "redis://" + server.Addr() + "/0"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	if _, ok := container.Backend().(*redisstore.Store); !ok {
		t.Fatalf("expected redis backend, got %T", container.Backend())
	}

	ctx := context.Background()
	s, err := container.Session(ctx, "di-redis")
	if err != nil {
		t.Fatalf("Session returned error: %v", err)
	}
	if _, err := s.ApplyTheme(ctx, "coastal"); err != nil {
		t.Fatalf("ApplyTheme returned error: %v", err)
	}
	if !server.Exists("livesite:tenant:di-redis") {
		t.Fatalf("expected tenant document stored in redis, keys: %v", server.Keys())
	}
}

func TestContainerCatalogOverrides(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Catalog.StaticPages = []runtimeconfig.StaticPageConfig{{Slug: "/contact/", DisplayName: "Contact"}}
	cfg.Catalog.SEO = map[string]runtimeconfig.SEOConfig{
		"contact": {Title: "Get in touch"},
	}

	container, err := NewContainer(cfg, WithBackend(memory.New(&sites.TenantSnapshot{TenantKey: "acme"})))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	s, err := container.Session(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Session returned error: %v", err)
	}

	var contact *sites.PageDescriptor
	for _, desc := range s.Catalog() {
		if desc.Slug == "contact" {
			contact = &desc
		}
	}
	if contact == nil {
		t.Fatalf("expected contact page in catalog: %+v", s.Catalog())
	}
	if !contact.IsStatic || contact.SEO.Title != "Get in touch" || contact.Path != "/contact" {
		t.Fatalf("unexpected contact descriptor %+v", contact)
	}
}

func TestContainerValidatesDefaultTheme(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Themes.DefaultTheme = "harbor"
	if _, err := NewContainer(cfg); !errors.Is(err, ErrDefaultThemeUnknown) {
		t.Fatalf("expected ErrDefaultThemeUnknown, got %v", err)
	}

	cfg.Themes.DefaultTheme = "urban"
	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.DefaultTheme() != "urban" {
		t.Fatalf("expected urban default theme, got %q", container.DefaultTheme())
	}
}

type blockingBackend struct {
	*memory.Store
	tenant  string
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) FetchTenant(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error) {
	if tenantKey == b.tenant {
		close(b.started)
		select {
		case <-b.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return b.Store.FetchTenant(ctx, tenantKey)
}

func TestContainerSessionDoesNotBlockOtherTenants(t *testing.T) {
	backend := &blockingBackend{
		Store:   memory.New(),
		tenant:  "slow",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	container, err := NewContainer(runtimeconfig.DefaultConfig(), WithBackend(backend))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer func() { _ = container.Close() }()

	ctx := context.Background()
	slowDone := make(chan error, 1)
	go func() {
		_, err := container.Session(ctx, "slow")
		slowDone <- err
	}()
	<-backend.started

	fastDone := make(chan error, 1)
	go func() {
		_, err := container.Session(ctx, "fast")
		fastDone <- err
	}()
	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("Session(fast): %v", err)
		}
	case <-time.After(2 * time.Second):
		close(backend.release)
		t.Fatal("Session(fast) waited on another tenant's fetch")
	}

	close(backend.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("Session(slow): %v", err)
	}
	first, _ := container.Session(ctx, "slow")
	second, _ := container.Session(ctx, "slow")
	if first != second {
		t.Fatalf("expected cached slow session")
	}
}
