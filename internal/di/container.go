package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-livesite/internal/backends"
	"github.com/goliatone/go-livesite/internal/backends/bunstore"
	"github.com/goliatone/go-livesite/internal/backends/httpstore"
	"github.com/goliatone/go-livesite/internal/backends/memory"
	"github.com/goliatone/go-livesite/internal/backends/redisstore"
	"github.com/goliatone/go-livesite/internal/catalog"
	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/logging/console"
	"github.com/goliatone/go-livesite/internal/logging/gologger"
	"github.com/goliatone/go-livesite/internal/metrics"
	"github.com/goliatone/go-livesite/internal/resolution"
	"github.com/goliatone/go-livesite/internal/runtimeconfig"
	"github.com/goliatone/go-livesite/internal/session"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/internal/themes"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// ErrDefaultThemeUnknown reports a configured default theme with no registered bundle.
var ErrDefaultThemeUnknown = errors.New("di: default theme is not registered")

// Container wires the engine collaborators shared by every tenant session.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	registerer     prometheus.Registerer
	gatherer       prometheus.Gatherer
	recorder       metrics.Recorder
	notifier       interfaces.Notifier
	now            func() time.Time

	backend       backends.Backend
	bunDB         *bun.DB
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer
	closers       []func() error

	definitions *resolution.Definitions
	bundles     themes.BundleRepository
	catalog     *catalog.Builder
	design      *themes.DesignTokens

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetricsRegisterer registers the engine collectors with reg instead of a
// private registry.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// WithNotifier sets the user notification collaborator of every session.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *Container) {
		c.notifier = notifier
	}
}

// WithBackend overrides the tenant document backend selected by config.
func WithBackend(backend backends.Backend) Option {
	return func(c *Container) {
		c.backend = backend
	}
}

// WithBunDB supplies the database used by the bun backend.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache provider.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithDefinitions overrides the builtin component families.
func WithDefinitions(defs *resolution.Definitions) Option {
	return func(c *Container) {
		c.definitions = defs
	}
}

// WithBundleRepository overrides the in-memory theme bundle repository.
func WithBundleRepository(repo themes.BundleRepository) Option {
	return func(c *Container) {
		c.bundles = repo
	}
}

// WithNow overrides the clock handed to sessions.
func WithNow(now func() time.Time) Option {
	return func(c *Container) {
		c.now = now
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		now:      time.Now,
		sessions: map[string]*session.Session{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	ctx := context.Background()
	steps := []func(context.Context) error{
		c.configureLoggerProvider,
		c.configureMetrics,
		c.configureBackend,
		c.configureDefinitions,
		c.configureBundles,
		c.configureCatalog,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	c.design = themes.NewDesignTokens(nil, cfg.Themes.DefaultVariant, cfg.Themes.CSSPrefix)

	c.logger.Info("container.configured",
		"backend", cfg.Backend.Provider,
		"cache", cfg.Cache.Enabled,
		"metrics", cfg.Features.Metrics,
		"families", len(c.definitions.Families()),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider(context.Context) error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
		case "gologger":
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     c.Config.Logging.Level,
				Format:    c.Config.Logging.Format,
				AddSource: c.Config.Logging.AddSource,
				Focus:     c.Config.Logging.Focus,
				Fields:    c.Config.Logging.Fields,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		default:
			opts := console.Options{}
			if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
				opts.MinLevel = &level
			}
			c.loggerProvider = console.NewProvider(opts)
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "livesite.di")
	return nil
}

func (c *Container) configureMetrics(context.Context) error {
	if !c.Config.Features.Metrics && c.registerer == nil {
		c.recorder = metrics.NoOp()
		return nil
	}
	if c.registerer == nil {
		registry := prometheus.NewRegistry()
		c.registerer = registry
		c.gatherer = registry
	} else if gatherer, ok := c.registerer.(prometheus.Gatherer); ok {
		c.gatherer = gatherer
	}
	recorder, err := metrics.NewPrometheus(c.registerer)
	if err != nil {
		return fmt.Errorf("di: register metrics: %w", err)
	}
	c.recorder = recorder
	return nil
}

func (c *Container) configureBackend(ctx context.Context) error {
	if c.backend != nil {
		return nil
	}
	cfg := c.Config.Backend
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case runtimeconfig.BackendBun:
		return c.configureBunBackend(ctx)
	case runtimeconfig.BackendRedis:
		var opts []redisstore.Option
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redisstore.WithTTL(cfg.Redis.TTL))
		}
		store, err := redisstore.Open(ctx, cfg.Redis.URL, cfg.Redis.Prefix, opts...)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, store.Close)
		c.backend = store
	case runtimeconfig.BackendHTTP:
		opts := []httpstore.Option{}
		if cfg.HTTP.Timeout > 0 {
			opts = append(opts, httpstore.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout}))
		}
		if token := strings.TrimSpace(cfg.HTTP.Token); token != "" {
			opts = append(opts, httpstore.WithHeader("Authorization", "Bearer "+token))
		}
		store, err := httpstore.New(cfg.HTTP.BaseURL, opts...)
		if err != nil {
			return err
		}
		c.backend = store
	default:
		c.backend = memory.New()
	}
	return nil
}

func (c *Container) configureBunBackend(ctx context.Context) error {
	if c.bunDB == nil {
		db, err := openBunDB(c.Config.Backend.Dialect, c.Config.Backend.DSN)
		if err != nil {
			return err
		}
		c.bunDB = db
		c.closers = append(c.closers, db.Close)
	}
	if c.Config.Backend.AutoMigrate {
		if err := bunstore.CreateTable(ctx, c.bunDB); err != nil {
			return fmt.Errorf("di: migrate tenant documents: %w", err)
		}
	}

	c.configureCacheDefaults()
	if c.cacheService != nil {
		c.backend = bunstore.NewWithCache(c.bunDB, c.cacheService, c.keySerializer)
		return nil
	}
	c.backend = bunstore.New(c.bunDB)
	return nil
}

func openBunDB(dialect, dsn string) (*bun.DB, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres":
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open postgres: %w", err)
		}
		return bun.NewDB(sqlDB, pgdialect.New()), nil
	default:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("di: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	}
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cfg.TTL = c.Config.Cache.DefaultTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("container.cache_unavailable", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureDefinitions(context.Context) error {
	if c.definitions != nil {
		return nil
	}
	defs, err := resolution.NewDefinitions(resolution.BuiltinFamilies()...)
	if err != nil {
		return fmt.Errorf("di: component families: %w", err)
	}
	c.definitions = defs
	return nil
}

func (c *Container) configureBundles(ctx context.Context) error {
	if c.bundles == nil {
		c.bundles = themes.NewMemoryBundleRepository()
	}
	if c.Config.Themes.Builtin {
		if err := themes.Bootstrap(ctx, c.bundles, themes.BuiltinBundles()); err != nil {
			return fmt.Errorf("di: builtin themes: %w", err)
		}
	}
	if dir := strings.TrimSpace(c.Config.Themes.BundleDir); dir != "" {
		bundles, err := themes.LoadBundleDir(dir)
		if err != nil {
			return err
		}
		if err := themes.Bootstrap(ctx, c.bundles, bundles); err != nil {
			return fmt.Errorf("di: theme bundles from %s: %w", dir, err)
		}
		c.logger.Debug("container.bundles_loaded", "dir", dir, "count", len(bundles))
	}
	if name := strings.TrimSpace(c.Config.Themes.DefaultTheme); name != "" {
		if _, err := c.bundles.GetByName(ctx, name); err != nil {
			return fmt.Errorf("%w: %s", ErrDefaultThemeUnknown, name)
		}
	}
	return nil
}

func (c *Container) configureCatalog(context.Context) error {
	opts := []catalog.Option{catalog.WithLogger(logging.CatalogLogger(c.loggerProvider))}

	if pages := c.Config.Catalog.StaticPages; len(pages) > 0 {
		static := make([]catalog.StaticPage, 0, len(pages))
		for _, page := range pages {
			static = append(static, catalog.StaticPage{
				Slug:        strings.Trim(strings.TrimSpace(page.Slug), "/"),
				DisplayName: strings.TrimSpace(page.DisplayName),
			})
		}
		opts = append(opts, catalog.WithStaticPages(static))
	}

	if len(c.Config.Catalog.SEO) > 0 {
		records := catalog.DefaultCannedSEO()
		overrides := make(map[string]sites.SEORecord, len(c.Config.Catalog.SEO))
		for slug, seo := range c.Config.Catalog.SEO {
			key := strings.Trim(strings.TrimSpace(slug), "/")
			overrides[key] = sites.SEORecord{
				Path:        sites.PagePath(key),
				Title:       seo.Title,
				Description: seo.Description,
				Keywords:    append([]string(nil), seo.Keywords...),
				Image:       seo.Image,
			}
		}
		maps.Copy(records, overrides)
		opts = append(opts, catalog.WithCannedSEO(records))
	}

	c.catalog = catalog.NewBuilder(opts...)
	return nil
}

// Session returns the loaded session of tenantKey, creating it on first use.
func (c *Container) Session(ctx context.Context, tenantKey string) (*session.Session, error) {
	key, err := backends.NormalizeKey(tenantKey)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	existing, ok := c.sessions[key]
	c.mu.Unlock()
	if ok {
		return existing, nil
	}

	// Loading fetches from the backend, so it runs unlocked. Concurrent
	// openers of the same tenant keep whichever session is stored first.
	s, err := session.New(key, session.Dependencies{
		Fetcher:     c.backend,
		Saver:       c.backend,
		Definitions: c.definitions,
		Bundles:     c.bundles,
		Catalog:     c.catalog,
		Design:      c.design,
	},
		session.WithLoggerProvider(c.loggerProvider),
		session.WithMetrics(c.recorder),
		session.WithNotifier(c.notifier),
		session.WithNow(c.now),
		session.WithGuardAutoClear(c.Config.Features.ThemeGuard),
	)
	if err != nil {
		return nil, err
	}
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.sessions[key]; ok {
		return existing, nil
	}
	c.sessions[key] = s
	c.logger.Debug("container.session_opened", "tenant", key)
	return s, nil
}

// Close waits for pending saves and releases backend resources.
func (c *Container) Close() error {
	c.mu.Lock()
	open := make([]*session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		open = append(open, s)
	}
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	for _, s := range open {
		s.Wait()
	}
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoggerProvider returns the configured logger provider, nil when logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Backend returns the tenant document backend.
func (c *Container) Backend() backends.Backend {
	return c.backend
}

// Definitions returns the registered component families.
func (c *Container) Definitions() *resolution.Definitions {
	return c.definitions
}

// Bundles returns the theme bundle repository.
func (c *Container) Bundles() themes.BundleRepository {
	return c.bundles
}

// DefaultTheme returns the configured default theme name, possibly empty.
func (c *Container) DefaultTheme() string {
	return strings.TrimSpace(c.Config.Themes.DefaultTheme)
}

// Catalog returns the page catalog builder.
func (c *Container) Catalog() *catalog.Builder {
	return c.catalog
}

// Gatherer exposes collected metrics, nil when metrics are disabled.
func (c *Container) Gatherer() prometheus.Gatherer {
	return c.gatherer
}
