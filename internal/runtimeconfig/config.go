package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrBackendProviderUnknown  = errors.New("livesite config: backend provider is invalid")
	ErrBackendDSNRequired      = errors.New("livesite config: bun backend requires a dsn")
	ErrBackendDialectUnknown   = errors.New("livesite config: bun backend dialect is invalid")
	ErrRedisURLRequired        = errors.New("livesite config: redis backend requires a url")
	ErrHTTPBaseURLRequired     = errors.New("livesite config: http backend requires a base url")
	ErrHTTPTimeoutInvalid      = errors.New("livesite config: http backend timeout must be zero or positive")
	ErrCacheTTLInvalid         = errors.New("livesite config: cache ttl must be positive when cache is enabled")
	ErrCacheRequiresBun        = errors.New("livesite config: repository cache requires the bun backend")
	ErrStaticPageSlugRequired  = errors.New("livesite config: static catalog pages need a slug")
	ErrLoggingProviderRequired = errors.New("livesite config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("livesite config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("livesite config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("livesite config: logging format is invalid")
)

// Backend providers.
const (
	BackendMemory = "memory"
	BackendBun    = "bun"
	BackendRedis  = "redis"
	BackendHTTP   = "http"
)

// Config aggregates feature flags and adapter bindings for the engine.
type Config struct {
	Backend  BackendConfig `yaml:"backend"`
	Cache    CacheConfig   `yaml:"cache"`
	Themes   ThemeConfig   `yaml:"themes"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Features Features      `yaml:"features"`
	Logging  LoggingConfig `yaml:"logging"`
}

// BackendConfig selects where tenant documents live.
type BackendConfig struct {
	Provider string `yaml:"provider"`
	// DSN and Dialect configure the bun provider. Dialect is sqlite or postgres.
	DSN         string      `yaml:"dsn"`
	Dialect     string      `yaml:"dialect"`
	AutoMigrate bool        `yaml:"auto_migrate"`
	Redis       RedisConfig `yaml:"redis"`
	HTTP        HTTPConfig  `yaml:"http"`
}

// RedisConfig configures the redis provider.
type RedisConfig struct {
	URL    string        `yaml:"url"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
}

// HTTPConfig configures the http provider.
type HTTPConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// CacheConfig controls the read-through repository cache of the bun provider.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// ThemeConfig captures configuration for the themes module.
type ThemeConfig struct {
	DefaultTheme string `yaml:"default_theme"`
	// BundleDir holds one directory per theme with a bundle.json file.
	BundleDir string `yaml:"bundle_dir"`
	// Builtin registers the bundles shipped with the engine.
	Builtin        bool   `yaml:"builtin"`
	DefaultVariant string `yaml:"default_variant"`
	CSSPrefix      string `yaml:"css_prefix"`
}

// CatalogConfig overrides the mandatory static pages and canned SEO records.
type CatalogConfig struct {
	StaticPages []StaticPageConfig   `yaml:"static_pages"`
	SEO         map[string]SEOConfig `yaml:"seo"`
}

// StaticPageConfig is one mandatory catalog page.
type StaticPageConfig struct {
	Slug        string `yaml:"slug"`
	DisplayName string `yaml:"display_name"`
}

// SEOConfig is a canned SEO record keyed by slug.
type SEOConfig struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Image       string   `yaml:"image"`
}

// Features toggles module functionality.
type Features struct {
	Metrics bool `yaml:"metrics"`
	Logger  bool `yaml:"logger"`
	// ThemeGuard clears the theme guard automatically once a reload shows
	// the backend caught up with the last theme operation.
	ThemeGuard bool `yaml:"theme_guard"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
	// Fields are attached to every entry, e.g. service or region.
	Fields map[string]any `yaml:"fields"`
}

// DefaultConfig returns an in-memory setup with the builtin themes.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Provider: BackendMemory,
			Dialect:  "sqlite",
			Redis: RedisConfig{
				Prefix: "livesite:tenant:",
			},
			HTTP: HTTPConfig{
				Timeout: 10 * time.Second,
			},
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Themes: ThemeConfig{
			Builtin:   true,
			CSSPrefix: "site",
		},
		Features: Features{
			ThemeGuard: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalize(cfg.Backend.Provider)
	switch provider {
	case BackendMemory:
	case BackendBun:
		if strings.TrimSpace(cfg.Backend.DSN) == "" {
			return ErrBackendDSNRequired
		}
		if dialect := normalize(cfg.Backend.Dialect); dialect != "sqlite" && dialect != "postgres" {
			return fmt.Errorf("%w: %s", ErrBackendDialectUnknown, cfg.Backend.Dialect)
		}
	case BackendRedis:
		if strings.TrimSpace(cfg.Backend.Redis.URL) == "" {
			return ErrRedisURLRequired
		}
	case BackendHTTP:
		if strings.TrimSpace(cfg.Backend.HTTP.BaseURL) == "" {
			return ErrHTTPBaseURLRequired
		}
		if cfg.Backend.HTTP.Timeout < 0 {
			return ErrHTTPTimeoutInvalid
		}
	default:
		return fmt.Errorf("%w: %q", ErrBackendProviderUnknown, cfg.Backend.Provider)
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.DefaultTTL <= 0 {
			return ErrCacheTTLInvalid
		}
		if provider != BackendBun {
			return ErrCacheRequiresBun
		}
	}

	for i, page := range cfg.Catalog.StaticPages {
		if strings.TrimSpace(page.Slug) == "" {
			return fmt.Errorf("%w: entry %d", ErrStaticPageSlugRequired, i)
		}
	}

	if cfg.Features.Logger {
		logProvider := normalize(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(logProvider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if logProvider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
