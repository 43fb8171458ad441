package livesite

import (
	"io"

	"github.com/goliatone/go-livesite/internal/runtimeconfig"
	"github.com/goliatone/go-livesite/internal/session"
	"github.com/goliatone/go-livesite/internal/themes"
)

var (
	ErrBackendProviderUnknown  = runtimeconfig.ErrBackendProviderUnknown
	ErrBackendDSNRequired      = runtimeconfig.ErrBackendDSNRequired
	ErrRedisURLRequired        = runtimeconfig.ErrRedisURLRequired
	ErrHTTPBaseURLRequired     = runtimeconfig.ErrHTTPBaseURLRequired
	ErrCacheRequiresBun        = runtimeconfig.ErrCacheRequiresBun
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid

	ErrThemeNotFound    = themes.ErrThemeNotFound
	ErrApplyInProgress  = themes.ErrApplyInProgress
	ErrPersistFailed    = themes.ErrPersistFailed
	ErrPageExists       = session.ErrPageExists
	ErrPageSlugRequired = session.ErrPageSlugRequired
)

type (
	Config           = runtimeconfig.Config
	BackendConfig    = runtimeconfig.BackendConfig
	RedisConfig      = runtimeconfig.RedisConfig
	HTTPConfig       = runtimeconfig.HTTPConfig
	CacheConfig      = runtimeconfig.CacheConfig
	ThemeConfig      = runtimeconfig.ThemeConfig
	CatalogConfig    = runtimeconfig.CatalogConfig
	StaticPageConfig = runtimeconfig.StaticPageConfig
	SEOConfig        = runtimeconfig.SEOConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig decodes a YAML configuration over the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	return runtimeconfig.Load(r)
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
