package logging

import (
	"context"

	"github.com/goliatone/go-livesite/pkg/interfaces"
)

const (
	rootModule       = "livesite"
	snapshotsModule  = "livesite.snapshots"
	registryModule   = "livesite.registry"
	resolutionModule = "livesite.resolution"
	catalogModule    = "livesite.catalog"
	themesModule     = "livesite.themes"
	sessionModule    = "livesite.session"
	backendsModule   = "livesite.backends"
	commandsModule   = "livesite.commands"
)

const (
	fieldModule = "module"
	fieldTenant = "tenant"
	fieldPage   = "page"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{fieldModule: module})
}

// SnapshotsLogger returns the logger namespace of the tenant snapshot cache.
func SnapshotsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, snapshotsModule)
}

// RegistryLogger returns the logger namespace of the component instance registry.
func RegistryLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, registryModule)
}

// ResolutionLogger returns the logger namespace of the data resolution layer.
func ResolutionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resolutionModule)
}

// CatalogLogger returns the logger namespace of the page catalog builder.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// ThemesLogger returns the logger namespace of theme propagation.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

// SessionLogger returns the logger namespace of tenant sessions.
func SessionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sessionModule)
}

// BackendsLogger returns the logger namespace shared by tenant document backends.
func BackendsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, backendsModule)
}

// CommandsLogger returns the logger namespace of command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
