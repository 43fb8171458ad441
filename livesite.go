package livesite

import (
	"context"

	"github.com/goliatone/go-livesite/internal/commands"
	"github.com/goliatone/go-livesite/internal/di"
	"github.com/goliatone/go-livesite/internal/resolution"
	"github.com/goliatone/go-livesite/internal/session"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/internal/themes"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// Session exports the per-tenant editing session.
type Session = session.Session

// ComponentRecord exports the placed component instance record.
type ComponentRecord = sites.ComponentRecord

// TenantSnapshot exports the persisted tenant document.
type TenantSnapshot = sites.TenantSnapshot

// PageDescriptor exports the catalog page entry.
type PageDescriptor = sites.PageDescriptor

// SEORecord exports the page search metadata record.
type SEORecord = sites.SEORecord

// ResolvedConfig exports the resolved component configuration.
type ResolvedConfig = resolution.ResolvedConfig

// ThemeBundle exports the theme bundle definition.
type ThemeBundle = themes.Bundle

// ThemeResult exports the outcome of a theme apply or reset.
type ThemeResult = themes.Result

// FamilyDefinition exports the component family definition.
type FamilyDefinition = resolution.FamilyDefinition

// Backend exports the tenant document backend contract.
type Backend interface {
	interfaces.TenantFetcher
	interfaces.SaveCoordinator
}

// Option customises the module container.
type Option = di.Option

var (
	WithLoggerProvider    = di.WithLoggerProvider
	WithMetricsRegisterer = di.WithMetricsRegisterer
	WithNotifier          = di.WithNotifier
	WithBunDB             = di.WithBunDB
	WithCache             = di.WithCache
	WithDefinitions       = di.WithDefinitions
	WithBundleRepository  = di.WithBundleRepository
	WithNow               = di.WithNow
	NewDefinitions        = resolution.NewDefinitions
	BuiltinFamilies       = resolution.BuiltinFamilies
	BuiltinThemeBundles   = themes.BuiltinBundles
	SessionFromContext    = session.FromContext
	ContextWithSession    = session.NewContext
)

// WithBackend overrides the tenant document backend selected by config.
func WithBackend(backend Backend) Option {
	return di.WithBackend(backend)
}

// Module represents the top level engine façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// OpenSession returns the loaded editing session of tenantKey.
func (m *Module) OpenSession(ctx context.Context, tenantKey string) (*Session, error) {
	return m.container.Session(ctx, tenantKey)
}

// Themes lists the registered theme bundles.
func (m *Module) Themes(ctx context.Context) ([]*ThemeBundle, error) {
	return m.container.Bundles().List(ctx)
}

// RegisterCommands subscribes the theme and page command handlers with the
// go-command dispatcher. The returned func removes the subscriptions.
func (m *Module) RegisterCommands() func() {
	return commands.Register(m.container, m.container.LoggerProvider())
}

// Close waits for pending saves and releases backend connections.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
