package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-livesite/internal/catalog"
	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/metrics"
	"github.com/goliatone/go-livesite/internal/registry"
	"github.com/goliatone/go-livesite/internal/resolution"
	"github.com/goliatone/go-livesite/internal/snapshots"
	"github.com/goliatone/go-livesite/internal/themes"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

var (
	ErrTenantKeyRequired   = errors.New("session: tenant key required")
	ErrFetcherRequired     = errors.New("session: tenant fetcher required")
	ErrDefinitionsRequired = errors.New("session: family definitions required")
	ErrBundlesRequired     = errors.New("session: theme bundle repository required")
	ErrPageSlugRequired    = errors.New("session: page slug required")
	ErrPageExists          = errors.New("session: page already exists")
	ErrFamilyRequired      = errors.New("session: component family required")
)

// Dependencies are the collaborators shared by every session of a module.
type Dependencies struct {
	Fetcher     interfaces.TenantFetcher
	Saver       interfaces.SaveCoordinator
	Definitions *resolution.Definitions
	Bundles     themes.BundleRepository
	Catalog     *catalog.Builder
	Design      *themes.DesignTokens
}

// Option configures a session.
type Option func(*Session)

// WithLoggerProvider derives module loggers for the session and its stores.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Session) {
		if provider != nil {
			s.provider = provider
		}
	}
}

// WithMetrics sets the metrics recorder shared by the session stores.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(s *Session) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithNotifier sets the user notification collaborator.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(s *Session) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGuardAutoClear controls whether Reload clears the theme guard once the
// backend reflects the last theme operation. Enabled by default.
func WithGuardAutoClear(enabled bool) Option {
	return func(s *Session) {
		s.autoClear = enabled
	}
}

// appliedTheme remembers what the last theme operation wrote so a reload can
// tell when the backend caught up.
type appliedTheme struct {
	theme     string
	revisions map[string]uint64
}

// Session holds the state of one tenant: its snapshot cache, component
// registry and theme service. Sessions share nothing mutable with each other.
type Session struct {
	key       string
	fetcher   interfaces.TenantFetcher
	saver     interfaces.SaveCoordinator
	defs      *resolution.Definitions
	provider  interfaces.LoggerProvider
	logger    interfaces.Logger
	metrics   metrics.Recorder
	notifier  interfaces.Notifier
	now       func() time.Time
	autoClear bool

	snapshots *snapshots.Cache
	registry  *registry.Registry
	resolver  *resolution.Resolver
	catalog   *catalog.Builder
	themes    *themes.Service

	mu      sync.Mutex
	applied *appliedTheme
	saves   sync.WaitGroup
}

// New builds the session of tenantKey.
func New(tenantKey string, deps Dependencies, opts ...Option) (*Session, error) {
	key := strings.TrimSpace(tenantKey)
	if key == "" {
		return nil, ErrTenantKeyRequired
	}
	if deps.Fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if deps.Definitions == nil {
		return nil, ErrDefinitionsRequired
	}
	if deps.Bundles == nil {
		return nil, ErrBundlesRequired
	}

	s := &Session{
		key:       key,
		fetcher:   deps.Fetcher,
		saver:     deps.Saver,
		defs:      deps.Definitions,
		metrics:   metrics.NoOp(),
		now:       time.Now,
		autoClear: true,
		catalog:   deps.Catalog,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.logger = logging.WithTenantFields(logging.SessionLogger(s.provider), key, nil)
	if s.catalog == nil {
		s.catalog = catalog.NewBuilder(catalog.WithLogger(logging.CatalogLogger(s.provider)))
	}

	s.snapshots = snapshots.NewCache(s.fetcher,
		snapshots.WithNow(s.now),
		snapshots.WithLogger(logging.SnapshotsLogger(s.provider)),
		snapshots.WithNotifier(s.notifier),
		snapshots.WithMetrics(s.metrics),
	)
	s.registry = registry.New(
		registry.WithLogger(logging.RegistryLogger(s.provider)),
		registry.WithMetrics(s.metrics),
	)
	s.resolver = resolution.NewResolver(s.defs,
		resolution.WithLogger(logging.ResolutionLogger(s.provider)),
		resolution.WithMetrics(s.metrics),
	)

	themeOpts := []themes.ServiceOption{
		themes.WithNow(s.now),
		themes.WithLogger(logging.ThemesLogger(s.provider)),
		themes.WithMetrics(s.metrics),
		themes.WithDesignTokens(deps.Design),
	}
	if s.notifier != nil {
		themeOpts = append(themeOpts, themes.WithNotifier(s.notifier))
	}
	if s.saver != nil {
		themeOpts = append(themeOpts, themes.WithSaveCoordinator(s.saver))
	}
	s.themes = themes.NewService(deps.Bundles, s.snapshots, s.registry, themeOpts...)
	return s, nil
}

// TenantKey returns the tenant served by the session.
func (s *Session) TenantKey() string {
	return s.key
}

// Registry exposes the component registry of the session.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// Snapshots exposes the snapshot cache of the session.
func (s *Session) Snapshots() *snapshots.Cache {
	return s.snapshots
}

// Themes exposes the theme service of the session.
func (s *Session) Themes() *themes.Service {
	return s.themes
}

// Guard returns the current theme change guard.
func (s *Session) Guard() int64 {
	return s.registry.ThemeGuard()
}

// Wait blocks until every background save started by RequestSave finished.
func (s *Session) Wait() {
	s.saves.Wait()
}

func (s *Session) notify(ctx context.Context, message string, kind interfaces.NoticeKind) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, message, kind)
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
