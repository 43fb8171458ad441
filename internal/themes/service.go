package themes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/metrics"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// SnapshotStore is the snapshot cache surface the service writes through.
type SnapshotStore interface {
	Snapshot(tenantKey string) (*sites.TenantSnapshot, bool)
	Put(snapshot *sites.TenantSnapshot) error
}

// RegistryStore is the registry surface the service writes through.
type RegistryStore interface {
	Pages() []string
	Revision(slug string) uint64
	ReplacePage(slug string, records []sites.ComponentRecord, revision uint64) error
	StampThemeGuard(now time.Time) int64
}

// ServiceOption configures service behaviour.
type ServiceOption func(*Service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithNotifier sets the user notification sink.
func WithNotifier(notifier interfaces.Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithSaveCoordinator sets the persistence collaborator.
func WithSaveCoordinator(saver interfaces.SaveCoordinator) ServiceOption {
	return func(s *Service) {
		s.saver = saver
	}
}

// WithDesignTokens enables copying manifest design tokens into branding.
func WithDesignTokens(tokens *DesignTokens) ServiceOption {
	return func(s *Service) {
		s.design = tokens
	}
}

// Service rewrites every page of a tenant to a theme bundle. One operation
// runs at a time per service.
type Service struct {
	bundles  BundleRepository
	store    SnapshotStore
	registry RegistryStore
	saver    interfaces.SaveCoordinator
	notifier interfaces.Notifier
	design   *DesignTokens
	now      func() time.Time
	logger   interfaces.Logger
	metrics  metrics.Recorder

	mu      sync.Mutex
	state   State
	lastErr error
}

// NewService constructs a theme service writing through store and registry.
func NewService(bundles BundleRepository, store SnapshotStore, registry RegistryStore, opts ...ServiceOption) *Service {
	if bundles == nil {
		panic(ErrBundleRepositoryRequired)
	}
	if store == nil {
		panic(ErrSnapshotStoreRequired)
	}
	if registry == nil {
		panic(ErrRegistryRequired)
	}
	s := &Service{
		bundles:  bundles,
		store:    store,
		registry: registry,
		now:      time.Now,
		logger:   logging.NoOp(),
		metrics:  metrics.NoOp(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the error of the most recent failed operation.
func (s *Service) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Bundles lists the registered bundles.
func (s *Service) Bundles(ctx context.Context) ([]*Bundle, error) {
	return s.bundles.List(ctx)
}

// ApplyTheme replaces every tenant page with the bundle's canonical components.
func (s *Service) ApplyTheme(ctx context.Context, tenantKey, theme string) (Result, error) {
	return s.run(ctx, ModeApply, tenantKey, theme)
}

// ResetTheme replaces every tenant page with the bundle's default components.
// It does not restore whatever a previous apply replaced.
func (s *Service) ResetTheme(ctx context.Context, tenantKey, theme string) (Result, error) {
	return s.run(ctx, ModeReset, tenantKey, theme)
}

func (s *Service) run(ctx context.Context, mode Mode, tenantKey, theme string) (Result, error) {
	if err := s.begin(); err != nil {
		return Result{}, err
	}

	logger := logging.WithFields(s.logger, map[string]any{
		"tenant": tenantKey,
		"theme":  theme,
		"mode":   string(mode),
	})
	logger.Info("theme.operation.start")

	result, err := s.execute(ctx, logger, mode, strings.TrimSpace(tenantKey), strings.TrimSpace(theme))
	if err != nil {
		s.fail(err)
		s.metrics.ThemeOperation(string(mode), metrics.OutcomeFailure)
		logger.Error("theme.operation.failed", "error", err, "applied_in_memory", len(result.Pages) > 0)
		s.notify(ctx, failureMessage(mode, theme), interfaces.NoticeError)
		s.finish()
		return result, err
	}

	s.metrics.ThemeOperation(string(mode), metrics.OutcomeSuccess)
	logger.Info("theme.operation.done", "pages", len(result.Pages), "guard", result.Guard)
	s.notify(ctx, successMessage(mode, result.Theme), interfaces.NoticeSuccess)
	s.finish()
	return result, nil
}

func (s *Service) execute(ctx context.Context, logger interfaces.Logger, mode Mode, tenantKey, theme string) (Result, error) {
	if tenantKey == "" {
		return Result{}, ErrTenantKeyRequired
	}
	if theme == "" {
		return Result{}, ErrThemeNameRequired
	}

	bundle, err := s.bundles.GetByName(ctx, theme)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return Result{}, fmt.Errorf("%w: %s", ErrThemeNotFound, theme)
		}
		return Result{}, err
	}

	snapshot, ok := s.store.Snapshot(tenantKey)
	if !ok || snapshot == nil {
		snapshot = &sites.TenantSnapshot{TenantKey: tenantKey}
	}

	slugs := s.pageSet(snapshot, bundle)
	pages := make(map[string][]sites.ComponentRecord, len(slugs))
	for _, slug := range slugs {
		records := bundle.Components(mode, slug)
		if err := validateRecords(slug, records); err != nil {
			return Result{}, err
		}
		pages[slug] = records
	}

	branding, err := s.design.Branding(bundle)
	if err != nil {
		logger.Warn("theme.design.unavailable", "error", err)
		branding = nil
	}

	for _, slug := range slugs {
		revision := max(s.registry.Revision(slug), snapshot.Revision(slug)) + 1
		snapshot.ComponentSettings.Set(slug, pages[slug])
		snapshot.SetRevision(slug, revision)
	}
	snapshot.SiteLayout.CurrentTheme = bundle.Name
	snapshot.SiteLayout.Branding = mergeBranding(snapshot.SiteLayout.Branding, bundle.Branding, branding)

	if err := s.store.Put(snapshot); err != nil {
		return Result{}, err
	}
	for _, slug := range slugs {
		if err := s.registry.ReplacePage(slug, pages[slug], snapshot.Revision(slug)); err != nil {
			logger.Error("theme.registry.replace_failed", "page", slug, "error", err)
		}
	}

	result := Result{
		Theme: bundle.Name,
		Mode:  mode,
		Pages: slugs,
		Guard: s.registry.StampThemeGuard(s.now()),
	}
	logger.Debug("theme.applied_in_memory", "pages", len(slugs), "guard", result.Guard)

	if err := s.persist(ctx, mode, snapshot); err != nil {
		return result, err
	}
	result.Persisted = true
	return result, nil
}

// pageSet returns the snapshot pages followed by registry-only pages, or the
// bundle canonical pages when the tenant has none.
func (s *Service) pageSet(snapshot *sites.TenantSnapshot, bundle *Bundle) []string {
	seen := map[string]struct{}{}
	var slugs []string
	add := func(slug string) {
		if _, ok := seen[slug]; ok {
			return
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	for _, slug := range snapshot.ComponentSettings.Slugs() {
		add(slug)
	}
	for _, slug := range s.registry.Pages() {
		add(slug)
	}
	if len(slugs) == 0 {
		for _, slug := range bundle.CanonicalPages() {
			add(slug)
		}
	}
	return slugs
}

func (s *Service) persist(ctx context.Context, mode Mode, snapshot *sites.TenantSnapshot) error {
	if s.saver == nil {
		return nil
	}
	reason := interfaces.SaveReasonThemeApply
	if mode == ModeReset {
		reason = interfaces.SaveReasonThemeReset
	}
	err := s.saver.RequestSave(ctx, interfaces.SaveRequest{
		TenantKey: snapshot.TenantKey,
		Snapshot:  sites.CloneSnapshot(snapshot),
		Reason:    reason,
	})
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return goerrors.Wrap(fmt.Errorf("%w: %w", ErrPersistFailed, err), goerrors.CategoryExternal, "theme persistence failed").
		WithTextCode("THEME_PERSIST_FAILED")
}

func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateApplying {
		return ErrApplyInProgress
	}
	s.state = StateApplying
	return nil
}

func (s *Service) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateFailed
	s.lastErr = err
}

func (s *Service) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
}

func (s *Service) notify(ctx context.Context, message string, kind interfaces.NoticeKind) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, message, kind)
}

func mergeBranding(current map[string]any, layers ...map[string]any) map[string]any {
	out := sites.CloneMap(current)
	if out == nil {
		out = map[string]any{}
	}
	for _, layer := range layers {
		for key, value := range layer {
			out[key] = sites.CloneValue(value)
		}
	}
	return out
}

func successMessage(mode Mode, theme string) string {
	if mode == ModeReset {
		return fmt.Sprintf("Theme %s was reset to its defaults", theme)
	}
	return fmt.Sprintf("Theme %s applied", theme)
}

func failureMessage(mode Mode, theme string) string {
	if mode == ModeReset {
		return fmt.Sprintf("Could not reset theme %s", theme)
	}
	return fmt.Sprintf("Could not apply theme %s", theme)
}
