package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-livesite/internal/catalog"
	"github.com/goliatone/go-livesite/internal/registry"
	"github.com/goliatone/go-livesite/internal/resolution"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/internal/snapshots"
	"github.com/goliatone/go-livesite/internal/themes"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

// Load fetches the tenant snapshot when none is cached and seeds the
// registry from it. A concurrent fetch in flight yields an empty report.
func (s *Session) Load(ctx context.Context) (registry.SeedReport, error) {
	if err := s.snapshots.Fetch(ctx, s.key); err != nil {
		return registry.SeedReport{}, err
	}
	snapshot, ok := s.snapshots.Snapshot(s.key)
	if !ok {
		return registry.SeedReport{Skipped: map[string]registry.SkipReason{}}, nil
	}
	report := s.registry.Seed(snapshot)
	confirmed := s.registry.Reconcile(snapshot)
	s.logger.Debug("session.loaded",
		"pages", snapshot.ComponentSettings.Len(),
		"seeded", len(report.Applied),
		"skipped", len(report.Skipped),
		"confirmed_pages", len(confirmed),
	)
	return report, nil
}

// Reload drops the cached snapshot and loads it again. When the backend
// reflects the last theme operation the theme guard is cleared.
func (s *Session) Reload(ctx context.Context) (registry.SeedReport, error) {
	s.snapshots.Invalidate(s.key)
	report, err := s.Load(ctx)
	if err != nil {
		return report, err
	}
	snapshot, ok := s.snapshots.Snapshot(s.key)
	if ok && s.autoClear && s.caughtUp(snapshot) {
		s.registry.ClearThemeGuard()
		s.logger.Debug("session.theme_guard.cleared")
	}
	return report, nil
}

func (s *Session) caughtUp(snapshot *sites.TenantSnapshot) bool {
	if s.registry.ThemeGuard() == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil || snapshot.SiteLayout.CurrentTheme != s.applied.theme {
		return false
	}
	for slug, revision := range s.applied.revisions {
		if snapshot.Revision(slug) < revision {
			return false
		}
	}
	s.applied = nil
	return true
}

// Snapshot returns a copy of the cached tenant snapshot.
func (s *Session) Snapshot() (*sites.TenantSnapshot, bool) {
	return s.snapshots.Snapshot(s.key)
}

// Status reports the fetch state of the tenant snapshot.
func (s *Session) Status() snapshots.Status {
	return s.snapshots.Status(s.key)
}

// ResolveRequest identifies the component instance to resolve. A nil Page
// searches every page.
type ResolveRequest struct {
	Page       *string
	Family     string
	Variant    string
	InstanceID string
	Overrides  map[string]any
}

// Resolve merges defaults, the tenant snapshot, the registry and overrides
// into the render configuration of one instance.
func (s *Session) Resolve(req ResolveRequest) resolution.ResolvedConfig {
	var (
		local sites.ComponentRecord
		found bool
	)
	if req.Page != nil {
		local, found = s.registry.Instance(*req.Page, req.InstanceID)
	} else {
		_, local, found = s.registry.Lookup(req.InstanceID)
	}

	variant := strings.TrimSpace(req.Variant)
	if variant == "" && found && local.Family == req.Family {
		variant = local.Variant
	}
	if variant == "" {
		if def, ok := s.defs.Lookup(req.Family); ok {
			variant = def.DefaultVariant
		}
	}

	layers := resolution.Layers{
		Family:     req.Family,
		Variant:    variant,
		InstanceID: req.InstanceID,
		Overrides:  req.Overrides,
	}
	if found {
		layers.Registry = &local
	}
	if snapshot, ok := s.snapshots.Snapshot(s.key); ok {
		if record, ok := resolution.FindSnapshotRecord(snapshot, req.Page, req.Family, variant, req.InstanceID); ok {
			layers.Snapshot = record
		}
	}
	return s.resolver.Resolve(layers)
}

// EnsureRequest describes a component instance to register.
type EnsureRequest struct {
	Page       string
	Family     string
	Variant    string
	InstanceID string
	Seed       map[string]any
	Position   int
	Layout     string
}

// EnsureInstance registers an instance unless one with the same id already
// exists on the page. New records carry the current schema tag of their variant.
func (s *Session) EnsureInstance(req EnsureRequest) (sites.ComponentRecord, bool, error) {
	family := strings.TrimSpace(req.Family)
	if family == "" {
		return sites.ComponentRecord{}, false, ErrFamilyRequired
	}
	variant := strings.TrimSpace(req.Variant)
	if variant == "" {
		if def, ok := s.defs.Lookup(family); ok {
			variant = def.DefaultVariant
		}
	}
	record := sites.ComponentRecord{
		ID:       req.InstanceID,
		Family:   family,
		Variant:  variant,
		Data:     sites.CloneMap(req.Seed),
		Position: req.Position,
		Layout:   req.Layout,
		Schema:   s.defs.CurrentTag(family, variant),
	}
	return s.registry.EnsureInstance(req.Page, record)
}

// UpdateInstance merges content fields into an instance.
func (s *Session) UpdateInstance(page, id string, content map[string]any) error {
	return s.registry.UpdateContent(page, id, content)
}

// SetVariant switches an instance to variant, retagging it with that
// variant's current schema.
func (s *Session) SetVariant(page, id, variant string) error {
	record, ok := s.registry.Instance(page, id)
	if !ok {
		return registry.ErrInstanceNotFound
	}
	return s.registry.SetVariant(page, id, variant, s.defs.CurrentTag(record.Family, variant))
}

// RemoveInstance deletes an instance from page.
func (s *Session) RemoveInstance(page, id string) error {
	return s.registry.RemoveInstance(page, id)
}

// CreatePageInput describes a page created in the editor.
type CreatePageInput struct {
	Title string
	Slug  string
	SEO   *sites.SEORecord
}

// CreatePage queues a new page until the backend confirms it.
func (s *Session) CreatePage(_ context.Context, input CreatePageInput) (sites.PageDescriptor, error) {
	raw := strings.TrimSpace(input.Slug)
	if raw == "" {
		raw = strings.TrimSpace(input.Title)
	}
	normalized, err := slug.Normalize(raw)
	if err != nil || strings.TrimSpace(normalized) == "" {
		return sites.PageDescriptor{}, ErrPageSlugRequired
	}
	normalized = strings.Trim(normalized, "/")

	for _, desc := range s.Catalog() {
		if desc.Slug == normalized {
			return sites.PageDescriptor{}, fmt.Errorf("%w: %s", ErrPageExists, normalized)
		}
	}

	displayName := strings.TrimSpace(input.Title)
	if displayName == "" {
		displayName = catalog.DisplayName(normalized)
	}
	desc := sites.PageDescriptor{
		Slug:        normalized,
		DisplayName: displayName,
		Path:        sites.PagePath(normalized),
	}
	if input.SEO != nil {
		desc.SEO = sites.CloneSEO(*input.SEO)
	}
	if !s.registry.QueueCreate(desc) {
		return sites.PageDescriptor{}, fmt.Errorf("%w: %s", ErrPageExists, normalized)
	}
	s.logger.Info("session.page.created", "page", normalized)
	return desc, nil
}

// Catalog builds the navigable pages from the cached snapshot and the
// pending page creations.
func (s *Session) Catalog() []sites.PageDescriptor {
	snapshot, _ := s.snapshots.Snapshot(s.key)
	return s.catalog.Build(snapshot, s.registry.Pending())
}

// ApplyTheme rewrites every page of the tenant to theme.
func (s *Session) ApplyTheme(ctx context.Context, theme string) (themes.Result, error) {
	result, err := s.themes.ApplyTheme(ctx, s.key, theme)
	s.remember(result)
	return result, err
}

// ResetTheme rewrites every page of the tenant to the defaults of theme.
func (s *Session) ResetTheme(ctx context.Context, theme string) (themes.Result, error) {
	result, err := s.themes.ResetTheme(ctx, s.key, theme)
	s.remember(result)
	return result, err
}

func (s *Session) remember(result themes.Result) {
	if result.Guard == 0 {
		return
	}
	applied := &appliedTheme{theme: result.Theme, revisions: make(map[string]uint64, len(result.Pages))}
	for _, slug := range result.Pages {
		applied.revisions[slug] = s.registry.Revision(slug)
	}
	s.mu.Lock()
	s.applied = applied
	s.mu.Unlock()
}

// RequestSave writes the registry state into the cached snapshot and hands
// it to the save coordinator in the background. Failures are logged and
// notified, never returned.
func (s *Session) RequestSave(ctx context.Context) {
	snapshot, cached := s.snapshots.Snapshot(s.key)
	if !cached {
		snapshot = &sites.TenantSnapshot{TenantKey: s.key}
	}
	settings, revisions := s.registry.Export()
	for _, slug := range settings.Slugs() {
		records, _ := settings.Page(slug)
		snapshot.ComponentSettings.Set(slug, records)
		snapshot.SetRevision(slug, revisions[slug])
	}
	if cached {
		if err := s.snapshots.Put(snapshot); err != nil {
			s.logger.Error("session.save.bookkeeping_failed", "error", err)
		}
	}
	if s.saver == nil {
		s.logger.Debug("session.save.skipped", "reason", "no save coordinator")
		return
	}

	req := interfaces.SaveRequest{
		TenantKey: s.key,
		Snapshot:  sites.CloneSnapshot(snapshot),
		Reason:    interfaces.SaveReasonEdit,
	}
	saveCtx := context.WithoutCancel(ctx)
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()
		if err := s.saver.RequestSave(saveCtx, req); err != nil {
			s.logger.Error("session.save.failed", "error", err)
			s.notify(saveCtx, "Could not save your changes", interfaces.NoticeError)
			return
		}
		s.logger.Debug("session.save.done", "pages", req.Snapshot.ComponentSettings.Len())
	}()
}
