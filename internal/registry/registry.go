package registry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/metrics"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

var (
	ErrInstanceIDRequired = errors.New("registry: instance id required")
	ErrDuplicateInstance  = errors.New("registry: duplicate instance id on page")
	ErrInstanceNotFound   = errors.New("registry: instance not found")
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(r *Registry) {
		if recorder != nil {
			r.metrics = recorder
		}
	}
}

type page struct {
	slug     string
	records  []sites.ComponentRecord
	revision uint64
}

// Registry holds the live edit state of one tenant session. It is the only
// writable source while editing.
type Registry struct {
	logger  interfaces.Logger
	metrics metrics.Recorder

	mu      sync.RWMutex
	pages   []*page
	guard   int64
	pending []sites.PageDescriptor
}

// New constructs an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:  logging.NoOp(),
		metrics: metrics.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pages lists page slugs in the order they were first seen.
func (r *Registry) Pages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.pages))
	for _, p := range r.pages {
		out = append(out, p.slug)
	}
	return out
}

// Page returns a copy of the records held for slug.
func (r *Registry) Page(slug string) ([]sites.ComponentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.find(slug)
	if p == nil {
		return nil, false
	}
	return sites.CloneRecords(p.records), true
}

// HasComponents reports whether slug holds a non-empty component list.
func (r *Registry) HasComponents(slug string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.find(slug)
	return p != nil && len(p.records) > 0
}

// Instance returns the record id on page slug.
func (r *Registry) Instance(slug, id string) (sites.ComponentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p := r.find(slug)
	if p == nil {
		return sites.ComponentRecord{}, false
	}
	idx := indexOf(p.records, id)
	if idx < 0 {
		return sites.ComponentRecord{}, false
	}
	return sites.CloneRecord(p.records[idx]), true
}

// Lookup finds the first page holding instance id.
func (r *Registry) Lookup(id string) (string, sites.ComponentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.pages {
		if idx := indexOf(p.records, id); idx >= 0 {
			return p.slug, sites.CloneRecord(p.records[idx]), true
		}
	}
	return "", sites.ComponentRecord{}, false
}

// Revision returns the local revision of slug.
func (r *Registry) Revision(slug string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p := r.find(slug); p != nil {
		return p.revision
	}
	return 0
}

// EnsureInstance registers record on slug unless an instance with the same id
// already exists. It returns the stored record and whether it was created.
func (r *Registry) EnsureInstance(slug string, record sites.ComponentRecord) (sites.ComponentRecord, bool, error) {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return sites.ComponentRecord{}, false, ErrInstanceIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.ensurePage(slug)
	if idx := indexOf(p.records, record.ID); idx >= 0 {
		return sites.CloneRecord(p.records[idx]), false, nil
	}

	stored := sites.CloneRecord(record)
	if stored.Position == 0 && len(p.records) > 0 {
		stored.Position = p.records[len(p.records)-1].Position + 1
	}
	p.records = sites.SortRecords(append(p.records, stored))
	p.revision++
	r.logger.Debug("registry.instance.created", "page", slug, "instance", stored.ID, "family", stored.Family)
	return sites.CloneRecord(stored), true, nil
}

// UpdateData replaces the data payload of an instance.
func (r *Registry) UpdateData(slug, id string, data map[string]any) error {
	return r.mutate(slug, id, func(record *sites.ComponentRecord) {
		record.Data = sites.CloneMap(data)
	})
}

// UpdateContent merges fields into the content sub-object of an instance.
func (r *Registry) UpdateContent(slug, id string, fields map[string]any) error {
	return r.mutate(slug, id, func(record *sites.ComponentRecord) {
		if record.Data == nil {
			record.Data = map[string]any{}
		}
		content, ok := sites.Content(record.Data)
		if !ok {
			content = map[string]any{}
		}
		for key, value := range fields {
			content[key] = sites.CloneValue(value)
		}
		record.Data[sites.ContentKey] = content
	})
}

// SetVariant switches an instance to another variant and schema tag.
func (r *Registry) SetVariant(slug, id, variant, schema string) error {
	return r.mutate(slug, id, func(record *sites.ComponentRecord) {
		record.Variant = variant
		record.Schema = schema
	})
}

// RemoveInstance deletes an instance from slug.
func (r *Registry) RemoveInstance(slug, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(slug)
	if p == nil {
		return ErrInstanceNotFound
	}
	idx := indexOf(p.records, id)
	if idx < 0 {
		return ErrInstanceNotFound
	}
	p.records = append(p.records[:idx], p.records[idx+1:]...)
	p.revision++
	return nil
}

// ReplacePage swaps the whole component list of slug. The page revision
// becomes revision, or the next local revision when that is not newer.
func (r *Registry) ReplacePage(slug string, records []sites.ComponentRecord, revision uint64) error {
	if err := validateUnique(records); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.ensurePage(slug)
	p.records = sites.SortRecords(sites.CloneRecords(records))
	if revision > p.revision {
		p.revision = revision
	} else {
		p.revision++
	}
	return nil
}

// Export returns the registry pages as component settings plus revisions.
func (r *Registry) Export() (sites.ComponentSettings, map[string]uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var settings sites.ComponentSettings
	revisions := make(map[string]uint64, len(r.pages))
	for _, p := range r.pages {
		settings.Set(p.slug, p.records)
		revisions[p.slug] = p.revision
	}
	return settings, revisions
}

// ThemeGuard returns the current theme change guard; zero means no recent
// bulk rewrite.
func (r *Registry) ThemeGuard() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.guard
}

// StampThemeGuard sets the guard to now in unix milliseconds, never moving
// backwards, and returns the stored value.
func (r *Registry) StampThemeGuard(now time.Time) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp := now.UnixMilli()
	if stamp <= r.guard {
		stamp = r.guard + 1
	}
	r.guard = stamp
	return stamp
}

// ClearThemeGuard resets the guard once persistence and reload are known to be safe.
func (r *Registry) ClearThemeGuard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard = 0
}

func (r *Registry) mutate(slug, id string, fn func(*sites.ComponentRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.find(slug)
	if p == nil {
		return ErrInstanceNotFound
	}
	idx := indexOf(p.records, id)
	if idx < 0 {
		return ErrInstanceNotFound
	}
	fn(&p.records[idx])
	p.revision++
	return nil
}

func (r *Registry) find(slug string) *page {
	for _, p := range r.pages {
		if p.slug == slug {
			return p
		}
	}
	return nil
}

func (r *Registry) ensurePage(slug string) *page {
	if p := r.find(slug); p != nil {
		return p
	}
	p := &page{slug: slug}
	r.pages = append(r.pages, p)
	return p
}

func indexOf(records []sites.ComponentRecord, id string) int {
	for i, record := range records {
		if record.ID == id {
			return i
		}
	}
	return -1
}

func validateUnique(records []sites.ComponentRecord) error {
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if strings.TrimSpace(record.ID) == "" {
			return ErrInstanceIDRequired
		}
		if _, ok := seen[record.ID]; ok {
			return ErrDuplicateInstance
		}
		seen[record.ID] = struct{}{}
	}
	return nil
}
