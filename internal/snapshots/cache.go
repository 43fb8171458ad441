package snapshots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/metrics"
	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

var (
	ErrFetcherRequired   = errors.New("snapshots: tenant fetcher required")
	ErrTenantKeyRequired = errors.New("snapshots: tenant key required")
)

// State describes the fetch lifecycle of a tenant snapshot.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Status is the loading/error view surfaced to the UI.
type Status struct {
	State     State
	Err       error
	FetchedAt time.Time
}

// Loading reports whether a fetch is in flight.
func (s Status) Loading() bool { return s.State == StateLoading }

type entry struct {
	snapshot *sites.TenantSnapshot
	status   Status
	// writes counts direct Put calls so an in-flight fetch started before a
	// write does not overwrite it.
	writes uint64
}

// Option configures the cache.
type Option func(*Cache)

// WithNow overrides the clock used to stamp snapshots.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets the collaborator told about fetch failures.
func WithNotifier(notifier interfaces.Notifier) Option {
	return func(c *Cache) {
		c.notifier = notifier
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(c *Cache) {
		if recorder != nil {
			c.metrics = recorder
		}
	}
}

// Cache holds the last fetched server state per tenant.
type Cache struct {
	fetcher  interfaces.TenantFetcher
	now      func() time.Time
	logger   interfaces.Logger
	notifier interfaces.Notifier
	metrics  metrics.Recorder

	mu      sync.Mutex
	entries map[string]*entry
}

// NewCache constructs a snapshot cache backed by fetcher.
func NewCache(fetcher interfaces.TenantFetcher, opts ...Option) *Cache {
	if fetcher == nil {
		panic(ErrFetcherRequired)
	}
	c := &Cache{
		fetcher: fetcher,
		now:     time.Now,
		logger:  logging.NoOp(),
		metrics: metrics.NoOp(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch loads the tenant snapshot unless one is cached or already loading,
// in which case it returns nil without doing anything. Failures are recorded
// on the tenant status and never retried.
func (c *Cache) Fetch(ctx context.Context, tenantKey string) error {
	key := strings.TrimSpace(tenantKey)
	if key == "" {
		return ErrTenantKeyRequired
	}

	c.mu.Lock()
	current := c.entry(key)
	if current.snapshot != nil || current.status.State == StateLoading {
		c.mu.Unlock()
		c.metrics.SnapshotFetch(metrics.OutcomeNoop)
		return nil
	}
	current.status = Status{State: StateLoading}
	writes := current.writes
	c.mu.Unlock()

	logger := logging.WithTenantFields(c.logger, key, nil).WithContext(ctx)
	logger.Debug("snapshot.fetch.start")

	snapshot, err := c.fetcher.FetchTenant(ctx, key)
	if err != nil {
		c.mu.Lock()
		current.status = Status{State: StateFailed, Err: err}
		c.mu.Unlock()

		logger.Error("snapshot.fetch.failed", "error", err)
		c.metrics.SnapshotFetch(metrics.OutcomeFailure)
		if c.notifier != nil {
			c.notifier.Notify(ctx, fmt.Sprintf("Could not load site %q", key), interfaces.NoticeError)
		}
		return fmt.Errorf("snapshots: fetch %s: %w", key, err)
	}

	stored := sites.CloneSnapshot(snapshot)
	if stored == nil {
		stored = &sites.TenantSnapshot{}
	}
	stored.TenantKey = key
	stored.FetchedAt = c.now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	if current.writes != writes {
		current.status = Status{State: StateLoaded}
		if current.snapshot != nil {
			current.status.FetchedAt = current.snapshot.FetchedAt
		}
		logger.Debug("snapshot.fetch.superseded")
		c.metrics.SnapshotFetch(metrics.OutcomeNoop)
		return nil
	}
	current.snapshot = stored
	current.status = Status{State: StateLoaded, FetchedAt: stored.FetchedAt}
	logger.Debug("snapshot.fetch.success", "pages", stored.ComponentSettings.Len())
	c.metrics.SnapshotFetch(metrics.OutcomeSuccess)
	return nil
}

// Snapshot returns a copy of the cached snapshot for the tenant.
func (c *Cache) Snapshot(tenantKey string) (*sites.TenantSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.entries[strings.TrimSpace(tenantKey)]
	if !ok || current.snapshot == nil {
		return nil, false
	}
	return sites.CloneSnapshot(current.snapshot), true
}

// Status returns the fetch status of the tenant.
func (c *Cache) Status(tenantKey string) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.entries[strings.TrimSpace(tenantKey)]
	if !ok {
		return Status{State: StateIdle}
	}
	return current.status
}

// Put replaces the cached snapshot directly, bypassing the fetcher.
func (c *Cache) Put(snapshot *sites.TenantSnapshot) error {
	if snapshot == nil {
		return nil
	}
	key := strings.TrimSpace(snapshot.TenantKey)
	if key == "" {
		return ErrTenantKeyRequired
	}
	stored := sites.CloneSnapshot(snapshot)
	stored.TenantKey = key
	if stored.FetchedAt.IsZero() {
		stored.FetchedAt = c.now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.entry(key)
	current.snapshot = stored
	current.writes++
	if current.status.State != StateLoading {
		current.status = Status{State: StateLoaded, FetchedAt: stored.FetchedAt}
	}
	return nil
}

// Invalidate drops the cached snapshot so the next Fetch reloads it.
func (c *Cache) Invalidate(tenantKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.entries[strings.TrimSpace(tenantKey)]
	if !ok {
		return
	}
	current.snapshot = nil
	if current.status.State != StateLoading {
		current.status = Status{State: StateIdle}
	}
}

func (c *Cache) entry(key string) *entry {
	current, ok := c.entries[key]
	if !ok {
		current = &entry{}
		c.entries[key] = current
	}
	return current
}
