package snapshots

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

type fetcherFunc func(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error)

func (f fetcherFunc) FetchTenant(ctx context.Context, tenantKey string) (*sites.TenantSnapshot, error) {
	return f(ctx, tenantKey)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	kinds    []interfaces.NoticeKind
}

func (n *recordingNotifier) Notify(_ context.Context, message string, kind interfaces.NoticeKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	n.kinds = append(n.kinds, kind)
}

func TestCacheFetchStoresAndStampsSnapshot(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var calls int32
	cache := NewCache(fetcherFunc(func(context.Context, string) (*sites.TenantSnapshot, error) {
		atomic.AddInt32(&calls, 1)
		snapshot := &sites.TenantSnapshot{}
		snapshot.ComponentSettings.Set("about", nil)
		return snapshot, nil
	}), WithNow(func() time.Time { return now }))

	ctx := context.Background()
	if err := cache.Fetch(ctx, "acme"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := cache.Fetch(ctx, "acme"); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected cached snapshot to short-circuit, fetcher called %d times", got)
	}

	snapshot, ok := cache.Snapshot("acme")
	if !ok {
		t.Fatal("expected cached snapshot")
	}
	if snapshot.TenantKey != "acme" || !snapshot.FetchedAt.Equal(now) {
		t.Fatalf("unexpected snapshot metadata %+v", snapshot)
	}
	if status := cache.Status("acme"); status.State != StateLoaded || !status.FetchedAt.Equal(now) {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestCacheFetchIsNoopWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	cache := NewCache(fetcherFunc(func(context.Context, string) (*sites.TenantSnapshot, error) {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-release
		return &sites.TenantSnapshot{}, nil
	}))

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- cache.Fetch(ctx, "acme") }()
	<-started

	if !cache.Status("acme").Loading() {
		t.Fatal("expected loading status while fetch is in flight")
	}
	if err := cache.Fetch(ctx, "acme"); err != nil {
		t.Fatalf("concurrent fetch should be a no-op, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single backend call, got %d", got)
	}
}

func TestCacheFetchFailureSurfacesStatusWithoutRetry(t *testing.T) {
	boom := errors.New("backend down")
	var calls int32
	notifier := &recordingNotifier{}
	cache := NewCache(fetcherFunc(func(context.Context, string) (*sites.TenantSnapshot, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	}), WithNotifier(notifier))

	err := cache.Fetch(context.Background(), "acme")
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	status := cache.Status("acme")
	if status.State != StateFailed || !errors.Is(status.Err, boom) {
		t.Fatalf("unexpected status %+v", status)
	}
	if _, ok := cache.Snapshot("acme"); ok {
		t.Fatal("expected no snapshot after failure")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected no automatic retry, got %d calls", calls)
	}
	if len(notifier.kinds) != 1 || notifier.kinds[0] != interfaces.NoticeError {
		t.Fatalf("expected one error notice, got %v", notifier.kinds)
	}
}

func TestCachePutWinsOverInFlightFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	cache := NewCache(fetcherFunc(func(context.Context, string) (*sites.TenantSnapshot, error) {
		close(started)
		<-release
		stale := &sites.TenantSnapshot{}
		stale.SiteLayout.CurrentTheme = "old"
		return stale, nil
	}))

	done := make(chan error, 1)
	go func() { done <- cache.Fetch(context.Background(), "acme") }()
	<-started

	fresh := &sites.TenantSnapshot{TenantKey: "acme"}
	fresh.SiteLayout.CurrentTheme = "coastal"
	if err := cache.Put(fresh); err != nil {
		t.Fatalf("put: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("fetch: %v", err)
	}

	snapshot, _ := cache.Snapshot("acme")
	if snapshot.SiteLayout.CurrentTheme != "coastal" {
		t.Fatalf("in-flight fetch overwrote direct write: %q", snapshot.SiteLayout.CurrentTheme)
	}
	if cache.Status("acme").State != StateLoaded {
		t.Fatalf("expected loaded status, got %v", cache.Status("acme").State)
	}
}

func TestCacheInvalidateAllowsReload(t *testing.T) {
	var calls int32
	cache := NewCache(fetcherFunc(func(context.Context, string) (*sites.TenantSnapshot, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	}))
	ctx := context.Background()

	if err := cache.Fetch(ctx, "acme"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	snapshot, ok := cache.Snapshot("acme")
	if !ok || snapshot.ComponentSettings.Len() != 0 {
		t.Fatalf("expected empty snapshot for unknown tenant, got %+v", snapshot)
	}

	cache.Invalidate("acme")
	if cache.Status("acme").State != StateIdle {
		t.Fatalf("expected idle after invalidate")
	}
	if err := cache.Fetch(ctx, "acme"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected reload to hit the backend, got %d calls", calls)
	}
}

func TestCacheRejectsEmptyTenantKey(t *testing.T) {
	cache := NewCache(fetcherFunc(func(context.Context, string) (*sites.TenantSnapshot, error) {
		return nil, nil
	}))
	if err := cache.Fetch(context.Background(), "  "); !errors.Is(err, ErrTenantKeyRequired) {
		t.Fatalf("expected ErrTenantKeyRequired, got %v", err)
	}
	if err := cache.Put(&sites.TenantSnapshot{}); !errors.Is(err, ErrTenantKeyRequired) {
		t.Fatalf("expected ErrTenantKeyRequired from put, got %v", err)
	}
}
