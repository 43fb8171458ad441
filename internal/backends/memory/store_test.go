package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-livesite/internal/sites"
	"github.com/goliatone/go-livesite/pkg/interfaces"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	seed := &sites.TenantSnapshot{TenantKey: "acme"}
	seed.ComponentSettings.Set("about", []sites.ComponentRecord{{ID: "a", Family: "hero"}})
	store := New(seed)

	fetched, err := store.FetchTenant(ctx, "acme")
	if err != nil || !fetched.HasPage("about") {
		t.Fatalf("unexpected fetch %+v %v", fetched, err)
	}

	fetched.SetRevision("about", 2)
	if err := store.RequestSave(ctx, interfaces.SaveRequest{Snapshot: fetched, Reason: interfaces.SaveReasonEdit}); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, _ := store.Document("acme")
	if doc.Revision("about") != 2 {
		t.Fatalf("expected revision to be stored, got %d", doc.Revision("about"))
	}
	if saves := store.Saves(); len(saves) != 1 || saves[0].Reason != interfaces.SaveReasonEdit {
		t.Fatalf("unexpected saves %+v", saves)
	}

	unknown, err := store.FetchTenant(ctx, "globex")
	if err != nil || unknown.TenantKey != "globex" || unknown.ComponentSettings.Len() != 0 {
		t.Fatalf("expected empty document for unknown tenant, got %+v %v", unknown, err)
	}
}

func TestStoreInjectedFailures(t *testing.T) {
	ctx := context.Background()
	store := New()
	boom := errors.New("boom")

	store.FailFetch(boom)
	if _, err := store.FetchTenant(ctx, "acme"); !errors.Is(err, boom) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	store.FailFetch(nil)

	store.FailSave(boom)
	err := store.RequestSave(ctx, interfaces.SaveRequest{Snapshot: &sites.TenantSnapshot{TenantKey: "acme"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected save failure, got %v", err)
	}
	if _, ok := store.Document("acme"); ok {
		t.Fatalf("failed save must not store the document")
	}
}
